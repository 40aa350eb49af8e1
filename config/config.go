package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
	// Demo seeds a few catalog products on startup
	Demo bool `yaml:"demo"`
}

type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Type     string `yaml:"type"` // postgres | sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"` // database name, or file path for sqlite
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// JobsConfig controls the scheduled maintenance jobs. An empty schedule disables the job.
type JobsConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Workers           int    `yaml:"workers"`
	HeartbeatSchedule string `yaml:"heartbeat_schedule"`
	ReportSchedule    string `yaml:"report_schedule"`
	RestockSchedule   string `yaml:"restock_schedule"`
	ReminderSchedule  string `yaml:"reminder_schedule"`
	HeartbeatLog      string `yaml:"heartbeat_log"`
	ReportLog         string `yaml:"report_log"`
	RestockLog        string `yaml:"restock_log"`
	ReminderLog       string `yaml:"reminder_log"`
	ReminderDays      int    `yaml:"reminder_days"`
}

type UpstreamConfig struct {
	Endpoint   string `yaml:"endpoint"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

type SmtpConfig struct {
	Enable bool   `yaml:"enable"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Passwd string `yaml:"passwd"`
	From   string `yaml:"from"`
}

type AppConfig struct {
	System   SysConfig      `yaml:"system"`
	Web      WebConfig      `yaml:"web"`
	Database DBConfig       `yaml:"database"`
	Logger   LogConfig      `yaml:"logger"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Smtp     SmtpConfig     `yaml:"smtp"`
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0o755)
	_ = os.MkdirAll(c.GetDataDir(), 0o755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "ToughCRM",
		Location: "Asia/Shanghai",
		Workdir:  "/var/toughcrm",
		Debug:    true,
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 1819,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "toughcrm",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/toughcrm/toughcrm.log",
	},
	Jobs: JobsConfig{
		Enabled:           true,
		Workers:           8,
		HeartbeatSchedule: "*/5 * * * *",
		ReportSchedule:    "0 6 * * 1",
		RestockSchedule:   "0 */12 * * *",
		ReminderSchedule:  "0 8 * * *",
		HeartbeatLog:      "/tmp/crm_heartbeat_log.txt",
		ReportLog:         "/tmp/crm_report_log.txt",
		RestockLog:        "/tmp/low_stock_updates_log.txt",
		ReminderLog:       "/tmp/order_reminders_log.txt",
		ReminderDays:      7,
	},
	Upstream: UpstreamConfig{
		Endpoint:   "http://localhost:1819/graphql",
		TimeoutSec: 5,
	},
	Smtp: SmtpConfig{
		Enable: false,
		Host:   "127.0.0.1",
		Port:   25,
		From:   "crm@localhost",
	},
}

// LoadConfig reads cfile (when present) over the defaults and applies environment overrides.
func LoadConfig(cfile string) *AppConfig {
	cfg := *DefaultAppConfig
	if cfile == "" {
		cfile = "toughcrm.yml"
	}
	if data, err := os.ReadFile(cfile); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			panic(err)
		}
	}
	applyEnv(&cfg)
	cfg.initDirs()
	return &cfg
}

func applyEnv(cfg *AppConfig) {
	setEnvValue("TOUGHCRM_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvValue("TOUGHCRM_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("TOUGHCRM_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvBoolValue("TOUGHCRM_SYSTEM_DEMO", &cfg.System.Demo)

	setEnvValue("TOUGHCRM_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("TOUGHCRM_WEB_PORT", &cfg.Web.Port)

	setEnvValue("TOUGHCRM_DB_TYPE", &cfg.Database.Type)
	setEnvValue("TOUGHCRM_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("TOUGHCRM_DB_PORT", &cfg.Database.Port)
	setEnvValue("TOUGHCRM_DB_NAME", &cfg.Database.Name)
	setEnvValue("TOUGHCRM_DB_USER", &cfg.Database.User)
	setEnvValue("TOUGHCRM_DB_PWD", &cfg.Database.Passwd)
	setEnvBoolValue("TOUGHCRM_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("TOUGHCRM_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("TOUGHCRM_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)

	setEnvBoolValue("TOUGHCRM_JOBS_ENABLED", &cfg.Jobs.Enabled)
	setEnvIntValue("TOUGHCRM_JOBS_WORKERS", &cfg.Jobs.Workers)

	setEnvValue("TOUGHCRM_UPSTREAM_ENDPOINT", &cfg.Upstream.Endpoint)
	setEnvIntValue("TOUGHCRM_UPSTREAM_TIMEOUT", &cfg.Upstream.TimeoutSec)

	setEnvBoolValue("TOUGHCRM_SMTP_ENABLE", &cfg.Smtp.Enable)
	setEnvValue("TOUGHCRM_SMTP_HOST", &cfg.Smtp.Host)
	setEnvIntValue("TOUGHCRM_SMTP_PORT", &cfg.Smtp.Port)
	setEnvValue("TOUGHCRM_SMTP_USER", &cfg.Smtp.User)
	setEnvValue("TOUGHCRM_SMTP_PWD", &cfg.Smtp.Passwd)
	setEnvValue("TOUGHCRM_SMTP_FROM", &cfg.Smtp.From)
}

func setEnvValue(name string, val *string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*val = cast.ToBool(v)
	}
}

func setEnvIntValue(name string, val *int) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if i, err := cast.ToIntE(v); err == nil {
			*val = i
		}
	}
}
