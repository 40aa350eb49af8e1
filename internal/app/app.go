package app

import (
	"context"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/talkincode/toughcrm/config"
	"github.com/talkincode/toughcrm/internal/crm"
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/internal/events"
	"github.com/talkincode/toughcrm/internal/jobs"
	"github.com/talkincode/toughcrm/internal/notify"
	"github.com/talkincode/toughcrm/internal/upstream"
	"github.com/talkincode/toughcrm/pkg/metrics"
)

type Application struct {
	appConfig  *config.AppConfig
	gormDB     *gorm.DB
	bus        *events.Bus
	crmService *crm.Service
	jobStore   *jobs.GormJobStore
	sched      *jobs.Scheduler
	upstream   *upstream.Client
	mailer     notify.Mailer
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ ServiceProvider   = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) CRM() *crm.Service {
	return a.crmService
}

// Scheduler returns the job scheduler
func (a *Application) Scheduler() *jobs.Scheduler {
	return a.sched
}

func (a *Application) JobStore() jobs.JobStore {
	return a.jobStore
}

func (a *Application) Events() *events.Bus {
	return a.bus
}

func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}
	zap.ReplaceGlobals(logger)
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	// Initialize metrics with workdir convention
	err = metrics.InitMetrics(cfg.System.Workdir)
	if err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database, cfg.System.Workdir)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	if err := a.InitServices(); err != nil {
		panic(err)
	}

	if cfg.System.Demo {
		a.checkProducts()
	}
}

// InitServices wires the CRM service, event bus and job registry on top of the database.
func (a *Application) InitServices() error {
	a.bus = events.NewBus()
	if err := events.BindMetrics(a.bus); err != nil {
		return err
	}
	a.crmService = crm.NewService(crm.NewGormRepository(a.gormDB), a.bus)
	a.upstream = upstream.NewClient(a.appConfig.Upstream.Endpoint,
		time.Duration(a.appConfig.Upstream.TimeoutSec)*time.Second)
	a.mailer = notify.NewMailer(a.appConfig.Smtp)
	a.jobStore = jobs.NewGormJobStore(a.gormDB)
	return a.initJobs()
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	return db.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	// the many2many join table is not a model
	a.gormDB.Exec("DROP TABLE IF EXISTS crm_order_product")
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	a.DropAll()
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := a.sched.Stop(ctx); err != nil {
			zap.S().Warn("stop scheduler:", err)
		}
		cancel()
	}
	if a.bus != nil {
		a.bus.WaitAsync()
	}

	_ = metrics.Close()
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = zap.L().Sync()
}
