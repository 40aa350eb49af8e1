package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	workdir := t.TempDir()
	t.Setenv("TOUGHCRM_SYSTEM_WORKDIR", workdir)

	cfg := LoadConfig(filepath.Join(workdir, "missing.yml"))
	assert.Equal(t, workdir, cfg.System.Workdir)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "0 6 * * 1", cfg.Jobs.ReportSchedule)
	assert.Equal(t, 7, cfg.Jobs.ReminderDays)
	assert.DirExists(t, cfg.GetLogDir())
	assert.DirExists(t, cfg.GetDataDir())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	workdir := t.TempDir()
	cfile := filepath.Join(workdir, "toughcrm.yml")
	content := `
system:
  workdir: ` + workdir + `
web:
  port: 8080
database:
  type: sqlite
  name: crm.db
jobs:
  workers: 2
  restock_schedule: "@every 1h"
`
	require.NoError(t, os.WriteFile(cfile, []byte(content), 0o644))
	t.Setenv("TOUGHCRM_WEB_PORT", "9090")
	t.Setenv("TOUGHCRM_JOBS_ENABLED", "false")
	t.Setenv("TOUGHCRM_UPSTREAM_TIMEOUT", "not-a-number")

	cfg := LoadConfig(cfile)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "crm.db", cfg.Database.Name)
	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, 2, cfg.Jobs.Workers)
	assert.Equal(t, "@every 1h", cfg.Jobs.RestockSchedule)
	assert.False(t, cfg.Jobs.Enabled)
	// unparsable numbers keep the configured value
	assert.Equal(t, 5, cfg.Upstream.TimeoutSec)
	// untouched sections keep their defaults
	assert.Equal(t, "*/5 * * * *", cfg.Jobs.HeartbeatSchedule)
}
