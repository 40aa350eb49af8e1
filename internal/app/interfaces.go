package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/talkincode/toughcrm/config"
	"github.com/talkincode/toughcrm/internal/crm"
	"github.com/talkincode/toughcrm/internal/jobs"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// ServiceProvider provides the CRM service
type ServiceProvider interface {
	CRM() *crm.Service
}

// SchedulerProvider provides the job scheduler
type SchedulerProvider interface {
	Scheduler() *jobs.Scheduler
	JobStore() jobs.JobStore
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	ServiceProvider
	SchedulerProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// RunJobNow queues a registered job on the worker pool
	RunJobNow(name string) error
	// RunJob executes a registered job and waits for its outcome
	RunJob(ctx context.Context, name string) (string, error)
}
