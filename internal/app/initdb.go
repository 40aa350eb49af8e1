package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/talkincode/toughcrm/config"
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/pkg/common"
)

// getDatabase opens the configured store. SQLite paths are relative to <workdir>/data.
func getDatabase(cfg config.DBConfig, workdir string) *gorm.DB {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	if cfg.Debug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		path := cfg.Name
		if path == "" {
			path = "toughcrm.db"
		}
		if !filepath.IsAbs(path) && path != ":memory:" {
			path = filepath.Join(workdir, "data", path)
		}
		if path != ":memory:" {
			_ = os.MkdirAll(filepath.Dir(path), 0o755)
		}
		dialector = sqlite.Open(path + "?_foreign_keys=1&_busy_timeout=5000")
	default:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name, time.Local.String())
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		panic(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	if cfg.Type == "sqlite" {
		// a single writer avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db
}

// checkProducts initializes demo CRM products
func (a *Application) checkProducts() {
	defaultProducts := []domain.Product{
		{Name: "Laptop", Price: decimal.RequireFromString("999.99"), Stock: 20},
		{Name: "Wireless Mouse", Price: decimal.RequireFromString("24.50"), Stock: 5},
		{Name: "USB-C Cable", Price: decimal.RequireFromString("9.99"), Stock: 0},
		{Name: "Support Plan", Price: decimal.RequireFromString("199.00"), Stock: 100},
	}

	for _, p := range defaultProducts {
		var count int64
		a.gormDB.Model(&domain.Product{}).Where("name = ?", p.Name).Count(&count)
		if count == 0 {
			p.ID = common.UUIDint64()
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to create default product", zap.String("name", p.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default product", zap.String("name", p.Name))
			}
		}
	}
}
