package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/toughcrm/internal/webserver"
)

// DBMSTableInfo represents table metadata
type DBMSTableInfo struct {
	Name     string `json:"name"`
	RowCount int64  `json:"row_count"`
	Error    string `json:"error,omitempty"`
}

// DBMSServerInfo describes the connected database
type DBMSServerInfo struct {
	DatabaseType    string `json:"database_type"`
	DatabaseVersion string `json:"database_version"`
	DatabaseSize    string `json:"database_size,omitempty"`
	TableCount      int    `json:"table_count"`
	ServerTime      string `json:"server_time"`
}

// registerDbmsRoutes registers the read only database inspection routes
func registerDbmsRoutes() {
	webserver.ApiGET("/dbms/tables", dbmsListTables)
	webserver.ApiGET("/dbms/serverinfo", dbmsGetServerInfo)
}

var errUnsupportedDatabase = errors.New("unsupported database type")

func tableNames(db *gorm.DB) ([]string, error) {
	var names []string
	var err error
	switch db.Dialector.Name() {
	case "postgres":
		err = db.Raw(`SELECT table_name FROM information_schema.tables
			WHERE table_schema = 'public' ORDER BY table_name`).Scan(&names).Error
	case "sqlite":
		err = db.Raw(`SELECT name FROM sqlite_master
			WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`).Scan(&names).Error
	default:
		err = errors.Wrap(errUnsupportedDatabase, db.Dialector.Name())
	}
	return names, err
}

func countRows(db *gorm.DB, name string) (int64, error) {
	var count int64
	err := db.Raw(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdentifier(name, db.Dialector.Name()))).Scan(&count).Error
	return count, err
}

// rawScan runs a best effort metadata query, failures are logged and leave dest untouched
func rawScan(db *gorm.DB, dest interface{}, sql string) {
	if err := db.Raw(sql).Scan(dest).Error; err != nil {
		zap.L().Warn("dbms query failed",
			zap.String("sql", sql),
			zap.Error(err),
			zap.String("namespace", "api"))
	}
}

func quoteIdentifier(name, dbType string) string {
	if dbType == "postgres" || dbType == "sqlite" {
		return `"` + name + `"`
	}
	return name
}

// dbmsListTables lists the tables with their row counts
func dbmsListTables(c echo.Context) error {
	db := GetDB(c)
	names, err := tableNames(db)
	if errors.Is(err, errUnsupportedDatabase) {
		return fail(c, http.StatusBadRequest, "UNSUPPORTED_DATABASE", err.Error(), nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list tables", err.Error())
	}
	tables := make([]DBMSTableInfo, 0, len(names))
	for _, name := range names {
		info := DBMSTableInfo{Name: name}
		count, err := countRows(db, name)
		if err != nil {
			zap.L().Warn("count table rows failed",
				zap.String("table", name),
				zap.Error(err),
				zap.String("namespace", "api"))
			info.RowCount = -1
			info.Error = err.Error()
		} else {
			info.RowCount = count
		}
		tables = append(tables, info)
	}
	return ok(c, tables)
}

func dbmsGetServerInfo(c echo.Context) error {
	db := GetDB(c)
	dbType := db.Dialector.Name()

	info := DBMSServerInfo{
		DatabaseType: dbType,
		ServerTime:   time.Now().Format("2006-01-02 15:04:05"),
	}
	names, err := tableNames(db)
	if err != nil {
		zap.L().Warn("list tables failed", zap.Error(err), zap.String("namespace", "api"))
	}
	info.TableCount = len(names)

	switch dbType {
	case "postgres":
		rawScan(db, &info.DatabaseVersion, "SELECT version()")
		rawScan(db, &info.DatabaseSize, "SELECT pg_size_pretty(pg_database_size(current_database()))")
	case "sqlite":
		var version string
		rawScan(db, &version, "SELECT sqlite_version()")
		info.DatabaseVersion = "SQLite " + version

		var pageCount, pageSize int64
		rawScan(db, &pageCount, "PRAGMA page_count")
		rawScan(db, &pageSize, "PRAGMA page_size")
		info.DatabaseSize = humanSize(pageCount * pageSize)
	}
	return ok(c, info)
}

func humanSize(sizeBytes int64) string {
	switch {
	case sizeBytes < 1024:
		return fmt.Sprintf("%d B", sizeBytes)
	case sizeBytes < 1024*1024:
		return fmt.Sprintf("%.2f KB", float64(sizeBytes)/1024)
	case sizeBytes < 1024*1024*1024:
		return fmt.Sprintf("%.2f MB", float64(sizeBytes)/(1024*1024))
	default:
		return fmt.Sprintf("%.2f GB", float64(sizeBytes)/(1024*1024*1024))
	}
}
