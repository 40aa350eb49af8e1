package adminapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughcrm/internal/crm"
	"github.com/talkincode/toughcrm/internal/gql"
	"github.com/talkincode/toughcrm/internal/webserver"
)

var startedAt = time.Now()

func registerHealthRoutes() {
	webserver.Handle(http.MethodGet, "/health", health)
}

func health(c echo.Context) error {
	status := "ok"
	code := http.StatusOK
	dbStatus := "ok"
	if sqlDB, err := GetAppContext(c).DB().DB(); err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
		status, dbStatus, code = "degraded", "unreachable", http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]interface{}{
		"status":   status,
		"database": dbStatus,
		"uptime":   time.Since(startedAt).Truncate(time.Second).String(),
	})
}

// schemas caches one GraphQL schema per CRM service
var schemas sync.Map

func schemaFor(svc *crm.Service) (graphql.Schema, error) {
	if s, found := schemas.Load(svc); found {
		return s.(graphql.Schema), nil
	}
	s, err := gql.NewSchema(svc)
	if err != nil {
		return graphql.Schema{}, err
	}
	actual, _ := schemas.LoadOrStore(svc, s)
	return actual.(graphql.Schema), nil
}

func registerGraphQLRoutes() {
	h := func(c echo.Context) error {
		schema, err := schemaFor(GetAppContext(c).CRM())
		if err != nil {
			return fail(c, http.StatusInternalServerError, "SCHEMA_ERROR", "GraphQL schema unavailable", err.Error())
		}
		return gql.Handler(schema)(c)
	}
	webserver.Handle(http.MethodGet, "/graphql", h)
	webserver.Handle(http.MethodPost, "/graphql", h)
}
