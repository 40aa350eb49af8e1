package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/talkincode/toughcrm/internal/webserver"
	"github.com/talkincode/toughcrm/pkg/metrics"
)

func registerReportRoutes() {
	webserver.ApiGET("/crm/reports/summary", reportSummary)
	webserver.ApiGET("/crm/metrics/:name", metricPoints)
}

func reportSummary(c echo.Context) error {
	report, err := GetAppContext(c).CRM().GenerateReport(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "REPORT_FAILED", err.Error(), nil)
	}
	return ok(c, report)
}

var metricNames = []string{
	metrics.CrmCustomersCreated,
	metrics.CrmProductsCreated,
	metrics.CrmOrdersCreated,
	metrics.CrmOrderAmount,
	metrics.CrmRestockUpdated,
	metrics.CrmJobRuns,
	metrics.CrmJobFailures,
	metrics.CrmProcessMemory,
	metrics.CrmProcessCPU,
}

// metricPoints returns the points of a metric over the last N minutes (default 60, max 7 days)
func metricPoints(c echo.Context) error {
	name := c.Param("name")
	known := false
	for _, m := range metricNames {
		if m == name {
			known = true
			break
		}
	}
	if !known {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Unknown metric", nil)
	}
	minutes := cast.ToInt(c.QueryParam("minutes"))
	if minutes <= 0 || minutes > 7*24*60 {
		minutes = 60
	}
	end := time.Now()
	start := end.Add(-time.Duration(minutes) * time.Minute)
	points, err := metrics.Points(name, start.Unix(), end.Unix()+1)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to query metric", err.Error())
	}
	if points == nil {
		points = []metrics.Point{}
	}
	var total float64
	for _, p := range points {
		total += p.Value
	}
	return ok(c, map[string]interface{}{
		"metric":  name,
		"minutes": minutes,
		"total":   total,
		"points":  points,
	})
}
