package adminapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/talkincode/toughcrm/internal/crm"
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/internal/transfer"
	"github.com/talkincode/toughcrm/internal/webserver"
)

// orderPayload carries ids as strings, 64 bit snowflake ids do not survive JSON numbers.
type orderPayload struct {
	CustomerID string   `json:"customer_id" validate:"required"`
	ProductIDs []string `json:"product_ids"`
	OrderDate  string   `json:"order_date"`
}

func registerOrderRoutes() {
	webserver.ApiGET("/crm/orders", listOrders)
	webserver.ApiGET("/crm/orders/export", exportOrders)
	webserver.ApiGET("/crm/orders/:id", getOrder)
	webserver.ApiPOST("/crm/orders", createOrder)
}

// parseOrderFilter reads order_date_gte and customer_id
func parseOrderFilter(c echo.Context) (crm.OrderFilter, error) {
	var filter crm.OrderFilter
	if v := strings.TrimSpace(c.QueryParam("order_date_gte")); v != "" {
		since, err := dateparse.ParseLocal(v)
		if err != nil {
			return filter, domain.NewValidationError(domain.InvalidOrderDate)
		}
		filter.OrderDateGte = &since
	}
	if v := strings.TrimSpace(c.QueryParam("customer_id")); v != "" {
		id, err := cast.ToInt64E(v)
		if err != nil {
			return filter, domain.NewValidationError(domain.InvalidCustomer)
		}
		filter.CustomerID = id
	}
	return filter, nil
}

func listOrders(c echo.Context) error {
	ctx := c.Request().Context()
	repo := GetAppContext(c).CRM().Repo()
	filter, err := parseOrderFilter(c)
	if err != nil {
		return handleValidationError(c, err)
	}
	page, pageSize := parsePagination(c)

	total, err := repo.CountOrders(ctx, filter)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	filter.Pagination = crm.Pagination{Page: page, PageSize: pageSize}
	orders, err := repo.ListOrders(ctx, filter)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, orders, total, page, pageSize)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	order, err := GetAppContext(c).CRM().Repo().GetOrder(c.Request().Context(), id)
	if err != nil {
		return handleValidationError(c, err)
	}
	return ok(c, order)
}

func createOrder(c echo.Context) error {
	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order parameters", err.Error())
	}
	in := crm.OrderInput{CustomerID: cast.ToInt64(payload.CustomerID)}
	for _, pid := range payload.ProductIDs {
		// unparsable ids become 0, which never matches a product
		in.ProductIDs = append(in.ProductIDs, cast.ToInt64(pid))
	}
	if payload.OrderDate != "" {
		date, err := dateparse.ParseLocal(payload.OrderDate)
		if err != nil {
			return handleValidationError(c, domain.NewValidationError(domain.InvalidOrderDate))
		}
		in.OrderDate = &date
	}
	order, err := GetAppContext(c).CRM().CreateOrder(c.Request().Context(), in)
	if err != nil {
		return handleValidationError(c, err)
	}
	return created(c, order)
}

// exportOrders streams the filtered orders as CSV (default) or XLSX.
func exportOrders(c echo.Context) error {
	format := strings.ToLower(c.QueryParam("format"))
	if format == "" {
		format = transfer.FormatCSV
	}
	if format != transfer.FormatCSV && format != transfer.FormatXLSX {
		return fail(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx", nil)
	}
	filter, err := parseOrderFilter(c)
	if err != nil {
		return handleValidationError(c, err)
	}
	orders, err := GetAppContext(c).CRM().Repo().ListOrders(c.Request().Context(), filter)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	var buf bytes.Buffer
	if err := transfer.WriteOrders(&buf, format, orders); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export orders", err.Error())
	}
	filename := fmt.Sprintf("orders-%s.%s", time.Now().Format("20060102150405"), format)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, transfer.ContentType(format), buf.Bytes())
}
