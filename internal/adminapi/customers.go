package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughcrm/internal/crm"
	"github.com/talkincode/toughcrm/internal/transfer"
	"github.com/talkincode/toughcrm/internal/webserver"
)

func registerCustomerRoutes() {
	webserver.ApiGET("/crm/customers", listCustomers)
	webserver.ApiGET("/crm/customers/:id", getCustomer)
	webserver.ApiPOST("/crm/customers", createCustomer)
	webserver.ApiPOST("/crm/customers/bulk", bulkCreateCustomers)
	webserver.ApiPOST("/crm/customers/import", importCustomers)
}

func listCustomers(c echo.Context) error {
	ctx := c.Request().Context()
	repo := GetAppContext(c).CRM().Repo()
	page, pageSize := parsePagination(c)

	total, err := repo.CountCustomers(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customers", err.Error())
	}
	customers, err := repo.ListCustomers(ctx, crm.Pagination{Page: page, PageSize: pageSize})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customers", err.Error())
	}
	return paged(c, customers, total, page, pageSize)
}

func getCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}
	customer, err := GetAppContext(c).CRM().Repo().GetCustomer(c.Request().Context(), id)
	if err != nil {
		return handleValidationError(c, err)
	}
	return ok(c, customer)
}

func createCustomer(c echo.Context) error {
	var payload crm.CustomerInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse customer parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	customer, err := GetAppContext(c).CRM().CreateCustomer(c.Request().Context(), payload)
	if err != nil {
		return handleValidationError(c, err)
	}
	return created(c, customer)
}

// bulkCreateCustomers always answers 200: per item failures are listed in errors.
func bulkCreateCustomers(c echo.Context) error {
	var payload []crm.CustomerInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Expected a JSON array of customers", nil)
	}
	return ok(c, GetAppContext(c).CRM().BulkCreateCustomers(c.Request().Context(), payload))
}

// importCustomers reads a CSV upload (form field "file") with name,email,phone columns.
func importCustomers(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "MISSING_FILE", "A CSV file is required", nil)
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_FILE", "Unable to read file", err.Error())
	}
	defer f.Close()
	inputs, err := transfer.ReadCustomers(f)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_FILE", "Unable to parse CSV", err.Error())
	}
	return ok(c, GetAppContext(c).CRM().BulkCreateCustomers(c.Request().Context(), inputs))
}
