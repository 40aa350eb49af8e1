package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/talkincode/toughcrm/internal/crm"
	"github.com/talkincode/toughcrm/internal/webserver"
)

type productPayload struct {
	Name  string          `json:"name" validate:"omitempty,max=200"`
	Price decimal.Decimal `json:"price"`
	Stock *int            `json:"stock"`
}

func (p productPayload) input() crm.ProductInput {
	in := crm.ProductInput{Name: p.Name, Price: p.Price}
	if p.Stock != nil {
		in.Stock = *p.Stock
	}
	return in
}

// registerProductRoutes registers product catalog endpoints
func registerProductRoutes() {
	webserver.ApiGET("/crm/products", listProducts)
	webserver.ApiGET("/crm/products/low-stock", listLowStockProducts)
	webserver.ApiGET("/crm/products/:id", getProduct)
	webserver.ApiPOST("/crm/products", createProduct)
	webserver.ApiPUT("/crm/products/:id", updateProduct)
	webserver.ApiPOST("/crm/products/restock", restockProducts)
}

func listProducts(c echo.Context) error {
	ctx := c.Request().Context()
	repo := GetAppContext(c).CRM().Repo()
	page, pageSize := parsePagination(c)

	total, err := repo.CountProducts(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	products, err := repo.ListProducts(ctx, crm.Pagination{Page: page, PageSize: pageSize})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return paged(c, products, total, page, pageSize)
}

// listLowStockProducts accepts an optional threshold, default crm.LowStockThreshold
func listLowStockProducts(c echo.Context) error {
	threshold := crm.LowStockThreshold
	if v := c.QueryParam("threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fail(c, http.StatusBadRequest, "INVALID_THRESHOLD", "threshold must be a non negative integer", nil)
		}
		threshold = n
	}
	products, err := GetAppContext(c).CRM().Repo().LowStockProducts(c.Request().Context(), threshold)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return ok(c, products)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	product, err := GetAppContext(c).CRM().Repo().GetProduct(c.Request().Context(), id)
	if err != nil {
		return handleValidationError(c, err)
	}
	return ok(c, product)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	product, err := GetAppContext(c).CRM().CreateProduct(c.Request().Context(), payload.input())
	if err != nil {
		return handleValidationError(c, err)
	}
	return created(c, product)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	product, err := GetAppContext(c).CRM().UpdateProduct(c.Request().Context(), id, payload.input())
	if err != nil {
		return handleValidationError(c, err)
	}
	return ok(c, product)
}

func restockProducts(c echo.Context) error {
	products, err := GetAppContext(c).CRM().RestockLowStock(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "RESTOCK_FAILED", "Error during stock update", err.Error())
	}
	return ok(c, products)
}
