package adminapi

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/toughcrm/internal/app"
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/internal/webserver"
)

// Response is the envelope of every admin API reply
type Response struct {
	Code string      `json:"code"`
	Msg  string      `json:"msg,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// PageData is the data of a paged listing
type PageData struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

var registerOnce sync.Once

// Init registers the admin API routes with the webserver. Call it before webserver.NewWebServer.
func Init() {
	registerOnce.Do(func() {
		registerHealthRoutes()
		registerCustomerRoutes()
		registerProductRoutes()
		registerOrderRoutes()
		registerJobRoutes()
		registerReportRoutes()
		registerDbmsRoutes()
		registerGraphQLRoutes()
	})
}

// GetAppContext returns the application attached by the webserver middleware
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB().WithContext(c.Request().Context())
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Code: "SUCCESS", Data: data})
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{Code: "SUCCESS", Data: data})
}

func paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return ok(c, PageData{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func fail(c echo.Context, status int, code, msg string, detail interface{}) error {
	if detail != nil {
		zap.L().Debug("api request failed",
			zap.String("code", code),
			zap.Any("detail", detail),
			zap.String("namespace", "api"))
	}
	return c.JSON(status, Response{Code: code, Msg: msg, Data: detail})
}

// parsePagination reads page and pageSize (or perPage). Defaults are 1 and 20, pageSize is capped at 500.
func parsePagination(c echo.Context) (page, pageSize int) {
	page = cast.ToInt(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	size := c.QueryParam("pageSize")
	if size == "" {
		size = c.QueryParam("perPage")
	}
	pageSize = cast.ToInt(size)
	if pageSize < 1 || pageSize > 500 {
		pageSize = 20
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// handleValidationError maps payload tag failures and CRM validation errors to a 400 (409 for a taken email).
func handleValidationError(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		kind := domain.ErrorKind("INVALID_REQUEST")
		msg := "Invalid request parameters"
		if k, found := fieldKind(verrs[0]); found {
			kind, msg = k, k.Message()
		}
		return fail(c, http.StatusBadRequest, string(kind), msg, fields)
	}

	if kind, isKind := domain.KindOf(err); isKind {
		status := http.StatusBadRequest
		if kind == domain.EmailExists {
			status = http.StatusConflict
		}
		return fail(c, status, string(kind), err.Error(), nil)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	}
	zap.L().Error("api request error", zap.Error(err), zap.String("namespace", "api"))
	return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Internal error", err.Error())
}

func fieldKind(fe validator.FieldError) (domain.ErrorKind, bool) {
	switch {
	case fe.Tag() == "crmphone":
		return domain.InvalidPhoneFormat, true
	case fe.Field() == "Name" && fe.Tag() == "required":
		return domain.NameRequired, true
	case fe.Field() == "Email" && fe.Tag() == "required":
		return domain.EmailRequired, true
	}
	return "", false
}
