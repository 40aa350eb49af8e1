package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/toughcrm/config"
)

func TestNewWebServerRoutes(t *testing.T) {
	ApiGET("/ping-test", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(AppContextKey).(string))
	})
	Handle(http.MethodGet, "/root-test", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	srv := NewWebServer(config.DefaultAppConfig, "the-app")

	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping-test", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "the-app", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/root-test", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidatorPhoneTag(t *testing.T) {
	type payload struct {
		Name  string `validate:"required"`
		Phone string `validate:"omitempty,crmphone"`
	}
	v := NewValidator()
	require.NoError(t, v.Validate(&payload{Name: "a", Phone: "123-456-7890"}))
	require.NoError(t, v.Validate(&payload{Name: "a"}))
	assert.Error(t, v.Validate(&payload{Name: "a", Phone: "12345"}))
	assert.Error(t, v.Validate(&payload{Phone: "+1234567890"}))
}
