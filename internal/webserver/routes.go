package webserver

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
	mws     []echo.MiddlewareFunc
}

var (
	routesMu   sync.Mutex
	apiRoutes  []route
	rootRoutes []route
)

func addApi(method, path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	routesMu.Lock()
	defer routesMu.Unlock()
	apiRoutes = append(apiRoutes, route{method: method, path: path, handler: h, mws: m})
}

// ApiGET registers a GET route under /api/v1
func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	addApi(http.MethodGet, path, h, m...)
}

// ApiPOST registers a POST route under /api/v1
func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	addApi(http.MethodPost, path, h, m...)
}

// ApiPUT registers a PUT route under /api/v1
func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	addApi(http.MethodPut, path, h, m...)
}

// ApiDELETE registers a DELETE route under /api/v1
func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	addApi(http.MethodDelete, path, h, m...)
}

// Handle registers a route outside the api group, e.g. /graphql or /health
func Handle(method, path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	routesMu.Lock()
	defer routesMu.Unlock()
	rootRoutes = append(rootRoutes, route{method: method, path: path, handler: h, mws: m})
}

func registeredRoutes() (api []route, root []route) {
	routesMu.Lock()
	defer routesMu.Unlock()
	return append([]route(nil), apiRoutes...), append([]route(nil), rootRoutes...)
}
