package gql

import (
	"net/http"

	"github.com/graphql-go/graphql"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request is the body of a GraphQL HTTP request
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

func errorBody(msg string) map[string]interface{} {
	return map[string]interface{}{
		"errors": []map[string]string{{"message": msg}},
	}
}

// Handler serves GraphQL over POST with a JSON body, and over GET with query parameters.
func Handler(schema graphql.Schema) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req Request
		if c.Request().Method == http.MethodGet {
			req.Query = c.QueryParam("query")
			req.OperationName = c.QueryParam("operationName")
			if vars := c.QueryParam("variables"); vars != "" {
				if err := json.UnmarshalFromString(vars, &req.Variables); err != nil {
					return c.JSON(http.StatusBadRequest, errorBody("invalid variables: "+err.Error()))
				}
			}
		} else if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("invalid request body: "+err.Error()))
		}
		if req.Query == "" {
			return c.JSON(http.StatusBadRequest, errorBody("Must provide query string."))
		}

		result := Execute(c.Request().Context(), schema, req)
		if result.HasErrors() {
			zap.L().Debug("graphql errors",
				zap.Any("errors", result.Errors),
				zap.String("namespace", "graphql"))
		}
		body, err := json.Marshal(result)
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, body)
	}
}
