// Package upstream talks to a CRM GraphQL endpoint over HTTP.
package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Error is one entry of a GraphQL "errors" array
type Error struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

// Response is the GraphQL response envelope
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []Error         `json:"errors,omitempty"`
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// Client posts GraphQL documents to a single endpoint
type Client struct {
	endpoint string
	timeout  time.Duration
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{endpoint: endpoint, timeout: timeout}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Query executes query with variables and decodes the "data" member into out.
// A non-200 status, a transport failure or a non-empty "errors" array is returned as an error.
func (c *Client) Query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	var (
		resp Response
		code int
	)
	err := gout.POST(c.endpoint).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetJSON(request{Query: query, Variables: variables}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return errors.Wrapf(err, "post %s", c.endpoint)
	}
	if code != http.StatusOK {
		return errors.Errorf("graphql endpoint returned status %d", code)
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return errors.Errorf("graphql: %s", strings.Join(msgs, "; "))
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return errors.New("graphql response has no data")
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(jsoniter.Unmarshal(resp.Data, out), "decode graphql data")
}

// Hello runs the { hello } query used as a liveness probe.
func (c *Client) Hello(ctx context.Context) (string, error) {
	var data struct {
		Hello string `json:"hello"`
	}
	if err := c.Query(ctx, "{ hello }", nil, &data); err != nil {
		return "", err
	}
	return data.Hello, nil
}

// OrderSummary is the part of an order needed for reminders
type OrderSummary struct {
	ID        string `json:"id"`
	OrderDate string `json:"orderDate"`
	Customer  struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"customer"`
}

const recentOrdersQuery = `query RecentOrders($since: String) {
  orders(orderDateGte: $since) {
    id
    orderDate
    customer { name email }
  }
}`

// RecentOrders lists the orders placed at or after since.
func (c *Client) RecentOrders(ctx context.Context, since time.Time) ([]OrderSummary, error) {
	var data struct {
		Orders []OrderSummary `json:"orders"`
	}
	vars := map[string]interface{}{"since": since.Format(time.RFC3339)}
	if err := c.Query(ctx, recentOrdersQuery, vars, &data); err != nil {
		return nil, err
	}
	return data.Orders, nil
}
