package gql

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/toughcrm/internal/crm"
	"github.com/talkincode/toughcrm/internal/crm/crmtest"
)

func newTestSchema(t *testing.T) graphql.Schema {
	t.Helper()
	svc := crm.NewService(crm.NewGormRepository(crmtest.NewDB(t)), nil)
	schema, err := NewSchema(svc)
	require.NoError(t, err)
	return schema
}

func run(t *testing.T, schema graphql.Schema, query string, vars map[string]interface{}) map[string]interface{} {
	t.Helper()
	result := Execute(context.Background(), schema, Request{Query: query, Variables: vars})
	require.Empty(t, result.Errors, "unexpected graphql errors")
	data, ok := result.Data.(map[string]interface{})
	require.True(t, ok)
	return data
}

func field(data map[string]interface{}, path ...string) interface{} {
	var cur interface{} = data
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

const createCustomerMutation = `mutation($input: CustomerInput!) {
  createCustomer(input: $input) { customer { id name email phone } message error }
}`

const createProductMutation = `mutation($input: ProductInput!) {
  createProduct(input: $input) { product { id name price stock } error }
}`

const createOrderMutation = `mutation($customerId: ID!, $productIds: [ID!]!) {
  createOrder(customerId: $customerId, productIds: $productIds) {
    order { id totalAmount customer { email } products { name } }
    error
  }
}`

func createCustomer(t *testing.T, schema graphql.Schema, name, email string) string {
	t.Helper()
	data := run(t, schema, createCustomerMutation, map[string]interface{}{
		"input": map[string]interface{}{"name": name, "email": email},
	})
	id, ok := field(data, "createCustomer", "customer", "id").(string)
	require.True(t, ok)
	return id
}

func createProduct(t *testing.T, schema graphql.Schema, name string, price interface{}) string {
	t.Helper()
	data := run(t, schema, createProductMutation, map[string]interface{}{
		"input": map[string]interface{}{"name": name, "price": price},
	})
	id, ok := field(data, "createProduct", "product", "id").(string)
	require.True(t, ok, "product not created: %v", data)
	return id
}

func TestHello(t *testing.T) {
	data := run(t, newTestSchema(t), "{ hello }", nil)
	assert.Equal(t, HelloMessage, data["hello"])
}

func TestCreateCustomerMutation(t *testing.T) {
	schema := newTestSchema(t)

	data := run(t, schema, createCustomerMutation, map[string]interface{}{
		"input": map[string]interface{}{"name": "Alice", "email": "alice@example.com", "phone": "+1234567890"},
	})
	assert.Equal(t, "Customer created", field(data, "createCustomer", "message"))
	assert.Nil(t, field(data, "createCustomer", "error"))
	assert.Equal(t, "Alice", field(data, "createCustomer", "customer", "name"))
	assert.Equal(t, "+1234567890", field(data, "createCustomer", "customer", "phone"))

	data = run(t, schema, createCustomerMutation, map[string]interface{}{
		"input": map[string]interface{}{"name": "Alice 2", "email": "alice@example.com"},
	})
	assert.Nil(t, field(data, "createCustomer", "customer"))
	assert.Equal(t, "Email already exists", field(data, "createCustomer", "error"))

	data = run(t, schema, createCustomerMutation, map[string]interface{}{
		"input": map[string]interface{}{"name": "Bob", "email": "bob@example.com", "phone": "12345"},
	})
	assert.Equal(t, "Invalid phone format", field(data, "createCustomer", "error"))
}

func TestBulkCreateCustomersMutation(t *testing.T) {
	schema := newTestSchema(t)
	data := run(t, schema, `mutation {
	  bulkCreateCustomers(inputs: [
	    {name: "A", email: "a@example.com"},
	    {name: "B", email: "a@example.com"},
	    {name: "C", email: "c@example.com", phone: "bad"}
	  ]) { customers { email } errors }
	}`, nil)

	customers := field(data, "bulkCreateCustomers", "customers").([]interface{})
	errs := field(data, "bulkCreateCustomers", "errors").([]interface{})
	assert.Len(t, customers, 1)
	assert.Equal(t, []interface{}{"Item 1: Email already exists", "Item 2: Invalid phone format"}, errs)
}

func TestCreateProductMutation(t *testing.T) {
	schema := newTestSchema(t)

	data := run(t, schema, createProductMutation, map[string]interface{}{
		"input": map[string]interface{}{"name": "Laptop", "price": "999.99"},
	})
	assert.Equal(t, "999.99", field(data, "createProduct", "product", "price"))
	assert.Equal(t, 0, field(data, "createProduct", "product", "stock"))

	data = run(t, schema, `mutation { createProduct(input: {name: "Broken", price: -5, stock: 1}) { product { id } error } }`, nil)
	assert.Nil(t, field(data, "createProduct", "product"))
	assert.Equal(t, "Price must be positive", field(data, "createProduct", "error"))

	data = run(t, schema, `mutation { createProduct(input: {name: "Broken", price: "5", stock: -1}) { error } }`, nil)
	assert.Equal(t, "Stock cannot be negative", field(data, "createProduct", "error"))
}

func TestCreateOrderMutation(t *testing.T) {
	schema := newTestSchema(t)
	alice := createCustomer(t, schema, "Alice", "alice@example.com")
	laptop := createProduct(t, schema, "Laptop", "999.99")
	mouse := createProduct(t, schema, "Mouse", 19.5)

	data := run(t, schema, createOrderMutation, map[string]interface{}{
		"customerId": alice,
		"productIds": []interface{}{laptop, mouse, laptop},
	})
	assert.Nil(t, field(data, "createOrder", "error"))
	assert.Equal(t, "1019.49", field(data, "createOrder", "order", "totalAmount"))
	assert.Equal(t, "alice@example.com", field(data, "createOrder", "order", "customer", "email"))
	assert.Len(t, field(data, "createOrder", "order", "products"), 2)

	cases := map[string]map[string]interface{}{
		"Invalid customer ID":             {"customerId": "999", "productIds": []interface{}{laptop}},
		"No valid products selected":      {"customerId": alice, "productIds": []interface{}{"123", "not-a-number"}},
		"One or more invalid product IDs": {"customerId": alice, "productIds": []interface{}{laptop, "999"}},
	}
	for want, vars := range cases {
		data := run(t, schema, createOrderMutation, vars)
		assert.Nil(t, field(data, "createOrder", "order"))
		assert.Equal(t, want, field(data, "createOrder", "error"))
	}

	data = run(t, schema, `{ orders { id totalAmount products { id } } }`, nil)
	assert.Len(t, data["orders"], 1)
}

func TestOrdersQueryFilters(t *testing.T) {
	schema := newTestSchema(t)
	alice := createCustomer(t, schema, "Alice", "alice@example.com")
	bob := createCustomer(t, schema, "Bob", "bob@example.com")
	pen := createProduct(t, schema, "Pen", "1.00")

	run(t, schema, `mutation($c: ID!, $p: [ID!]!) { createOrder(customerId: $c, productIds: $p, orderDate: "2020-01-15") { error } }`,
		map[string]interface{}{"c": alice, "p": []interface{}{pen}})
	run(t, schema, `mutation($c: ID!, $p: [ID!]!) { createOrder(customerId: $c, productIds: $p) { error } }`,
		map[string]interface{}{"c": bob, "p": []interface{}{pen}})

	data := run(t, schema, `{ orders(orderDateGte: "2021-01-01") { customer { email } } }`, nil)
	orders := data["orders"].([]interface{})
	require.Len(t, orders, 1)
	assert.Equal(t, "bob@example.com", field(orders[0].(map[string]interface{}), "customer", "email"))

	data = run(t, schema, `query($c: ID) { orders(customerId: $c) { orderDate } }`, map[string]interface{}{"c": alice})
	orders = data["orders"].([]interface{})
	require.Len(t, orders, 1)
	assert.True(t, strings.HasPrefix(field(orders[0].(map[string]interface{}), "orderDate").(string), "2020-01-15T00:00:00"))

	result := Execute(context.Background(), schema, Request{Query: `{ orders(orderDateGte: "someday") { id } }`})
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "Invalid order date", result.Errors[0].Message)
}

func TestLookupQueries(t *testing.T) {
	schema := newTestSchema(t)
	alice := createCustomer(t, schema, "Alice", "alice@example.com")

	data := run(t, schema, `query($id: ID!) { customer(id: $id) { name } }`, map[string]interface{}{"id": alice})
	assert.Equal(t, "Alice", field(data, "customer", "name"))

	data = run(t, schema, `{ customer(id: "1") { name } product(id: "x") { name } order(id: "2") { id } }`, nil)
	assert.Nil(t, data["customer"])
	assert.Nil(t, data["product"])
	assert.Nil(t, data["order"])

	data = run(t, schema, `{ customers { email } products { id } }`, nil)
	assert.Len(t, data["customers"], 1)
	assert.Empty(t, data["products"])
}

func TestUpdateLowStockAndReport(t *testing.T) {
	schema := newTestSchema(t)
	alice := createCustomer(t, schema, "Alice", "alice@example.com")
	run(t, schema, `mutation { createProduct(input: {name: "Full", price: "10", stock: 12}) { error } }`, nil)
	low := createProduct(t, schema, "Low", "2.50")

	data := run(t, schema, `mutation { updateLowStockProducts { products { name stock } message } }`, nil)
	products := field(data, "updateLowStockProducts", "products").([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "Low", field(products[0].(map[string]interface{}), "name"))
	assert.Equal(t, 10, field(products[0].(map[string]interface{}), "stock"))

	data = run(t, schema, `mutation { updateLowStockProducts { products { name } message } }`, nil)
	assert.Empty(t, field(data, "updateLowStockProducts", "products"))
	assert.Equal(t, "No low stock products", field(data, "updateLowStockProducts", "message"))

	run(t, schema, createOrderMutation, map[string]interface{}{"customerId": alice, "productIds": []interface{}{low}})
	data = run(t, schema, `{ report { totalCustomers totalOrders totalRevenue } }`, nil)
	assert.Equal(t, 1, field(data, "report", "totalCustomers"))
	assert.Equal(t, 1, field(data, "report", "totalOrders"))
	assert.Equal(t, "2.50", field(data, "report", "totalRevenue"))
}

func TestHandler(t *testing.T) {
	e := echo.New()
	h := Handler(newTestSchema(t))

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ hello }"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"hello":"Hello, GraphQL!"}}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/graphql?query=%7B%20hello%20%7D", nil)
	rec = httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Contains(t, rec.Body.String(), "Hello, GraphQL!")

	req = httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{not json`))
	rec = httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ nope }"}`))
	rec = httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"errors"`)
}
