// Package gql exposes the CRM over GraphQL.
package gql

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/araddon/dateparse"
	"github.com/graphql-go/graphql"
	"github.com/mitchellh/mapstructure"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/talkincode/toughcrm/internal/crm"
	"github.com/talkincode/toughcrm/internal/domain"
)

// HelloMessage answers the { hello } probe
const HelloMessage = "Hello, GraphQL!"

type resolver struct {
	svc *crm.Service
}

// NewSchema builds the CRM schema bound to svc
func NewSchema(svc *crm.Service) (graphql.Schema, error) {
	r := &resolver{svc: svc}
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    r.queryType(),
		Mutation: r.mutationType(),
	})
}

func (r *resolver) queryType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hello": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return HelloMessage, nil
				},
			},
			"customers": &graphql.Field{
				Type: graphql.NewList(customerType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.svc.Repo().ListCustomers(p.Context, crm.Pagination{})
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.svc.Repo().ListProducts(p.Context, crm.Pagination{})
				},
			},
			"orders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Args: graphql.FieldConfigArgument{
					"orderDateGte": &graphql.ArgumentConfig{Type: graphql.String},
					"customerId":   &graphql.ArgumentConfig{Type: graphql.ID},
				},
				Resolve: r.resolveOrders,
			},
			"customer": &graphql.Field{
				Type: customerType,
				Args: graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return nilIfNotFound(r.svc.Repo().GetCustomer(p.Context, parseID(p.Args["id"])))
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return nilIfNotFound(r.svc.Repo().GetProduct(p.Context, parseID(p.Args["id"])))
				},
			},
			"order": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return nilIfNotFound(r.svc.Repo().GetOrder(p.Context, parseID(p.Args["id"])))
				},
			},
			"report": &graphql.Field{
				Type: reportType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.svc.GenerateReport(p.Context)
				},
			},
		},
	})
}

// nilIfNotFound turns a missing record into a null result
func nilIfNotFound[T any](v *T, err error) (interface{}, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *resolver) resolveOrders(p graphql.ResolveParams) (interface{}, error) {
	var filter crm.OrderFilter
	if s, ok := p.Args["orderDateGte"].(string); ok && s != "" {
		since, err := dateparse.ParseLocal(s)
		if err != nil {
			return nil, domain.NewValidationError(domain.InvalidOrderDate)
		}
		filter.OrderDateGte = &since
	}
	if v, ok := p.Args["customerId"]; ok && v != nil {
		filter.CustomerID = parseID(v)
		if filter.CustomerID == 0 {
			return []domain.Order{}, nil
		}
	}
	return r.svc.Repo().ListOrders(p.Context, filter)
}

func (r *resolver) mutationType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createCustomer": &graphql.Field{
				Type: createCustomerPayload,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(customerInputType)},
				},
				Resolve: r.createCustomer,
			},
			"bulkCreateCustomers": &graphql.Field{
				Type: bulkCreateCustomersPayload,
				Args: graphql.FieldConfigArgument{
					"inputs": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(customerInputType)))},
				},
				Resolve: r.bulkCreateCustomers,
			},
			"createProduct": &graphql.Field{
				Type: createProductPayload,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(productInputType)},
				},
				Resolve: r.createProduct,
			},
			"createOrder": &graphql.Field{
				Type: createOrderPayload,
				Args: graphql.FieldConfigArgument{
					"customerId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"productIds": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
					"orderDate":  &graphql.ArgumentConfig{Type: DateTime},
				},
				Resolve: r.createOrder,
			},
			"updateLowStockProducts": &graphql.Field{
				Type:    updateLowStockPayload,
				Resolve: r.updateLowStockProducts,
			},
		},
	})
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decodeInput copies a GraphQL input object into a Go struct
func decodeInput(input interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: func(from, to reflect.Type, data interface{}) (interface{}, error) {
			if to != decimalType || from == decimalType {
				return data, nil
			}
			if d, ok := parseDecimal(data).(decimal.Decimal); ok {
				return d, nil
			}
			return data, nil
		},
	})
	if err != nil {
		return err
	}
	return pkgerrors.Wrap(dec.Decode(input), "decode input")
}

// payloadError keeps validation failures in the payload, anything else becomes a GraphQL error
func payloadError(payload map[string]interface{}, err error) (interface{}, error) {
	if domain.IsValidationError(err) {
		payload["error"] = err.Error()
		return payload, nil
	}
	return nil, err
}

func (r *resolver) createCustomer(p graphql.ResolveParams) (interface{}, error) {
	var in crm.CustomerInput
	if err := decodeInput(p.Args["input"], &in); err != nil {
		return nil, err
	}
	customer, err := r.svc.CreateCustomer(p.Context, in)
	if err != nil {
		return payloadError(map[string]interface{}{}, err)
	}
	return map[string]interface{}{
		"customer": customer,
		"message":  "Customer created",
	}, nil
}

func (r *resolver) bulkCreateCustomers(p graphql.ResolveParams) (interface{}, error) {
	var inputs []crm.CustomerInput
	if err := decodeInput(p.Args["inputs"], &inputs); err != nil {
		return nil, err
	}
	result := r.svc.BulkCreateCustomers(p.Context, inputs)
	return map[string]interface{}{
		"customers": result.Customers,
		"errors":    result.Errors,
	}, nil
}

func (r *resolver) createProduct(p graphql.ResolveParams) (interface{}, error) {
	var in crm.ProductInput
	if err := decodeInput(p.Args["input"], &in); err != nil {
		return nil, err
	}
	product, err := r.svc.CreateProduct(p.Context, in)
	if err != nil {
		return payloadError(map[string]interface{}{}, err)
	}
	return map[string]interface{}{"product": product}, nil
}

func (r *resolver) createOrder(p graphql.ResolveParams) (interface{}, error) {
	in := crm.OrderInput{CustomerID: parseID(p.Args["customerId"])}
	if ids, ok := p.Args["productIds"].([]interface{}); ok {
		for _, id := range ids {
			in.ProductIDs = append(in.ProductIDs, parseID(id))
		}
	}
	if t, ok := p.Args["orderDate"].(time.Time); ok {
		in.OrderDate = &t
	}
	order, err := r.svc.CreateOrder(p.Context, in)
	if err != nil {
		return payloadError(map[string]interface{}{}, err)
	}
	return map[string]interface{}{"order": order}, nil
}

func (r *resolver) updateLowStockProducts(p graphql.ResolveParams) (interface{}, error) {
	products, err := r.svc.RestockLowStock(p.Context)
	if err != nil {
		return nil, err
	}
	message := "No low stock products"
	if len(products) > 0 {
		message = "Low stock products updated"
	}
	return map[string]interface{}{
		"products": products,
		"message":  message,
	}, nil
}

// Execute runs a request against schema
func Execute(ctx context.Context, schema graphql.Schema, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}
