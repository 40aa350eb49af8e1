package gql

import (
	"strconv"

	"github.com/graphql-go/graphql"

	"github.com/talkincode/toughcrm/internal/domain"
)

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

// parseID returns 0 for ids that are not integers. No stored record has id 0.
func parseID(v interface{}) int64 {
	s, _ := v.(string)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func asCustomer(src interface{}) *domain.Customer {
	switch v := src.(type) {
	case *domain.Customer:
		return v
	case domain.Customer:
		return &v
	}
	return nil
}

func asProduct(src interface{}) *domain.Product {
	switch v := src.(type) {
	case *domain.Product:
		return v
	case domain.Product:
		return &v
	}
	return nil
}

func asOrder(src interface{}) *domain.Order {
	switch v := src.(type) {
	case *domain.Order:
		return v
	case domain.Order:
		return &v
	}
	return nil
}

func customerField(typ graphql.Output, fn func(c *domain.Customer) interface{}) *graphql.Field {
	return &graphql.Field{Type: typ, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
		if c := asCustomer(p.Source); c != nil {
			return fn(c), nil
		}
		return nil, nil
	}}
}

func productField(typ graphql.Output, fn func(p *domain.Product) interface{}) *graphql.Field {
	return &graphql.Field{Type: typ, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
		if v := asProduct(p.Source); v != nil {
			return fn(v), nil
		}
		return nil, nil
	}}
}

func orderField(typ graphql.Output, fn func(o *domain.Order) interface{}) *graphql.Field {
	return &graphql.Field{Type: typ, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
		if o := asOrder(p.Source); o != nil {
			return fn(o), nil
		}
		return nil, nil
	}}
}

var customerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Customer",
	Fields: graphql.Fields{
		"id":        customerField(graphql.NewNonNull(graphql.ID), func(c *domain.Customer) interface{} { return idString(c.ID) }),
		"name":      customerField(graphql.NewNonNull(graphql.String), func(c *domain.Customer) interface{} { return c.Name }),
		"email":     customerField(graphql.NewNonNull(graphql.String), func(c *domain.Customer) interface{} { return c.Email }),
		"phone":     customerField(graphql.String, func(c *domain.Customer) interface{} { return c.Phone }),
		"createdAt": customerField(DateTime, func(c *domain.Customer) interface{} { return c.CreatedAt }),
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":    productField(graphql.NewNonNull(graphql.ID), func(p *domain.Product) interface{} { return idString(p.ID) }),
		"name":  productField(graphql.NewNonNull(graphql.String), func(p *domain.Product) interface{} { return p.Name }),
		"price": productField(graphql.NewNonNull(Decimal), func(p *domain.Product) interface{} { return p.Price }),
		"stock": productField(graphql.NewNonNull(graphql.Int), func(p *domain.Product) interface{} { return p.Stock }),
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":          orderField(graphql.NewNonNull(graphql.ID), func(o *domain.Order) interface{} { return idString(o.ID) }),
		"customer":    orderField(customerType, func(o *domain.Order) interface{} { return &o.Customer }),
		"products":    orderField(graphql.NewList(productType), func(o *domain.Order) interface{} { return o.Products }),
		"orderDate":   orderField(DateTime, func(o *domain.Order) interface{} { return o.OrderDate }),
		"totalAmount": orderField(graphql.NewNonNull(Decimal), func(o *domain.Order) interface{} { return o.TotalAmount }),
	},
})

var reportType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Report",
	Fields: graphql.Fields{
		"totalCustomers": reportField(graphql.Int, func(r *domain.Report) interface{} { return r.TotalCustomers }),
		"totalOrders":    reportField(graphql.Int, func(r *domain.Report) interface{} { return r.TotalOrders }),
		"totalRevenue":   reportField(Decimal, func(r *domain.Report) interface{} { return r.TotalRevenue }),
		"averageOrder":   reportField(graphql.Float, func(r *domain.Report) interface{} { return r.AverageOrder }),
		"medianOrder":    reportField(graphql.Float, func(r *domain.Report) interface{} { return r.MedianOrder }),
		"generatedAt":    reportField(DateTime, func(r *domain.Report) interface{} { return r.GeneratedAt }),
	},
})

func reportField(typ graphql.Output, fn func(r *domain.Report) interface{}) *graphql.Field {
	return &graphql.Field{Type: typ, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
		if r, ok := p.Source.(*domain.Report); ok && r != nil {
			return fn(r), nil
		}
		return nil, nil
	}}
}

var customerInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CustomerInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"email": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"phone": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var productInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ProductInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"price": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(Decimal)},
		"stock": &graphql.InputObjectFieldConfig{Type: graphql.Int, DefaultValue: 0},
	},
})

// Mutation payloads are plain maps resolved by the default resolver

var createCustomerPayload = graphql.NewObject(graphql.ObjectConfig{
	Name: "CreateCustomerPayload",
	Fields: graphql.Fields{
		"customer": &graphql.Field{Type: customerType},
		"message":  &graphql.Field{Type: graphql.String},
		"error":    &graphql.Field{Type: graphql.String},
	},
})

var bulkCreateCustomersPayload = graphql.NewObject(graphql.ObjectConfig{
	Name: "BulkCreateCustomersPayload",
	Fields: graphql.Fields{
		"customers": &graphql.Field{Type: graphql.NewList(customerType)},
		"errors":    &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})

var createProductPayload = graphql.NewObject(graphql.ObjectConfig{
	Name: "CreateProductPayload",
	Fields: graphql.Fields{
		"product": &graphql.Field{Type: productType},
		"error":   &graphql.Field{Type: graphql.String},
	},
})

var createOrderPayload = graphql.NewObject(graphql.ObjectConfig{
	Name: "CreateOrderPayload",
	Fields: graphql.Fields{
		"order": &graphql.Field{Type: orderType},
		"error": &graphql.Field{Type: graphql.String},
	},
})

var updateLowStockPayload = graphql.NewObject(graphql.ObjectConfig{
	Name: "UpdateLowStockProductsPayload",
	Fields: graphql.Fields{
		"products": &graphql.Field{Type: graphql.NewList(productType)},
		"message":  &graphql.Field{Type: graphql.String},
	},
})
