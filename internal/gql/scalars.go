package gql

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/shopspring/decimal"
)

// Decimal is a fixed point amount serialized as a string with two decimals.
// Input accepts strings and numbers.
var Decimal = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Decimal",
	Description: "Fixed point decimal amount, serialized as a string with two decimals",
	Serialize: func(value interface{}) interface{} {
		switch v := value.(type) {
		case decimal.Decimal:
			return v.StringFixed(2)
		case *decimal.Decimal:
			if v == nil {
				return nil
			}
			return v.StringFixed(2)
		}
		return nil
	},
	ParseValue: parseDecimal,
	ParseLiteral: func(valueAST ast.Value) interface{} {
		switch v := valueAST.(type) {
		case *ast.StringValue:
			return parseDecimal(v.Value)
		case *ast.IntValue:
			return parseDecimal(v.Value)
		case *ast.FloatValue:
			return parseDecimal(v.Value)
		}
		return nil
	},
})

func parseDecimal(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case decimal.Decimal:
		return v
	}
	return nil
}

// DateTime is serialized as RFC3339. Input accepts any layout dateparse understands,
// zone-less values are read in the local time zone.
var DateTime = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "DateTime",
	Description: "Timestamp, RFC3339 on output",
	Serialize: func(value interface{}) interface{} {
		switch v := value.(type) {
		case time.Time:
			return v.Format(time.RFC3339)
		case *time.Time:
			if v == nil {
				return nil
			}
			return v.Format(time.RFC3339)
		}
		return nil
	},
	ParseValue: parseDateTime,
	ParseLiteral: func(valueAST ast.Value) interface{} {
		if v, ok := valueAST.(*ast.StringValue); ok {
			return parseDateTime(v.Value)
		}
		return nil
	},
})

func parseDateTime(value interface{}) interface{} {
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}
	t, err := dateparse.ParseLocal(s)
	if err != nil {
		return nil
	}
	return t
}
