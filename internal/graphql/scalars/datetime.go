package scalars

import (
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// DateTime is an RFC 3339 timestamp
var DateTime = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "DateTime",
	Description: "An RFC 3339 timestamp in UTC",
	Serialize:   serializeDateTime,
	ParseValue: func(value interface{}) interface{} {
		if s, ok := value.(string); ok {
			return parseDateTime(s)
		}
		return nil
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		if v, ok := valueAST.(*ast.StringValue); ok {
			return parseDateTime(v.Value)
		}
		return nil
	},
})

func serializeDateTime(value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.UTC().Format(time.RFC3339)
	}
	return nil
}

func parseDateTime(s string) interface{} {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return t
}
