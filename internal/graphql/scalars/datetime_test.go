package scalars

import (
	"testing"
	"time"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/stretchr/testify/assert"
)

func TestDateTime(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 30, 0, 0, time.FixedZone("WAT", 3600))

	assert.Equal(t, "2026-03-01T09:30:00Z", DateTime.Serialize(ts))
	assert.Equal(t, "2026-03-01T09:30:00Z", DateTime.Serialize(&ts))
	assert.Nil(t, DateTime.Serialize("yesterday"))

	parsed := DateTime.ParseLiteral(&ast.StringValue{Value: "2026-03-01T09:30:00Z"})
	assert.True(t, ts.Equal(parsed.(time.Time)))
	assert.Nil(t, DateTime.ParseValue("not a date"))
}
