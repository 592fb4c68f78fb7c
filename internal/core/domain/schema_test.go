package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaRegistryHasAllKinds(t *testing.T) {
	r := NewSchemaRegistry()

	kinds := []ResponseKind{
		KindConversational, KindCode, KindAnalytical, KindSearch, KindTask,
		KindCreative, KindSummary, KindComparison, KindInstruction,
	}
	assert.Len(t, r.Kinds(), len(kinds))
	for _, kind := range kinds {
		schema := r.Lookup(kind)
		assert.Equal(t, kind, schema.Kind, "kind %s", kind)
		assert.NotNil(t, schema.Shape, "kind %s", kind)
		assert.NotEmpty(t, schema.Guidance, "kind %s", kind)
		assert.NotEmpty(t, schema.Example, "kind %s", kind)
	}
}

func TestSchemaRegistryUnknownKindFallsBackToConversational(t *testing.T) {
	r := NewSchemaRegistry()

	schema := r.Lookup(ResponseKind("definitely_not_registered"))
	assert.Equal(t, KindConversational, schema.Kind)

	schema = r.Lookup(ResponseKind(""))
	assert.Equal(t, KindConversational, schema.Kind)
}

func TestSchemaShapesDeclareRequiredFields(t *testing.T) {
	r := NewSchemaRegistry()

	cases := map[ResponseKind]string{
		KindConversational: "message",
		KindCode:           "code_blocks",
		KindSearch:         "results",
		KindTask:           "steps",
		KindSummary:        "summary",
		KindComparison:     "rows",
	}
	for kind, field := range cases {
		schema := r.Lookup(kind)
		assert.Contains(t, schema.RequiredFields(), "topic", "kind %s", kind)
		assert.Contains(t, schema.RequiredFields(), field, "kind %s", kind)
	}
}

func TestSchemaShapeJSONIsEmbeddable(t *testing.T) {
	r := NewSchemaRegistry()

	shapeJSON := r.Lookup(KindCode).ShapeJSON()
	require.NotEqual(t, "{}", shapeJSON)
	assert.Contains(t, shapeJSON, "code_blocks")
	assert.Contains(t, shapeJSON, "language")
}
