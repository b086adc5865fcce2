package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altum-labs/docharvest/internal/core/domain"
)

func TestFieldValues_ReadsContentTree(t *testing.T) {
	a := resolverAnnotation(1, 5,
		domain.FieldNode{
			SchemaID: "invoice_id",
			Content: &domain.FieldContent{
				Value:    "INV-9",
				Position: []float64{10, 20, 30, 40},
			},
		},
	)

	rows := FieldValues(domain.Collection{1: a}, []string{"invoice_id"})
	require.Len(t, rows, 1)
	assert.Equal(t, FieldValueRow{
		AnnotationID: 1,
		FieldID:      "invoice_id",
		Value:        "INV-9",
	}, rows[0])
}

func TestFieldValues_MetaPrefixReadsMetadata(t *testing.T) {
	a := resolverAnnotation(1, 5)
	a.Metadata["status"] = "to_review"
	a.Metadata["automated"] = true

	rows := FieldValues(domain.Collection{1: a}, []string{"meta.status", "meta.automated", "meta.missing"})
	require.Len(t, rows, 3)
	assert.Equal(t, "to_review", rows[0].Value)
	assert.Equal(t, "true", rows[1].Value)
	assert.Equal(t, "", rows[2].Value)
}

func TestFieldValues_ManualFlagRequiresValueWithoutPosition(t *testing.T) {
	a := resolverAnnotation(1, 5,
		domain.FieldNode{SchemaID: "typed_in", Content: &domain.FieldContent{Value: "by hand"}},
		domain.FieldNode{SchemaID: "extracted", Content: &domain.FieldContent{
			Value:    "from page",
			Position: []float64{1, 2, 3, 4},
		}},
		domain.FieldNode{SchemaID: "blank", Content: &domain.FieldContent{}},
	)

	rows := FieldValues(domain.Collection{1: a}, []string{"typed_in", "extracted", "blank"})
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Manual)
	assert.False(t, rows[1].Manual)
	assert.False(t, rows[2].Manual)
}

func TestFieldValues_OneRowPerMatchingNode(t *testing.T) {
	a := resolverAnnotation(1, 5,
		domain.FieldNode{
			SchemaID: "line_items",
			Category: "multivalue",
			Children: []domain.FieldNode{
				{SchemaID: "item_amount", Content: &domain.FieldContent{Value: "12.50"}},
				{SchemaID: "item_amount", Content: &domain.FieldContent{Value: "7.10"}},
			},
		},
	)

	rows := FieldValues(domain.Collection{1: a}, []string{"item_amount"})
	require.Len(t, rows, 2)
	assert.Equal(t, "12.50", rows[0].Value)
	assert.Equal(t, "7.10", rows[1].Value)
}

func TestFieldValues_UnknownFieldContributesNoRow(t *testing.T) {
	a := resolverAnnotation(1, 5, domain.FieldNode{SchemaID: "invoice_id", Content: &domain.FieldContent{Value: "x"}})
	b := resolverAnnotation(2, 5)

	rows := FieldValues(domain.Collection{1: a, 2: b}, []string{"absent_everywhere"})
	assert.Empty(t, rows)
}
