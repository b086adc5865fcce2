package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func positionedNode(schemaID, value string, page int, box []float64) FieldNode {
	return FieldNode{
		SchemaID: schemaID,
		Category: "datapoint",
		Content:  &FieldContent{Value: value, Page: intPtr(page), Position: box},
	}
}

func TestPositions_Exists(t *testing.T) {
	a := &Annotation{
		ID: 42,
		Content: []FieldNode{
			positionedNode("total", "99.90", 2, []float64{10, 20, 30, 40}),
		},
	}

	rows := Positions(a, "total")
	require.Len(t, rows, 1)
	assert.Equal(t, StatusExists, rows[0].Status)
	assert.Equal(t, int64(42), rows[0].AnnotationID)
	assert.Equal(t, 2, *rows[0].Page)
	assert.Equal(t, 10.0, *rows[0].X1)
	assert.Equal(t, 40.0, *rows[0].Y2)
}

func TestPositions_MissingBoxYieldsNullCoordinates(t *testing.T) {
	a := &Annotation{
		ID: 42,
		Content: []FieldNode{
			{SchemaID: "total", Content: &FieldContent{Value: "5", Page: intPtr(1)}},
		},
	}

	rows := Positions(a, "total")
	require.Len(t, rows, 1)
	assert.Equal(t, StatusExists, rows[0].Status)
	assert.Nil(t, rows[0].X1)
	assert.Nil(t, rows[0].Y1)
	assert.Nil(t, rows[0].X2)
	assert.Nil(t, rows[0].Y2)
}

func TestPositions_AbsentInSchema(t *testing.T) {
	a := &Annotation{ID: 42, Content: []FieldNode{datapoint("other", "x")}}

	rows := Positions(a, "total")
	require.Len(t, rows, 1)
	assert.Equal(t, StatusAbsentInSchema, rows[0].Status)
	assert.Nil(t, rows[0].Page)
	assert.Nil(t, rows[0].X1)
}

func TestNormalizeGeometry_CenterPercentages(t *testing.T) {
	collection := Collection{
		1: {
			ID: 1,
			Content: []FieldNode{
				positionedNode("total", "99.90", 1, []float64{100, 200, 300, 400}),
				datapoint("doc_type", "invoice"),
			},
			Pages: []Page{{Number: 1, Width: 1000, Height: 2000}},
		},
	}

	rows := NormalizeGeometry(collection, "total", "doc_type")
	require.Len(t, rows, 1)
	assert.Equal(t, "invoice", rows[0].Slicer)
	assert.Equal(t, 200.0, *rows[0].CenterX)
	assert.Equal(t, 300.0, *rows[0].CenterY)
	assert.Equal(t, 20.0, *rows[0].CenterXPercent)
	assert.Equal(t, 15.0, *rows[0].CenterYPercent)
}

func TestNormalizeGeometry_HeaderFieldSkipsEntity(t *testing.T) {
	// A matched node without a page key is page-independent; the join
	// is skipped for the whole entity without raising.
	collection := Collection{
		1: {
			ID: 1,
			Content: []FieldNode{
				datapoint("doc_ref", "manual-entry"),
			},
			Pages: []Page{{Number: 1, Width: 1000, Height: 2000}},
		},
	}

	rows := NormalizeGeometry(collection, "doc_ref", "")
	assert.Empty(t, rows)
}

func TestNormalizeGeometry_AbsentFieldKeepsPlaceholderRow(t *testing.T) {
	collection := Collection{
		1: {ID: 1, Content: []FieldNode{datapoint("other", "x")}},
	}

	rows := NormalizeGeometry(collection, "total", "missing_slicer")
	require.Len(t, rows, 1)
	assert.Equal(t, StatusAbsentInSchema, rows[0].Status)
	assert.Equal(t, EmptySlicer, rows[0].Slicer)
	assert.Nil(t, rows[0].CenterXPercent)
}

func TestNormalizeGeometry_UnknownPageLeavesPercentagesNull(t *testing.T) {
	collection := Collection{
		1: {
			ID: 1,
			Content: []FieldNode{
				positionedNode("total", "1", 7, []float64{0, 0, 10, 10}),
			},
			Pages: []Page{{Number: 1, Width: 100, Height: 100}},
		},
	}

	rows := NormalizeGeometry(collection, "total", "")
	require.Len(t, rows, 1)
	assert.Equal(t, 5.0, *rows[0].CenterX)
	assert.Nil(t, rows[0].PageWidth)
	assert.Nil(t, rows[0].CenterXPercent)
}
