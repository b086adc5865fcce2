package services

import (
	"fmt"
	"strings"

	"github.com/altum-labs/docharvest/internal/core/domain"
)

// metaPrefix routes a field id to the annotation metadata instead of
// the content tree, e.g. "meta.status".
const metaPrefix = "meta."

// FieldValueRow is one per-document field value, the unit of the
// tabular output consumed by presentation code.
type FieldValueRow struct {
	AnnotationID int64  `json:"annotation_id"`
	FieldID      string `json:"field_id"`
	Value        string `json:"value"`

	// Manual marks a non-empty value whose node carries no position:
	// it was typed in rather than extracted from the document.
	Manual bool `json:"manual"`
}

// FieldValues builds the per-field value table for a collection. A
// field id with the "meta." prefix reads the named metadata key; any
// other id is looked up in the content tree and yields one row per
// matching node. Documents whose schema does not define a field
// simply contribute no row for it.
func FieldValues(collection domain.Collection, fieldIDs []string) []FieldValueRow {
	var rows []FieldValueRow

	for _, id := range collection.SortedIDs() {
		a := collection[id]
		for _, fieldID := range fieldIDs {
			if key, ok := strings.CutPrefix(fieldID, metaPrefix); ok {
				rows = append(rows, FieldValueRow{
					AnnotationID: id,
					FieldID:      fieldID,
					Value:        metadataValue(a.Metadata, key),
				})
				continue
			}

			for _, node := range domain.FindBySchemaID(a.Content, fieldID) {
				if node.Content == nil {
					continue
				}
				rows = append(rows, FieldValueRow{
					AnnotationID: id,
					FieldID:      fieldID,
					Value:        node.Content.Value,
					Manual:       node.Content.Position == nil && node.Content.Value != "",
				})
			}
		}
	}

	return rows
}

func metadataValue(metadata map[string]any, key string) string {
	value, ok := metadata[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
