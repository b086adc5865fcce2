package domain

// FieldNode is one node of a document's extracted field tree.
// Sections and multivalue fields carry children; datapoints carry
// content. The tree is finite and acyclic.
type FieldNode struct {
	// ID is the node identifier assigned by the remote service.
	ID int64 `json:"id,omitempty"`

	// SchemaID is the stable key identifying the field's role in the
	// document schema. Tree lookups address nodes by this key.
	SchemaID string `json:"schema_id"`

	// Category is the node kind (section, datapoint, multivalue...).
	Category string `json:"category,omitempty"`

	// Content is the extracted value and its geometry. Nil for
	// structural nodes.
	Content *FieldContent `json:"content,omitempty"`

	// Children are the nested nodes in document order.
	Children []FieldNode `json:"children,omitempty"`
}

// FieldContent is the payload of a datapoint node.
type FieldContent struct {
	// Value is the extracted field value.
	Value string `json:"value"`

	// Page is the 1-based page number the value was read from.
	// Nil for header-level fields with no page-bound position.
	Page *int `json:"page,omitempty"`

	// Position is the pixel bounding box [x1, y1, x2, y2].
	// Nil when the value has no position (e.g. entered manually).
	Position []float64 `json:"position,omitempty"`

	// NormalizedValue is the service-normalised form of Value.
	NormalizedValue string `json:"normalized_value,omitempty"`
}

// FindBySchemaID returns all nodes in the tree whose schema id equals
// schemaID, in pre-order: parent before children, siblings in array
// order. A matching node's own children are not searched; the service
// schema does not nest a field id inside itself. No match yields an
// empty result, never an error.
//
// Service-supplied trees can be deep, so traversal uses an explicit
// work stack instead of recursion. Pre-order is preserved by pushing
// children in reverse.
func FindBySchemaID(tree []FieldNode, schemaID string) []*FieldNode {
	var matches []*FieldNode

	stack := make([]*FieldNode, 0, len(tree))
	for i := len(tree) - 1; i >= 0; i-- {
		stack = append(stack, &tree[i])
	}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.SchemaID == schemaID {
			matches = append(matches, node)
			continue
		}
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, &node.Children[i])
		}
	}

	return matches
}
