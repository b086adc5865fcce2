package domain

// Field position statuses.
const (
	// StatusExists marks a row backed by a node in the field tree.
	StatusExists = "exists"

	// StatusAbsentInSchema marks a placeholder row for a field id the
	// document's schema does not define. Downstream consumers separate
	// "not defined for this schema" from "defined but empty" by this.
	StatusAbsentInSchema = "absent_in_schema"
)

// EmptySlicer tags geometry rows when the slicer field has no match.
const EmptySlicer = "EMPTY SLICER"

// PositionRow is the raw pixel bounding box of one matched field.
// Coordinates are nil when the node carries no position.
type PositionRow struct {
	AnnotationID int64    `json:"annotation_id"`
	FieldID      string   `json:"field_id"`
	Page         *int     `json:"page"`
	X1           *float64 `json:"x1"`
	Y1           *float64 `json:"y1"`
	X2           *float64 `json:"x2"`
	Y2           *float64 `json:"y2"`
	Status       string   `json:"status"`
}

// Positions returns one row per node matching fieldID in the
// annotation's field tree. When nothing matches, a single placeholder
// row with StatusAbsentInSchema and null geometry is returned.
func Positions(a *Annotation, fieldID string) []PositionRow {
	matches := FindBySchemaID(a.Content, fieldID)
	if len(matches) == 0 {
		return []PositionRow{{
			AnnotationID: a.ID,
			FieldID:      fieldID,
			Status:       StatusAbsentInSchema,
		}}
	}

	rows := make([]PositionRow, 0, len(matches))
	for _, node := range matches {
		row := PositionRow{
			AnnotationID: a.ID,
			FieldID:      fieldID,
			Status:       StatusExists,
		}
		if content := node.Content; content != nil {
			row.Page = content.Page
			if len(content.Position) == 4 {
				row.X1 = &content.Position[0]
				row.Y1 = &content.Position[1]
				row.X2 = &content.Position[2]
				row.Y2 = &content.Position[3]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// GeometryRow is a field bounding box joined against its page's pixel
// dimensions, with the box center expressed as a percentage of the
// page size.
type GeometryRow struct {
	PositionRow

	// Slicer is the value of the slicer field, used to group rows.
	Slicer string `json:"slicer"`

	PageWidth  *float64 `json:"page_width"`
	PageHeight *float64 `json:"page_height"`

	CenterX *float64 `json:"center_x"`
	CenterY *float64 `json:"center_y"`

	CenterXPercent *float64 `json:"center_x_percent"`
	CenterYPercent *float64 `json:"center_y_percent"`
}

// NormalizeGeometry joins each field position of fieldID against the
// matching page geometry for every annotation in the collection and
// computes page-relative center percentages.
//
// When the first matched node carries no page number the field is
// page-independent (header-level) and the entity contributes no
// geometry rows; that is policy, not an omission. A field with no
// match at all contributes its absent_in_schema placeholder row.
func NormalizeGeometry(collection Collection, fieldID, slicerFieldID string) []GeometryRow {
	var rows []GeometryRow

	for _, id := range collection.SortedIDs() {
		a := collection[id]

		slicer := EmptySlicer
		if slicerFieldID != "" {
			if matches := FindBySchemaID(a.Content, slicerFieldID); len(matches) > 0 {
				if content := matches[0].Content; content != nil {
					slicer = content.Value
				}
			}
		}

		positions := Positions(a, fieldID)
		if positions[0].Status == StatusAbsentInSchema {
			rows = append(rows, GeometryRow{PositionRow: positions[0], Slicer: slicer})
			continue
		}
		if positions[0].Page == nil {
			// Header-level field: no page-bound position to join.
			continue
		}

		for _, pos := range positions {
			row := GeometryRow{PositionRow: pos, Slicer: slicer}
			if pos.Page != nil {
				if page := a.PageByNumber(*pos.Page); page != nil {
					width, height := page.Width, page.Height
					row.PageWidth = &width
					row.PageHeight = &height
				}
			}
			if pos.X1 != nil && pos.X2 != nil {
				centerX := (*pos.X1 + *pos.X2) / 2
				row.CenterX = &centerX
				if row.PageWidth != nil && *row.PageWidth != 0 {
					percent := centerX / *row.PageWidth * 100
					row.CenterXPercent = &percent
				}
			}
			if pos.Y1 != nil && pos.Y2 != nil {
				centerY := (*pos.Y1 + *pos.Y2) / 2
				row.CenterY = &centerY
				if row.PageHeight != nil && *row.PageHeight != 0 {
					percent := centerY / *row.PageHeight * 100
					row.CenterYPercent = &percent
				}
			}
			rows = append(rows, row)
		}
	}

	return rows
}
