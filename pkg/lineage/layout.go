package lineage

import "math"

// Grid geometry used by AutoLayout.
const (
	CellWidth  = 300
	CellHeight = 200
	OriginX    = 100
	OriginY    = 100
)

// AutoLayout returns the grid position of the node at index in a graph of
// total nodes. The grid has ceil(sqrt(total)) columns; nodes fill rows left
// to right. A non-positive total is treated as 1.
//
// For total = 9, index 4 lands at row 1, column 1: (400, 300).
func AutoLayout(index, total int) Position {
	total = max(total, 1)
	perRow := int(math.Ceil(math.Sqrt(float64(total))))
	row := index / perRow
	col := index % perRow
	return Position{
		X: float64(col*CellWidth + OriginX),
		Y: float64(row*CellHeight + OriginY),
	}
}
