package xlbridge

// Sheet abstracts the worksheet operations the title, grid and fill-back
// code needs. Rows and columns are 0-based; ranges are inclusive.
type Sheet interface {
	Name() string

	// Extent of the used area, counted from A1.
	UsedRows() int
	UsedColumns() int

	// CellText returns the displayed text of a cell. Cells covered by a merge
	// other than its top-left cell read as blank.
	CellText(row, col int) (string, error)

	// MergeSpan returns the size of the merged range containing the cell.
	MergeSpan(row, col int) (rows, cols int, merged bool)

	// Bulk access.
	ReadRange(fromRow, toRow, fromCol, toCol int) ([][]Value, error)
	WriteRange(fromRow, fromCol int, values [][]Value) error
	ClearRange(fromRow, toRow, fromCol, toCol int) error
}
