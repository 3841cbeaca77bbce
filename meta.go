package xlbridge

import (
	"strconv"
	"strings"
)

const (
	metaMarker = "##"

	MinTitleRows     = 1
	MaxTitleRows     = 10
	DefaultTitleRows = 3
)

// Meta is the decoded first row of a table sheet.
type Meta struct {
	OrientRow bool
	TitleRows int
	TableName string
}

// ParseMeta decodes the meta row: "##" followed by key=value cells
// (row=<bool>, title_rows=<n>, table=<name>). Blank cells are ignored.
func ParseMeta(cells []string) (Meta, error) {
	meta := Meta{OrientRow: true, TitleRows: DefaultTitleRows}
	if len(cells) == 0 || strings.TrimSpace(cells[0]) != metaMarker {
		return Meta{}, &MetaFormatError{Reason: "first cell must be " + metaMarker}
	}

	for _, attr := range cells[1:] {
		if strings.TrimSpace(attr) == "" {
			continue
		}
		kv := strings.Split(attr, "=")
		if len(kv) != 2 {
			return Meta{}, &MetaFormatError{Token: attr, Reason: "expected key=value"}
		}
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		value := strings.TrimSpace(kv[1])
		switch key {
		case "row":
			orient, ok := parseOrientation(value)
			if !ok {
				return Meta{}, &MetaFormatError{Token: attr, Reason: "orientation must be a boolean"}
			}
			meta.OrientRow = orient
		case "title_rows":
			n, err := strconv.Atoi(value)
			if err != nil || n < MinTitleRows || n > MaxTitleRows {
				return Meta{}, &MetaFormatError{Token: attr, Reason: "title_rows must be an integer in [1,10]"}
			}
			meta.TitleRows = n
		case "table":
			meta.TableName = value
		default:
			return Meta{}, &MetaFormatError{Token: attr, Reason: "unknown key; valid keys are row, title_rows, table"}
		}
	}

	if !meta.OrientRow {
		return Meta{}, &UnsupportedOrientationError{Table: meta.TableName}
	}
	return meta, nil
}

func parseOrientation(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "1", "y", "yes", "row":
		return true, true
	case "false", "0", "n", "no", "column", "col":
		return false, true
	}
	return false, false
}

// ReadMeta parses the first row of the sheet.
func ReadMeta(sheet Sheet) (Meta, error) {
	n := sheet.UsedColumns()
	cells := make([]string, 0, n)
	for i := 0; i < n; i++ {
		text, err := sheet.CellText(0, i)
		if err != nil {
			return Meta{}, err
		}
		cells = append(cells, text)
	}
	return ParseMeta(cells)
}
