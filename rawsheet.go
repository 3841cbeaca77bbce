package xlbridge

import (
	"fmt"
	"strings"
)

// Cell is one raw grid value. Row is the 0-based offset within the loaded
// row block, Col the absolute column.
type Cell struct {
	Row      int
	Col      int
	RawValue Value
}

// RawSheet holds a parsed title tree and the raw data grid of one table.
type RawSheet struct {
	Title         *Title
	TitleRowCount int
	TableName     string
	Meta          Meta
	Cells         [][]Cell
}

// DataStartRow is the first sheet row below the meta row and header block.
func (rs *RawSheet) DataStartRow() int { return rs.TitleRowCount + 1 }

// BuildTitles builds the header tree of a sheet. The header depth is the
// vertical merge span of the first cell below the meta row (1 when unmerged).
// It returns the initialized root and the header depth.
func BuildTitles(sheet Sheet, opts ...Option) (*Title, int, error) {
	o := buildOptions(opts)

	depth := 1
	if rows, _, merged := sheet.MergeSpan(1, 0); merged {
		depth = rows
	}

	root := NewRootTitle(sheet.UsedColumns())
	if root.ToIndex < 0 {
		return nil, 0, &TitleFormatError{Cell: NewCellRef(sheet.Name(), 1, 0), Reason: "sheet has no columns"}
	}

	type pending struct {
		title *Title
		row   int
	}
	queue := []pending{{title: root, row: 1}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if err := parseSubTitles(sheet, p.title, p.row, o); err != nil {
			return nil, 0, err
		}
		if p.row < depth {
			for _, sub := range p.title.SubTitleList {
				queue = append(queue, pending{title: sub, row: p.row + 1})
			}
		}
	}

	if root.IsLeaf() {
		return nil, 0, &TitleFormatError{Cell: NewCellRef(sheet.Name(), 1, 0), Reason: "header row has no titles"}
	}
	root.Init()
	if err := root.Validate(); err != nil {
		return nil, 0, &TitleFormatError{Cell: NewCellRef(sheet.Name(), 1, 0), Text: root.Name, Reason: err.Error()}
	}
	o.logger.Debug("parsed title tree", "sheet", sheet.Name(), "depth", depth,
		"leaves", len(root.LeafIndexes()), "to", root.ToIndex)
	return root, depth, nil
}

// parseSubTitles reads one header row across the title's columns and
// appends a child for every non-blank cell. A merged cell consumes the
// columns it spans.
func parseSubTitles(sheet Sheet, t *Title, row int, o *Options) error {
	for i := t.FromIndex; i <= t.ToIndex; i++ {
		text, err := sheet.CellText(row, i)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		ref := NewCellRef(sheet.Name(), row, i)
		name, tags, err := ParseTitleText(text, o.tagDelim, o.tagSep)
		if err != nil {
			return &TitleFormatError{Cell: ref, Text: text, Reason: err.Error()}
		}
		sub := &Title{Name: name, FromIndex: i, ToIndex: i, Tags: tags}
		if _, cols, merged := sheet.MergeSpan(row, i); merged {
			sub.ToIndex = i + cols - 1
		}
		if err := t.AddSubTitle(sub); err != nil {
			return &TitleFormatError{Cell: ref, Text: text, Reason: err.Error()}
		}
		i = sub.ToIndex
	}
	return nil
}

// ExtractCells copies the raw values of rows [fromRow, toRow] at the root's
// leaf columns. An empty row range yields no cells.
func ExtractCells(sheet Sheet, root *Title, fromRow, toRow int) ([][]Cell, error) {
	cells := [][]Cell{}
	if toRow < fromRow {
		return cells, nil
	}
	grid, err := sheet.ReadRange(fromRow, toRow, root.FromIndex, root.ToIndex)
	if err != nil {
		return nil, fmt.Errorf("read data rows %d-%d: %w", fromRow+1, toRow+1, err)
	}
	for r, values := range grid {
		row := make([]Cell, 0, len(root.LeafIndexes()))
		for _, col := range root.LeafIndexes() {
			row = append(row, Cell{Row: r, Col: col, RawValue: values[col-root.FromIndex]})
		}
		cells = append(cells, row)
	}
	return cells, nil
}

// ParseRawSheet parses meta row and titles, then extracts sheet rows
// [fromRow, toRow] (0-based, inclusive).
func ParseRawSheet(sheet Sheet, fromRow, toRow int, opts ...Option) (*RawSheet, error) {
	rs, err := ParseRawSheetTitleOnly(sheet, opts...)
	if err != nil {
		return nil, err
	}
	if rs.Cells, err = ExtractCells(sheet, rs.Title, fromRow, toRow); err != nil {
		return nil, err
	}
	buildOptions(opts).logger.Debug("extracted data rows", "sheet", sheet.Name(), "rows", len(rs.Cells))
	return rs, nil
}

// ParseRawSheetData parses the sheet and extracts every used row below the
// header block.
func ParseRawSheetData(sheet Sheet, opts ...Option) (*RawSheet, error) {
	rs, err := ParseRawSheetTitleOnly(sheet, opts...)
	if err != nil {
		return nil, err
	}
	if rs.Cells, err = ExtractCells(sheet, rs.Title, rs.DataStartRow(), sheet.UsedRows()-1); err != nil {
		return nil, err
	}
	return rs, nil
}

// ParseRawSheetTitleOnly parses meta row and titles; Cells is empty.
func ParseRawSheetTitleOnly(sheet Sheet, opts ...Option) (*RawSheet, error) {
	meta, err := ReadMeta(sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet.Name(), err)
	}
	title, depth, err := BuildTitles(sheet, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet.Name(), err)
	}
	return &RawSheet{
		Title:         title,
		TitleRowCount: depth,
		TableName:     meta.TableName,
		Meta:          meta,
		Cells:         [][]Cell{},
	}, nil
}
