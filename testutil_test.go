package xlbridge

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testSheet = "Sheet1"

// newItemTable builds a table sheet with a two-row header:
//
//	row 1: ## | table=item
//	row 2: id | name | pos (C:D) | (gap) | items#multi_rows=1
//	row 3:    |      | x  | y    |       |
//
// id, name and items are merged vertically across rows 2-3.
func newItemTable(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	set := func(cell string, v any) {
		require.NoError(t, f.SetCellValue(testSheet, cell, v))
	}
	merge := func(from, to string) {
		require.NoError(t, f.MergeCell(testSheet, from, to))
	}
	set("A1", "##")
	set("B1", "table=item")
	set("A2", "id")
	merge("A2", "A3")
	set("B2", "name")
	merge("B2", "B3")
	set("C2", "pos")
	merge("C2", "D2")
	set("C3", "x")
	set("D3", "y")
	set("F2", "items#multi_rows=1")
	merge("F2", "F3")
	return f
}

// addItemRows appends two records' worth of data below the header; the first
// record spans two rows through its multi_rows column.
func addItemRows(t *testing.T, f *excelize.File) {
	t.Helper()
	rows := map[string]any{
		"A4": 1, "B4": "sword", "C4": 1.5, "D4": 2, "F4": "gem",
		"F5": "rune",
		"A6": 2, "B6": "shield", "C6": 0, "D6": 3,
	}
	for cell, v := range rows {
		require.NoError(t, f.SetCellValue(testSheet, cell, v))
	}
}

func openTestSheet(t *testing.T, f *excelize.File) *ExcelizeSheet {
	t.Helper()
	s, err := NewExcelizeSheet(f, testSheet)
	require.NoError(t, err)
	return s
}

var itemKey = KeyField{Name: "id", Kind: KindInt}

func sword() *StructRecord {
	return NewRecord(
		F("id", Int(1)),
		F("name", String("sword")),
		F("pos", Struct(F("x", Float(1.5)), F("y", Long(2)))),
		F("items", List(String("gem"), String("rune"))),
	)
}

func shield() *StructRecord {
	return NewRecord(
		F("id", Int(2)),
		F("name", String("shield")),
		F("pos", Struct(F("x", Long(0)), F("y", Long(3)))),
	)
}
