package xlbridge

import (
	"context"
	"fmt"
)

// ExportSheet reads every data row of a table sheet, rebuilds its records and
// saves them as per-record JSON files under the table's record directory.
func ExportSheet(ctx context.Context, sheet Sheet, def TableDef, inputDataDir string, opts ...Option) ([]SaveResult, error) {
	key, err := def.KeyField()
	if err != nil {
		return nil, err
	}
	raw, err := ParseRawSheetData(sheet, opts...)
	if err != nil {
		return nil, err
	}
	if raw.TableName != "" && raw.TableName != def.Name {
		return nil, fmt.Errorf("sheet %q holds table %q, expected %q", sheet.Name(), raw.TableName, def.Name)
	}
	loaded, err := LoadRecords(raw, key)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet.Name(), err)
	}
	return SaveRecords(ctx, def.RecordDir(inputDataDir), key, asRecords(loaded), opts...)
}

// ImportSheet reads the table's per-record JSON files and fills them back into
// the sheet below its header. It returns the written buffer.
func ImportSheet(sheet Sheet, def TableDef, inputDataDir string, opts ...Option) ([][]Value, error) {
	key, err := def.KeyField()
	if err != nil {
		return nil, err
	}
	raw, err := ParseRawSheetTitleOnly(sheet, opts...)
	if err != nil {
		return nil, err
	}
	loaded, err := ReadRecordFiles(def.RecordDir(inputDataDir), key)
	if err != nil {
		return nil, err
	}
	if def.Select != "" {
		opts = append([]Option{WithSelect(def.Select)}, opts...)
	}
	return FillRecords(sheet, raw, asRecords(loaded), key, opts...)
}

func asRecords(rs []*StructRecord) []Record {
	out := make([]Record, len(rs))
	for i, r := range rs {
		out[i] = r
	}
	return out
}
