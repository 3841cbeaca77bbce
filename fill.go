package xlbridge

import (
	"fmt"
	"slices"
)

// SortRecords orders records ascending by key when the key kind is int or
// long; the sort is stable. For any other kind the order is left unchanged.
func SortRecords(records []Record, key KeyField) error {
	if !key.Kind.Numeric() {
		return nil
	}
	for i, r := range records {
		v, ok := r.Field(key.Name)
		if !ok {
			return &KeyTypeError{Field: key.Name, Kind: key.Kind, Reason: fmt.Sprintf("record %d has no key", i)}
		}
		if !v.Kind().Numeric() {
			return &KeyTypeError{Field: key.Name, Kind: key.Kind,
				Reason: fmt.Sprintf("record %d key %q is %s", i, v.String(), v.Kind())}
		}
	}
	slices.SortStableFunc(records, func(a, b Record) int {
		ka, _ := a.Field(key.Name)
		kb, _ := b.Field(key.Name)
		switch {
		case ka.AsInt() < kb.AsInt():
			return -1
		case ka.AsInt() > kb.AsInt():
			return 1
		}
		return 0
	})
	return nil
}

// FlattenRecords expands records in order into one dense buffer of
// root.ToIndex+1 columns.
func FlattenRecords(root *Title, records []Record) ([][]Value, error) {
	width := root.ToIndex + 1
	var buffer [][]Value
	for i, r := range records {
		rows, err := r.Flatten(root)
		if err != nil {
			return nil, fmt.Errorf("flatten record %d: %w", i, err)
		}
		for _, row := range rows {
			if len(row) > width {
				return nil, fmt.Errorf("flatten record %d: row of %d cells exceeds %d columns", i, len(row), width)
			}
			dense := make([]Value, width)
			copy(dense, row)
			buffer = append(buffer, dense)
		}
	}
	return buffer, nil
}

// FillRecords writes records back below the header of a parsed sheet. Records
// are filtered (WithSelect), sorted by key and flattened into one buffer. The
// whole data area is cleared across every used column, then the buffer is
// written in one bulk assignment. It returns the written buffer.
func FillRecords(sheet Sheet, raw *RawSheet, records []Record, key KeyField, opts ...Option) ([][]Value, error) {
	o := buildOptions(opts)

	selected, err := selectRecords(records, o.selectExpr)
	if err != nil {
		return nil, err
	}
	sorted := slices.Clone(selected)
	if err := SortRecords(sorted, key); err != nil {
		return nil, err
	}
	buffer, err := FlattenRecords(raw.Title, sorted)
	if err != nil {
		return nil, err
	}

	start := raw.DataStartRow()
	if used := sheet.UsedRows(); used > start {
		lastCol := max(sheet.UsedColumns(), raw.Title.ToIndex+1) - 1
		if err := sheet.ClearRange(start, used-1, 0, lastCol); err != nil {
			return nil, fmt.Errorf("clear data rows: %w", err)
		}
		o.logger.Debug("cleared data rows", "sheet", sheet.Name(), "from", start+1, "to", used)
	}
	if len(buffer) > 0 {
		if err := sheet.WriteRange(start, 0, buffer); err != nil {
			return nil, fmt.Errorf("write records: %w", err)
		}
	}
	o.logger.Info("filled records", "sheet", sheet.Name(), "table", raw.TableName,
		"records", len(sorted), "rows", len(buffer))
	return buffer, nil
}
