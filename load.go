package xlbridge

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LoadRecords rebuilds records from a raw sheet grid. A record starts on a row
// with a value in a column outside any multi_rows title; following rows that
// only fill multi_rows columns continue it. Blank rows are skipped.
func LoadRecords(raw *RawSheet, key KeyField) ([]*StructRecord, error) {
	single := make(map[int]bool)
	collectSingleRowColumns(raw.Title, single)

	var records []*StructRecord
	var group []map[int]Value
	flush := func() error {
		if len(group) == 0 {
			return nil
		}
		rec, err := readRecord(raw.Title, group, key)
		if err != nil {
			return err
		}
		records = append(records, rec)
		group = nil
		return nil
	}

	for _, cells := range raw.Cells {
		row := make(map[int]Value, len(cells))
		starts, blank := false, true
		for _, c := range cells {
			if c.RawValue.IsEmpty() {
				continue
			}
			row[c.Col] = c.RawValue
			blank = false
			if single[c.Col] {
				starts = true
			}
		}
		if blank {
			continue
		}
		if starts || len(group) == 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		group = append(group, row)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return records, nil
}

func collectSingleRowColumns(t *Title, out map[int]bool) {
	if t.SelfMultiRows {
		return
	}
	if t.IsLeaf() {
		for _, col := range t.LeafIndexes() {
			out[col] = true
		}
		return
	}
	for _, sub := range t.SubTitleList {
		collectSingleRowColumns(sub, out)
	}
}

func readRecord(root *Title, rows []map[int]Value, key KeyField) (*StructRecord, error) {
	data := readValue(root, rows)
	if data.Kind() != KindStruct {
		data = Struct()
	}
	fields := data.Fields()
	for i, f := range fields {
		if f.Name != key.Name {
			continue
		}
		kv, err := CoerceKey(f.Value, key)
		if err != nil {
			return nil, err
		}
		fields[i].Value = kv
		return &StructRecord{Data: data}, nil
	}
	if key.Name != "" {
		return nil, &KeyTypeError{Field: key.Name, Kind: key.Kind, Reason: "record has no key value"}
	}
	return &StructRecord{Data: data}, nil
}

// readValue reads the value under title t from a record's rows.
func readValue(t *Title, rows []map[int]Value) Value {
	if t.SelfMultiRows {
		var items []Value
		for _, row := range rows {
			if v := readValue(singleRowOf(t), []map[int]Value{row}); !v.IsEmpty() {
				items = append(items, v)
			}
		}
		if len(items) == 0 {
			return Empty()
		}
		return List(items...)
	}

	if t.IsLeaf() && t.FromIndex < t.ToIndex {
		return readSpread(t, rows[0])
	}
	if t.IsLeaf() {
		v := normalizeNumber(rows[0][t.FromIndex])
		if t.Sep != "" && v.Kind() == KindString {
			parts := strings.Split(v.String(), t.Sep)
			items := make([]Value, len(parts))
			for i, p := range parts {
				items[i] = parseScalar(strings.TrimSpace(p))
			}
			return List(items...)
		}
		return v
	}

	var fields []Field
	for _, sub := range t.SubTitleList {
		if v := readValue(sub, rows); !v.IsEmpty() {
			fields = append(fields, F(sub.Name, v))
		}
	}
	if len(fields) == 0 {
		return Empty()
	}
	return Struct(fields...)
}

// readSpread reads a merged multi-column leaf as a list, left to right.
// Trailing blank columns are dropped, interior ones kept as empty items.
func readSpread(t *Title, row map[int]Value) Value {
	var items []Value
	last := -1
	for _, col := range t.LeafIndexes() {
		v := normalizeNumber(row[col])
		items = append(items, v)
		if !v.IsEmpty() {
			last = len(items) - 1
		}
	}
	if last < 0 {
		return Empty()
	}
	return List(items[:last+1]...)
}

// singleRowOf returns a copy of t that reads one row only.
func singleRowOf(t *Title) *Title {
	c := *t
	c.SelfMultiRows = false
	return &c
}

// normalizeNumber turns integral floats into Long values.
func normalizeNumber(v Value) Value {
	if v.Kind() != KindFloat {
		return v
	}
	f := v.AsFloat()
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return Long(int64(f))
	}
	return v
}

func parseScalar(s string) Value {
	if s == "" {
		return Empty()
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Long(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	return String(s)
}

// CoerceKey converts a loaded key value to the declared key kind.
func CoerceKey(v Value, key KeyField) (Value, error) {
	v = normalizeNumber(v)
	if v.Kind() == KindString && key.Kind.Numeric() {
		v = parseScalar(strings.TrimSpace(v.String()))
	}
	switch key.Kind {
	case KindInt:
		if v.Kind().Numeric() && v.AsInt() >= math.MinInt32 && v.AsInt() <= math.MaxInt32 {
			return Int(int32(v.AsInt())), nil
		}
	case KindLong:
		if v.Kind().Numeric() {
			return Long(v.AsInt()), nil
		}
	case KindString:
		if v.Scalar() && !v.IsEmpty() {
			return String(v.String()), nil
		}
	default:
		if v.Scalar() && !v.IsEmpty() {
			return v, nil
		}
	}
	return Value{}, &KeyTypeError{Field: key.Name, Kind: key.Kind,
		Reason: fmt.Sprintf("value %q (%s) does not fit the key kind", v.String(), v.Kind())}
}
