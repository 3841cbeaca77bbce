package xlbridge

import (
	"fmt"
	"strings"
)

// KeyField identifies the primary key of a table and its declared kind.
type KeyField struct {
	Name string
	Kind Kind
}

// Record is one structured table row as seen by the round trip.
//
// Flattening is not always reversible: a struct written to a sep column or
// across a merged multi-column header is read back by LoadRecords as a list
// of its scalar values, since the sheet keeps no field names there.
type Record interface {
	// Field returns a top-level field value.
	Field(name string) (Value, bool)
	// Flatten expands the record into one or more output rows aligned to the
	// title's columns; each row is root.ToIndex+1 wide.
	Flatten(title *Title) ([][]Value, error)
}

// StructRecord is a Record backed by a struct Value.
type StructRecord struct {
	Data Value
}

// NewRecord builds a StructRecord from ordered fields.
func NewRecord(fields ...Field) *StructRecord {
	return &StructRecord{Data: Struct(fields...)}
}

func (r *StructRecord) Field(name string) (Value, bool) { return r.Data.Field(name) }

// ExprEnv exposes the record fields to select expressions.
func (r *StructRecord) ExprEnv() map[string]any {
	env, _ := r.Data.Native().(map[string]any)
	return env
}

func (r *StructRecord) Flatten(title *Title) ([][]Value, error) {
	w := &rowWriter{width: title.ToIndex + 1}
	n, err := w.fill(title, r.Data, 0)
	if err != nil {
		return nil, err
	}
	w.grow(max(n, 1) - 1)
	return w.rows, nil
}

// rowWriter accumulates the output rows of one record.
type rowWriter struct {
	rows  [][]Value
	width int
}

func (w *rowWriter) grow(row int) {
	for len(w.rows) <= row {
		w.rows = append(w.rows, make([]Value, w.width))
	}
}

func (w *rowWriter) set(row, col int, v Value) {
	w.grow(row)
	w.rows[row][col] = v
}

// fill writes v under title t starting at row and returns the rows used.
func (w *rowWriter) fill(t *Title, v Value, row int) (int, error) {
	switch v.Kind() {
	case KindEmpty:
		return 1, nil
	case KindBool, KindInt, KindLong, KindFloat, KindString:
		if !t.IsLeaf() {
			return 0, fmt.Errorf("column %q: %s value needs a single column, title spans %d", t.Name, v.Kind(), len(t.LeafIndexes()))
		}
		w.set(row, t.FromIndex, v)
		return 1, nil
	case KindStruct:
		if t.IsLeaf() {
			switch {
			case t.Sep != "":
				w.set(row, t.FromIndex, String(joinScalars(v, t.Sep)))
				return 1, nil
			case t.FromIndex < t.ToIndex:
				return w.spread(t, v, row)
			}
			return 0, fmt.Errorf("column %q: struct value needs sub-columns or a sep tag", t.Name)
		}
		used := 1
		for _, f := range v.Fields() {
			sub, ok := t.SubTitle(f.Name)
			if !ok {
				continue
			}
			n, err := w.fill(sub, f.Value, row)
			if err != nil {
				return 0, err
			}
			used = max(used, n)
		}
		return used, nil
	case KindList:
		if t.SelfMultiRows {
			used := 0
			for _, it := range v.Items() {
				n, err := w.fill(t, it, row+used)
				if err != nil {
					return 0, err
				}
				used += n
			}
			return max(used, 1), nil
		}
		if t.IsLeaf() {
			switch {
			case t.Sep != "":
				w.set(row, t.FromIndex, String(joinScalars(v, t.Sep)))
				return 1, nil
			case t.FromIndex == t.ToIndex:
				return 0, fmt.Errorf("column %q: list value needs multi_rows, sub-columns or a sep tag", t.Name)
			}
		}
		return w.spread(t, v, row)
	}
	panic(fmt.Sprintf("xlbridge: unhandled kind %s", v.Kind()))
}

// spread writes the scalar leaves of v left to right across t's columns.
func (w *rowWriter) spread(t *Title, v Value, row int) (int, error) {
	flat := scalars(v, nil)
	leaves := t.LeafIndexes()
	if len(flat) > len(leaves) {
		return 0, fmt.Errorf("column %q: %d values exceed %d columns", t.Name, len(flat), len(leaves))
	}
	for i, s := range flat {
		w.set(row, leaves[i], s)
	}
	return 1, nil
}

// scalars appends the scalar leaves of v in field/item order.
func scalars(v Value, out []Value) []Value {
	switch v.Kind() {
	case KindStruct:
		for _, f := range v.Fields() {
			out = scalars(f.Value, out)
		}
	case KindList:
		for _, it := range v.Items() {
			out = scalars(it, out)
		}
	default:
		out = append(out, v)
	}
	return out
}

func joinScalars(v Value, sep string) string {
	flat := scalars(v, nil)
	parts := make([]string, len(flat))
	for i, s := range flat {
		parts[i] = s.String()
	}
	return strings.Join(parts, sep)
}
