package xlbridge

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind enumerates the closed set of value kinds.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindBool
	KindInt
	KindLong
	KindFloat
	KindString
	KindStruct
	KindList
)

var kindNames = [...]string{
	KindEmpty:  "empty",
	KindBool:   "bool",
	KindInt:    "int",
	KindLong:   "long",
	KindFloat:  "float",
	KindString: "string",
	KindStruct: "struct",
	KindList:   "list",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Numeric reports whether values of this kind sort by integer value.
func (k Kind) Numeric() bool { return k == KindInt || k == KindLong }

// ParseKind maps a kind name ("int", "long", "string", ...) to its Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return KindEmpty, fmt.Errorf("unknown value kind %q", s)
}

// Value is a tagged variant holding one cell or record value.
// The zero Value is empty.
type Value struct {
	kind   Kind
	b      bool
	n      int64
	f      float64
	s      string
	fields []Field
	items  []Value
}

// Field is a named member of a struct value.
type Field struct {
	Name  string
	Value Value
}

func Empty() Value { return Value{} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Int(n int32) Value { return Value{kind: KindInt, n: int64(n)} }
func Long(n int64) Value { return Value{kind: KindLong, n: n} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func List(items ...Value) Value { return Value{kind: KindList, items: items} }

// Struct builds a struct value; field order is kept.
func Struct(fields ...Field) Value { return Value{kind: KindStruct, fields: fields} }

// F is shorthand for a Field literal.
func F(name string, v Value) Field { return Field{Name: name, Value: v} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }
func (v Value) Fields() []Field { return v.fields }
func (v Value) Items() []Value { return v.items }
func (v Value) AsBool() bool { return v.b }
func (v Value) AsFloat() float64 { return v.f }

// AsInt returns the integer payload of an Int or Long value.
func (v Value) AsInt() int64 { return v.n }

// Field looks up a struct member by name.
func (v Value) Field(name string) (Value, bool) {
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Scalar reports whether the value fits in a single cell.
func (v Value) Scalar() bool { return v.kind != KindStruct && v.kind != KindList }

// String returns the canonical text form of the value.
func (v Value) String() string {
	switch v.kind {
	case KindEmpty:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt, KindLong:
		return strconv.FormatInt(v.n, 10)
	case KindFloat:
		return FormatFloat(v.f)
	case KindString:
		return v.s
	case KindStruct:
		parts := make([]string, len(v.fields))
		for i, f := range v.fields {
			parts[i] = f.Name + "=" + f.Value.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindList:
		parts := make([]string, len(v.items))
		for i, it := range v.items {
			parts[i] = it.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	panic(fmt.Sprintf("xlbridge: unhandled kind %s", v.kind))
}

// Native converts the value to plain Go types, suitable for cell writes and
// expression environments.
func (v Value) Native() any {
	switch v.kind {
	case KindEmpty:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return int(v.n)
	case KindLong:
		return v.n
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindStruct:
		m := make(map[string]any, len(v.fields))
		for _, f := range v.fields {
			m[f.Name] = f.Value.Native()
		}
		return m
	case KindList:
		out := make([]any, len(v.items))
		for i, it := range v.items {
			out[i] = it.Native()
		}
		return out
	}
	panic(fmt.Sprintf("xlbridge: unhandled kind %s", v.kind))
}

// FromNative wraps a plain Go value. Unknown types are stored as their
// fmt.Sprint text.
func FromNative(x any) Value {
	switch t := x.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		if t >= math.MinInt32 && t <= math.MaxInt32 {
			return Int(int32(t))
		}
		return Long(int64(t))
	case int32:
		return Int(t)
	case int64:
		return Long(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case string:
		return String(t)
	case []any:
		items := make([]Value, len(t))
		for i, it := range t {
			items[i] = FromNative(it)
		}
		return List(items...)
	}
	return String(fmt.Sprint(x))
}

// Equal reports deep equality of kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindEmpty:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt, KindLong:
		return v.n == o.n
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindStruct:
		if len(v.fields) != len(o.fields) {
			return false
		}
		for i := range v.fields {
			if v.fields[i].Name != o.fields[i].Name || !v.fields[i].Value.Equal(o.fields[i].Value) {
				return false
			}
		}
		return true
	case KindList:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	}
	panic(fmt.Sprintf("xlbridge: unhandled kind %s", v.kind))
}

// FormatFloat renders a float in its shortest decimal form without an exponent.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Keyable reports whether values of this kind can identify a record.
func (k Kind) Keyable() bool { return k != KindStruct && k != KindList && k != KindEmpty }
