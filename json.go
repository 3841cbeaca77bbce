package xlbridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// MarshalJSON encodes the value keeping struct field order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindEmpty:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindInt, KindLong:
		buf.WriteString(strconv.FormatInt(v.n, 10))
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return fmt.Errorf("unsupported float value %v", v.f)
		}
		buf.WriteString(FormatFloat(v.f))
	case KindString:
		return writeJSONString(buf, v.s)
	case KindStruct:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, f.Name); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := f.Value.writeJSON(buf); err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}
		}
		buf.WriteByte('}')
	case KindList:
		buf.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		panic(fmt.Sprintf("xlbridge: unhandled kind %s", v.kind))
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // Encode appends '\n'
	return nil
}

// MarshalJSON encodes the record's data.
func (r *StructRecord) MarshalJSON() ([]byte, error) { return r.Data.MarshalJSON() }

// UnmarshalJSON decodes an object into the record, keeping field order.
func (r *StructRecord) UnmarshalJSON(data []byte) error {
	v, err := DecodeValueJSON(data)
	if err != nil {
		return err
	}
	if v.Kind() != KindStruct {
		return fmt.Errorf("record JSON must be an object, got %s", v.Kind())
	}
	r.Data = v
	return nil
}

// EncodeRecordJSON renders a record the way it is stored on disk: two-space
// indentation, no HTML escaping, trailing newline.
func EncodeRecordJSON(r Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeValueJSON decodes JSON into a Value. Objects keep key order;
// integral numbers become Long, others Float.
func DecodeValueJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Empty(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return Long(n), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("number %s: %w", t, err)
		}
		return Float(f), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '{':
			var fields []Field
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				name, _ := keyTok.(string)
				v, err := decodeValue(dec)
				if err != nil {
					return Value{}, fmt.Errorf("field %q: %w", name, err)
				}
				fields = append(fields, F(name, v))
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Struct(fields...), nil
		case '[':
			items := []Value{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return List(items...), nil
		}
	}
	return Value{}, fmt.Errorf("unexpected JSON token %v", tok)
}

// DecodeRecordJSON decodes one record file and coerces its key field.
func DecodeRecordJSON(data []byte, key KeyField) (*StructRecord, error) {
	var rec StructRecord
	if err := rec.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	if key.Name == "" {
		return &rec, nil
	}
	fields := rec.Data.Fields()
	for i := range fields {
		if fields[i].Name == key.Name {
			kv, err := CoerceKey(fields[i].Value, key)
			if err != nil {
				return nil, err
			}
			fields[i].Value = kv
			return &rec, nil
		}
	}
	return nil, &KeyTypeError{Field: key.Name, Kind: key.Kind, Reason: "record has no key value"}
}

// ReadRecordFiles reads every *.json record in dir, ordered by file name.
func ReadRecordFiles(dir string, key KeyField) ([]*StructRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read record dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	records := make([]*StructRecord, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		rec, err := DecodeRecordJSON(data, key)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", name, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
