package textdiff

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rowSet struct {
	name string
	rows [][]any
}

// sliceReader serves row-sets from memory.
type sliceReader struct {
	sets []rowSet
	set  int
	row  int
	err  error
}

func newSliceReader(sets ...rowSet) *sliceReader { return &sliceReader{sets: sets, set: -1} }

func (s *sliceReader) NextRowSet() bool {
	s.set++
	s.row = -1
	return s.set < len(s.sets)
}

func (s *sliceReader) Name() string { return s.sets[s.set].name }

func (s *sliceReader) NextRow() bool {
	s.row++
	return s.row < len(s.sets[s.set].rows)
}

func (s *sliceReader) Values() []any { return s.sets[s.set].rows[s.row] }
func (s *sliceReader) Err() error { return s.err }
func (s *sliceReader) Close() error { return nil }

func TestNormalize_ConfigSheet(t *testing.T) {
	lines, err := Normalize(newSliceReader(rowSet{
		name: "Config",
		rows: [][]any{{"meta"}, {"1", "A", ""}, {"", ""}},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"===[Config]===", "1,A"}, lines)
}

func TestNormalize_MultipleSets(t *testing.T) {
	lines, err := Normalize(newSliceReader(
		rowSet{name: "Item", rows: [][]any{
			{"##", "table=item"},
			{"id", "name"},
			{nil, nil},
			{float64(1), "sword", nil, true},
			{nil, "x", nil, "y", nil},
		}},
		rowSet{name: "Empty"},
		rowSet{name: "OnlyMeta", rows: [][]any{{"##"}}},
		rowSet{name: "Num", rows: [][]any{{"##"}, {2.5, 1e21, -0.5}}},
	))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"===[Item]===",
		"id,name",
		"1,sword,,true",
		",x,,y",
		"===[Empty]===",
		"===[OnlyMeta]===",
		"===[Num]===",
		"2.5,1000000000000000000000,-0.5",
	}, lines)
}

func TestNormalize_Error(t *testing.T) {
	r := newSliceReader(rowSet{name: "A", rows: [][]any{{"##"}}})
	r.err = errors.New("boom")
	_, err := Normalize(r)
	assert.EqualError(t, err, "boom")
}

func TestNormalizeRow(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   string
		ok     bool
	}{
		{"empty", nil, "", false},
		{"all blank", []any{nil, "", nil}, "", false},
		{"trailing trimmed", []any{"a", "", nil}, "a", true},
		{"leading kept", []any{nil, "b"}, ",b", true},
		{"integral float", []any{float64(3)}, "3", true},
		{"bool", []any{false, true}, "false,true", true},
		{"ints", []any{7, int64(-8), int32(9)}, "7,-8,9", true},
		{"whitespace is content", []any{" "}, " ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeRow(tt.values)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLines(&buf, []string{"===[A]===", "1,é"}))
	assert.Equal(t, "===[A]===\n1,é\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteLines(&buf, []string{"x"}, WithBOM(true)))
	assert.Equal(t, "\xEF\xBB\xBFx\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteLines(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestConvertFile_CSV(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "config.csv")
	out := filepath.Join(dir, "config.txt")
	require.NoError(t, os.WriteFile(in, []byte("\xEF\xBB\xBFmeta\n1,A,\n,\n\"q,1\",2\n"), 0o644))

	require.NoError(t, ConvertFile(in, out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "===[]===\n1,A\nq,1,2\n", string(data))

	require.NoError(t, ConvertFile(in, out, WithBOM(true)))
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\xEF\xBB\xBF===[]===")))
}

func TestConvertFile_Errors(t *testing.T) {
	dir := t.TempDir()
	err := ConvertFile(filepath.Join(dir, "missing.xlsx"), filepath.Join(dir, "out.txt"))
	assert.Error(t, err)

	err = ConvertFile(filepath.Join(dir, "legacy.xls"), filepath.Join(dir, "out.txt"))
	assert.ErrorContains(t, err, ".xls")
	assert.NoFileExists(t, filepath.Join(dir, "out.txt"))
}
