package xlbridge

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRecordJSON(t *testing.T) {
	data, err := EncodeRecordJSON(NewRecord(
		F("id", Int(2)),
		F("name", String("<shield & co>")),
		F("pos", Struct(F("y", Long(3)), F("x", Float(0.25)))),
		F("tags", List()),
		F("note", Empty()),
		F("rare", Bool(true)),
	))
	require.NoError(t, err)
	assert.Equal(t, `{
  "id": 2,
  "name": "<shield & co>",
  "pos": {
    "y": 3,
    "x": 0.25
  },
  "tags": [],
  "note": null,
  "rare": true
}
`, string(data))
}

func TestEncodeRecordJSON_RejectsNaN(t *testing.T) {
	_, err := EncodeRecordJSON(NewRecord(F("x", Float(math.NaN()))))
	assert.Error(t, err)
}

func TestDecodeRecordJSON(t *testing.T) {
	data, err := EncodeRecordJSON(sword())
	require.NoError(t, err)

	rec, err := DecodeRecordJSON(data, itemKey)
	require.NoError(t, err)
	assert.True(t, sword().Data.Equal(rec.Data), "got %s", rec.Data)

	_, err = DecodeRecordJSON([]byte(`{"name":"x"}`), itemKey)
	assert.ErrorIs(t, err, ErrKeyType)

	_, err = DecodeRecordJSON([]byte(`[1,2]`), itemKey)
	assert.Error(t, err)

	_, err = DecodeRecordJSON([]byte(`{"id":1} {}`), itemKey)
	assert.Error(t, err)
}

func TestDecodeValueJSON(t *testing.T) {
	v, err := DecodeValueJSON([]byte(`{"b":1,"a":[1.5,"x",null,false],"c":{}}`))
	require.NoError(t, err)
	want := Struct(
		F("b", Long(1)),
		F("a", List(Float(1.5), String("x"), Empty(), Bool(false))),
		F("c", Struct()),
	)
	assert.True(t, want.Equal(v), "got %s", v)
}

func TestReadRecordFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("2.json", `{"id": 2, "name": "shield"}`)
	write("10.json", `{"id": 10, "name": "bow"}`)
	write("notes.txt", `ignored`)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	records, err := ReadRecordFiles(dir, itemKey)
	require.NoError(t, err)
	require.Len(t, records, 2)
	id, _ := records[0].Field("id")
	assert.Equal(t, Int(10), id, "files are read in name order")

	write("bad.json", `{"id": "x"}`)
	_, err = ReadRecordFiles(dir, itemKey)
	assert.ErrorIs(t, err, ErrKeyType)

	_, err = ReadRecordFiles(filepath.Join(dir, "missing"), itemKey)
	assert.Error(t, err)
}
