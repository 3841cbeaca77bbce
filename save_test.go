package xlbridge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRecords(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "item")
	records := []Record{sword(), shield()}

	results, err := SaveRecords(context.Background(), dir, itemKey, records, WithSaveConcurrency(2))
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, SaveWritten, r.Status, r.Key)
	}
	assert.Equal(t, filepath.Join(dir, "1.json"), results[0].Path)

	data, err := os.ReadFile(filepath.Join(dir, "2.json"))
	require.NoError(t, err)
	want, err := EncodeRecordJSON(shield())
	require.NoError(t, err)
	assert.Equal(t, string(want), string(data))

	results, err = SaveRecords(context.Background(), dir, itemKey, records)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, SaveUnchanged, r.Status, r.Key)
	}
}

func TestSaveRecords_AggregatesFailures(t *testing.T) {
	dir := t.TempDir()
	// A directory where the record file should go makes that one save fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "2.json"), 0o755))

	results, err := SaveRecords(context.Background(), dir, itemKey, []Record{sword(), shield()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSaveBatch)

	var batch *SaveBatchError
	require.True(t, errors.As(err, &batch))
	assert.Equal(t, 2, batch.Total)
	require.Len(t, batch.Failures, 1)
	assert.Equal(t, "2", batch.Failures[0].Key)

	require.Len(t, results, 2)
	assert.Equal(t, SaveWritten, results[0].Status, "the other record is still saved")
	assert.Equal(t, SaveFailed, results[1].Status)
	assert.FileExists(t, filepath.Join(dir, "1.json"))
}

func TestSaveRecords_KeyErrors(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	_, err := SaveRecords(context.Background(), dir, itemKey, []Record{sword(), sword()})
	assert.ErrorIs(t, err, ErrKeyType)

	_, err = SaveRecords(context.Background(), dir, itemKey, []Record{NewRecord(F("name", String("x")))})
	assert.ErrorIs(t, err, ErrKeyType)

	assert.NoDirExists(t, dir, "nothing is written when keys are invalid")
}

func TestSaveRecords_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := SaveRecords(ctx, t.TempDir(), itemKey, []Record{sword()})
	assert.ErrorIs(t, err, ErrSaveBatch)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.Equal(t, SaveFailed, results[0].Status)
}

func TestSaveStatus_String(t *testing.T) {
	assert.Equal(t, "written", SaveWritten.String())
	assert.Equal(t, "unchanged", SaveUnchanged.String())
	assert.Equal(t, "failed", SaveFailed.String())
	assert.Equal(t, "SaveStatus(9)", SaveStatus(9).String())
}
