package xlbridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// SaveStatus is the outcome of saving one record.
type SaveStatus int

const (
	SaveWritten SaveStatus = iota
	SaveUnchanged
	SaveFailed
)

func (s SaveStatus) String() string {
	switch s {
	case SaveWritten:
		return "written"
	case SaveUnchanged:
		return "unchanged"
	case SaveFailed:
		return "failed"
	}
	return fmt.Sprintf("SaveStatus(%d)", int(s))
}

// SaveResult reports what happened to one record file.
type SaveResult struct {
	Key    string
	Path   string
	Status SaveStatus
	Err    error
}

// RecordFileName returns the file name a record with the given key is saved under.
func RecordFileName(key Value) string { return key.String() + ".json" }

// SaveRecords writes each record to dir/<key>.json in parallel. A file whose
// bytes already match is left untouched. Every record is attempted; when any
// fails the returned error is a *SaveBatchError listing all failures, and the
// per-record results are returned either way.
func SaveRecords(ctx context.Context, dir string, key KeyField, records []Record, opts ...Option) ([]SaveResult, error) {
	o := buildOptions(opts)

	results := make([]SaveResult, len(records))
	seen := make(map[string]int, len(records))
	for i, r := range records {
		kv, ok := r.Field(key.Name)
		if !ok || kv.IsEmpty() || !kv.Scalar() {
			return nil, &KeyTypeError{Field: key.Name, Kind: key.Kind, Reason: fmt.Sprintf("record %d has no usable key", i)}
		}
		name := RecordFileName(kv)
		if j, dup := seen[name]; dup {
			return nil, &KeyTypeError{Field: key.Name, Kind: key.Kind,
				Reason: fmt.Sprintf("records %d and %d share key %q", j, i, kv.String())}
		}
		seen[name] = i
		results[i] = SaveResult{Key: kv.String(), Path: filepath.Join(dir, name)}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create record dir: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(o.saveConcurrency)
	for i, r := range records {
		res := &results[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				res.Status, res.Err = SaveFailed, err
				return nil
			}
			data, err := EncodeRecordJSON(r)
			if err != nil {
				res.Status, res.Err = SaveFailed, fmt.Errorf("encode: %w", err)
				return nil
			}
			written, err := writeIfChanged(res.Path, data, o.fileMode)
			switch {
			case err != nil:
				res.Status, res.Err = SaveFailed, err
			case written:
				res.Status = SaveWritten
			default:
				res.Status = SaveUnchanged
			}
			return nil
		})
	}
	g.Wait()

	var failures []SaveResult
	written := 0
	for _, res := range results {
		switch res.Status {
		case SaveFailed:
			o.logger.Warn("record save failed", "key", res.Key, "path", res.Path, "error", res.Err)
			failures = append(failures, res)
		case SaveWritten:
			written++
		}
	}
	o.logger.Info("saved records", "dir", dir, "records", len(records),
		"written", written, "failed", len(failures))
	if len(failures) > 0 {
		return results, &SaveBatchError{Total: len(records), Failures: failures}
	}
	return results, nil
}

// writeIfChanged writes data unless path already holds exactly these bytes.
func writeIfChanged(path string, data []byte, mode fs.FileMode) (bool, error) {
	old, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(old, data):
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("read existing: %w", err)
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return false, err
	}
	return true, nil
}
