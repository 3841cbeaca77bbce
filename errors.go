package xlbridge

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks against the typed errors below.
var (
	ErrMetaFormat             = errors.New("invalid meta row")
	ErrUnsupportedOrientation = errors.New("unsupported table orientation")
	ErrTitleFormat            = errors.New("invalid title")
	ErrKeyType                = errors.New("invalid key")
	ErrIOConflict             = errors.New("source file unavailable")
	ErrSaveBatch              = errors.New("record batch save failed")
)

// MetaFormatError reports a missing or malformed meta row token.
type MetaFormatError struct {
	Token  string // offending token, empty when the marker itself is missing
	Reason string
}

func (e *MetaFormatError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("invalid meta row: %s", e.Reason)
	}
	return fmt.Sprintf("invalid meta row token %q: %s", e.Token, e.Reason)
}

func (e *MetaFormatError) Is(target error) bool { return target == ErrMetaFormat }

// UnsupportedOrientationError is returned for column-oriented tables.
type UnsupportedOrientationError struct {
	Table string
}

func (e *UnsupportedOrientationError) Error() string {
	return fmt.Sprintf("table %q is column oriented; only row tables are supported", e.Table)
}

func (e *UnsupportedOrientationError) Is(target error) bool {
	return target == ErrUnsupportedOrientation
}

// TitleFormatError reports a header cell that could not be parsed into a title.
type TitleFormatError struct {
	Cell   CellRef
	Text   string
	Reason string
}

func (e *TitleFormatError) Error() string {
	return fmt.Sprintf("invalid title %q at %s: %s", e.Text, e.Cell, e.Reason)
}

func (e *TitleFormatError) Is(target error) bool { return target == ErrTitleFormat }

// KeyTypeError reports a record key that does not match the declared key kind,
// or a key that cannot identify a record uniquely.
type KeyTypeError struct {
	Field  string
	Kind   Kind
	Reason string
}

func (e *KeyTypeError) Error() string {
	return fmt.Sprintf("key field %q (%s): %s", e.Field, e.Kind, e.Reason)
}

func (e *KeyTypeError) Is(target error) bool { return target == ErrKeyType }

// IOConflictError reports a source file that exists but could not be opened,
// typically because another process holds it exclusively.
type IOConflictError struct {
	Path string
	Err  error
}

func (e *IOConflictError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *IOConflictError) Unwrap() error { return e.Err }

func (e *IOConflictError) Is(target error) bool { return target == ErrIOConflict }

// SaveBatchError aggregates every failed record of a SaveRecords call.
type SaveBatchError struct {
	Total    int
	Failures []SaveResult
}

func (e *SaveBatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d records failed to save", len(e.Failures), e.Total)
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "; %s: %v", f.Key, f.Err)
	}
	return b.String()
}

// Unwrap exposes the individual record errors to errors.Is/As.
func (e *SaveBatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

func (e *SaveBatchError) Is(target error) bool { return target == ErrSaveBatch }
