package textdiff

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/javajack/xlbridge"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Delimiter joins the fields of one data line.
const Delimiter = ","

// HeaderLine returns the line that opens a row-set block.
func HeaderLine(name string) string { return "===[" + name + "]===" }

// Options configures conversion.
type Options struct {
	bom    bool
	logger *slog.Logger
}

// Option configures conversion.
type Option func(*Options)

// WithBOM prefixes the output with a UTF-8 byte order mark.
func WithBOM(bom bool) Option {
	return func(o *Options) { o.bom = bom }
}

// WithLogger sets the structured logger (default: discard).
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) *Options {
	o := &Options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CellText renders a cell value in its canonical text form.
func CellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return xlbridge.FormatFloat(t)
	case float32:
		return xlbridge.FormatFloat(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case time.Time:
		return t.Format(time.RFC3339)
	case xlbridge.Value:
		return t.String()
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

// NormalizeRow converts one row to a data line. Trailing empty fields are
// dropped, interior ones kept. A row without any non-empty field yields
// ok == false.
func NormalizeRow(values []any) (line string, ok bool) {
	fields := make([]string, len(values))
	last := -1
	for i, v := range values {
		fields[i] = CellText(v)
		if fields[i] != "" {
			last = i
		}
	}
	if last < 0 {
		return "", false
	}
	return strings.Join(fields[:last+1], Delimiter), true
}

// Normalize consumes the reader and returns its lines: per row-set a header
// line, then one line per non-blank row. The first row of every row-set is
// the meta row and is skipped.
func Normalize(r RowSetReader) ([]string, error) {
	var lines []string
	for r.NextRowSet() {
		lines = append(lines, HeaderLine(r.Name()))
		meta := true
		for r.NextRow() {
			if meta {
				meta = false
				continue
			}
			if line, ok := NormalizeRow(r.Values()); ok {
				lines = append(lines, line)
			}
		}
		if err := r.Err(); err != nil {
			return nil, err
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// WriteLines writes UTF-8 lines, each terminated by "\n".
func WriteLines(w io.Writer, lines []string, opts ...Option) error {
	o := buildOptions(opts)
	var tw *transform.Writer
	if o.bom {
		tw = transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
		w = tw
	}
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		bw.WriteString(line)
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if tw != nil {
		return tw.Close()
	}
	return nil
}

// NormalizeFile opens a spreadsheet or CSV file and normalizes it.
func NormalizeFile(path string) ([]string, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	lines, err := Normalize(r)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", path, err)
	}
	return lines, nil
}

// ConvertFile normalizes the input file and writes the lines to outputPath.
func ConvertFile(inputPath, outputPath string, opts ...Option) error {
	o := buildOptions(opts)
	lines, err := NormalizeFile(inputPath)
	if err != nil {
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := WriteLines(out, lines, opts...); err != nil {
		out.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	o.logger.Info("converted", "input", inputPath, "output", outputPath, "lines", len(lines))
	return nil
}
