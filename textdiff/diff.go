package textdiff

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns a unified diff of two normalized line sets; empty when equal.
func Diff(a, b []string, fromName, toName string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        withNewlines(a),
		B:        withNewlines(b),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	})
}

// DiffFiles normalizes two files and diffs the results.
func DiffFiles(fromPath, toPath string) (string, error) {
	a, err := NormalizeFile(fromPath)
	if err != nil {
		return "", err
	}
	b, err := NormalizeFile(toPath)
	if err != nil {
		return "", err
	}
	return Diff(a, b, fromPath, toPath)
}

func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + "\n"
	}
	return out
}
