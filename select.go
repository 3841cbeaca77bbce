package xlbridge

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// ExprRecord is implemented by records that can be filtered with WithSelect.
type ExprRecord interface {
	ExprEnv() map[string]any
}

// selectRecords keeps the records for which the expression evaluates to true.
func selectRecords(records []Record, expression string) ([]Record, error) {
	if expression == "" {
		return records, nil
	}
	program, err := expr.Compile(expression, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile select %q: %w", expression, err)
	}

	kept := make([]Record, 0, len(records))
	for i, r := range records {
		er, ok := r.(ExprRecord)
		if !ok {
			return nil, fmt.Errorf("select %q: record %d (%T) exposes no fields", expression, i, r)
		}
		out, err := expr.Run(program, er.ExprEnv())
		if err != nil {
			return nil, fmt.Errorf("select %q on record %d: %w", expression, i, err)
		}
		if ok, _ := out.(bool); ok {
			kept = append(kept, r)
		}
	}
	return kept, nil
}
