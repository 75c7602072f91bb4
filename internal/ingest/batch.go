package ingest

import (
	"fmt"
	"strings"
)

// BuildInsert renders a multi-row parameterized INSERT for rowCount rows of
// len(columns) values each, using Postgres positional placeholders. Row r,
// column c binds placeholder $(r*K + c + 1).
func BuildInsert(table string, columns []string, rowCount int) (string, error) {
	if table == "" {
		return "", fmt.Errorf("table is required")
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}
	if rowCount <= 0 {
		return "", fmt.Errorf("at least one row is required")
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES ")

	k := len(columns)
	for r := 0; r < rowCount; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for c := 0; c < k; c++ {
			if c > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", r*k+c+1)
		}
		b.WriteString(")")
	}
	return b.String(), nil
}

// FlattenRows concatenates row value slices into the flat argument list
// matching BuildInsert's placeholder order.
func FlattenRows(rows [][]any) []any {
	if len(rows) == 0 {
		return nil
	}
	flat := make([]any, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return flat
}
