// =============================================================================
// internal/output/table.go - Table formatting utilities
// =============================================================================
package output

import (
	"fmt"
	"io"
	"strings"
)

// Table renders rows under fixed headers with auto-sized columns.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table with the given headers.
func NewTable(headers []string) *Table {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len(header)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow appends one row, padding it to the header count if short.
func (t *Table) AddRow(row []string) {
	if len(row) < len(t.headers) {
		padded := make([]string, len(t.headers))
		copy(padded, row)
		row = padded
	}
	row = row[:len(t.headers)]
	for i, cell := range row {
		if len(cell) > t.widths[i] {
			t.widths[i] = len(cell)
		}
	}
	t.rows = append(t.rows, row)
}

// Render writes the table.
func (t *Table) Render(w io.Writer) error {
	if len(t.headers) == 0 {
		return nil
	}
	total := 0
	for _, width := range t.widths {
		total += width + 3
	}
	total -= 3

	fmt.Fprintf(w, "┌%s┐\n", strings.Repeat("─", total))
	t.renderRow(w, t.headers)
	fmt.Fprintf(w, "├%s┤\n", strings.Repeat("─", total))
	for _, row := range t.rows {
		t.renderRow(w, row)
	}
	fmt.Fprintf(w, "└%s┘\n", strings.Repeat("─", total))
	return nil
}

func (t *Table) renderRow(w io.Writer, cells []string) {
	fmt.Fprint(w, "│")
	for i, cell := range cells {
		fmt.Fprintf(w, " %-*s ", t.widths[i], cell)
		if i < len(cells)-1 {
			fmt.Fprint(w, "│")
		}
	}
	fmt.Fprint(w, "│\n")
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
