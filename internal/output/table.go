package output

import (
	"io"
	"strings"
	"unicode/utf8"
)

const columnGap = "  "

// Table lays out rows in left-aligned columns. Widths count runes so
// addresses and labels with non-ASCII names stay aligned.
type Table struct {
	headers  []string
	rows     [][]string
	noHeader bool
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row. Short rows are padded with empty cells.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// SetNoHeader hides the header row and its underline.
func (t *Table) SetNoHeader(noHeader bool) {
	t.noHeader = noHeader
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) error {
	lines := t.rows
	showHeader := !t.noHeader && len(t.headers) > 0
	if showHeader {
		lines = append([][]string{t.headers}, t.rows...)
	}
	if len(lines) == 0 {
		return nil
	}

	widths := columnWidths(lines)
	var sb strings.Builder
	for i, cells := range lines {
		writeLine(&sb, cells, widths)
		if showHeader && i == 0 {
			rule := make([]string, len(widths))
			for c, n := range widths {
				rule[c] = strings.Repeat("-", n)
			}
			writeLine(&sb, rule, widths)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// String renders the table into a string.
func (t *Table) String() string {
	var sb strings.Builder
	_ = t.Render(&sb)
	return sb.String()
}

func columnWidths(lines [][]string) []int {
	var widths []int
	for _, cells := range lines {
		for c, cell := range cells {
			if c == len(widths) {
				widths = append(widths, 0)
			}
			widths[c] = max(widths[c], utf8.RuneCountInString(cell))
		}
	}
	return widths
}

func writeLine(sb *strings.Builder, cells []string, widths []int) {
	var line strings.Builder
	for c, n := range widths {
		if c > 0 {
			line.WriteString(columnGap)
		}
		var cell string
		if c < len(cells) {
			cell = cells[c]
		}
		line.WriteString(cell)
		line.WriteString(strings.Repeat(" ", n-utf8.RuneCountInString(cell)))
	}
	sb.WriteString(strings.TrimRight(line.String(), " "))
	sb.WriteByte('\n')
}
