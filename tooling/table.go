package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

type TableColumn struct {
	Header    string
	Width     int
	Alignment Alignment
}

// Table prints fixed-width rows framed with box-drawing characters.
type Table struct {
	out     io.Writer
	title   string
	columns []TableColumn
}

func NewTable(out io.Writer, title string) *Table {
	return &Table{out: out, title: title}
}

func (t *Table) AddColumn(header string, width int, alignment Alignment) *Table {
	t.columns = append(t.columns, TableColumn{Header: header, Width: width, Alignment: alignment})
	return t
}

func (t *Table) border(left, mid, right string) {
	fmt.Fprint(t.out, left)
	for i, col := range t.columns {
		if i > 0 {
			fmt.Fprint(t.out, mid)
		}
		fmt.Fprint(t.out, strings.Repeat("─", col.Width))
	}
	fmt.Fprintln(t.out, right)
}

func (t *Table) PrintHeader() {
	if t.title != "" {
		fmt.Fprintf(t.out, "%s:\n", t.title)
	}
	t.border("┌", "┬", "┐")
	cells := make([]string, len(t.columns))
	for i, col := range t.columns {
		cells[i] = pad(col.Header, col.Width-1, AlignLeft)
	}
	t.line(cells)
	t.border("├", "┼", "┤")
}

func (t *Table) PrintRow(data ...interface{}) {
	if len(data) != len(t.columns) {
		return
	}
	cells := make([]string, len(t.columns))
	for i, col := range t.columns {
		value := fmt.Sprintf("%v", data[i])
		cells[i] = pad(truncate(value, col.Width-1), col.Width-1, col.Alignment)
	}
	t.line(cells)
}

func (t *Table) PrintEmptyRow(message string) {
	total := len(t.columns) - 1
	for _, col := range t.columns {
		total += col.Width
	}
	fmt.Fprintf(t.out, "│%s│\n", pad(truncate(message, total), total, AlignCenter))
}

func (t *Table) PrintFooter() {
	t.border("└", "┴", "┘")
}

func (t *Table) line(cells []string) {
	fmt.Fprint(t.out, "│")
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(t.out, "│")
		}
		fmt.Fprint(t.out, " "+c)
	}
	fmt.Fprintln(t.out, "│")
}

func pad(s string, width int, alignment Alignment) string {
	gap := width - utf8.RuneCountInString(s)
	if gap <= 0 {
		return s
	}
	switch alignment {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen || maxLen < 4 {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}
