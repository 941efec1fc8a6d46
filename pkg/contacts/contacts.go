// Package contacts reads reminder recipients from the first sheet of an
// Excel workbook. The header row must name a "Name" and a "Phone Number"
// column; other columns are ignored.
package contacts

import (
	"context"
	"fmt"
	"strings"

	"react2give/pkg/models"

	"github.com/xuri/excelize/v2"
)

const (
	NameColumn  = "Name"
	PhoneColumn = "Phone Number"
)

type WorkbookSource struct {
	Path string
}

func NewWorkbookSource(path string) *WorkbookSource {
	return &WorkbookSource{Path: path}
}

// Load opens the workbook on every call so edits to the file are picked up
// without a restart.
func (s *WorkbookSource) Load(ctx context.Context) ([]models.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.Path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", s.Path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return parseRows(rows), nil
}

func parseRows(rows [][]string) []models.Contact {
	if len(rows) == 0 {
		return nil
	}

	nameIdx, phoneIdx := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case NameColumn:
			nameIdx = i
		case PhoneColumn:
			phoneIdx = i
		}
	}

	var out []models.Contact
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		out = append(out, models.Contact{
			Row:         i + 2,
			Name:        cell(row, nameIdx),
			PhoneNumber: cell(row, phoneIdx),
		})
	}
	return out
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
