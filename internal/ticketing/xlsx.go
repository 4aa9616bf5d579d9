package ticketing

import (
	"context"
	"fmt"
	"strings"

	"github.com/sqlsaturday/satops/internal/attendee"
	"github.com/xuri/excelize/v2"
)

// export column headers, matched case-insensitively
var xlsxHeaders = map[string]string{
	"barcode #":   "barcode",
	"barcode":     "barcode",
	"order #":     "order",
	"first name":  "first",
	"last name":   "last",
	"email":       "email",
	"company":     "company",
	"job title":   "title",
	"ticket type": "ticket",
}

// XLSXSource reads the attendee export spreadsheet of the ticketing platform
type XLSXSource struct {
	Path string
}

// Attendees reads the first sheet. Rows without a barcode are skipped.
func (s *XLSXSource) Attendees(ctx context.Context) ([]attendee.Attendee, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.Path, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("%s has no sheets", s.Path)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: sheet %q is empty", s.Path, sheetName)
	}

	headerMap := make(map[string]int)
	for i, h := range rows[0] {
		if field, ok := xlsxHeaders[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, dup := headerMap[field]; !dup {
				headerMap[field] = i
			}
		}
	}
	if _, ok := headerMap["barcode"]; !ok {
		return nil, fmt.Errorf("%s: no \"Barcode #\" column", s.Path)
	}

	cell := func(row []string, field string) string {
		idx, ok := headerMap[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var out []attendee.Attendee
	for _, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		barcode := cell(row, "barcode")
		if barcode == "" {
			continue
		}
		out = append(out, attendee.Attendee{
			Barcode:    barcode,
			OrderID:    cell(row, "order"),
			FirstName:  cell(row, "first"),
			LastName:   cell(row, "last"),
			Email:      cell(row, "email"),
			Company:    cell(row, "company"),
			JobTitle:   cell(row, "title"),
			TicketType: cell(row, "ticket"),
		})
	}
	return out, nil
}

var _ Source = (*XLSXSource)(nil)
