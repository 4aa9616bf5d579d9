package ticketing

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	path := filepath.Join(t.TempDir(), "attendees.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXSource_Attendees(t *testing.T) {
	path := writeXLSX(t, [][]interface{}{
		{"Order #", "First Name", "Last Name", "EMAIL", "Company", "Job Title", "Ticket Type", "Barcode #", "Order Date"},
		{"o1", "Ada", "Lovelace", "ada@example.com", "Engines", "Analyst", "General Admission", "1111", "2025-01-02"},
		{"o2", "No", "Barcode", "nb@example.com", "", "", "General Admission", "", ""},
		{"o3", "Alan", "Turing", "alan@example.com"},
	})

	src := &XLSXSource{Path: path}
	list, err := src.Attendees(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1, "rows without a barcode are skipped")

	a := list[0]
	assert.Equal(t, "1111", a.Barcode)
	assert.Equal(t, "o1", a.OrderID)
	assert.Equal(t, "Ada", a.FirstName)
	assert.Equal(t, "Lovelace", a.LastName)
	assert.Equal(t, "ada@example.com", a.Email)
	assert.Equal(t, "Engines", a.Company)
	assert.Equal(t, "Analyst", a.JobTitle)
	assert.Equal(t, "General Admission", a.TicketType)
}

func TestXLSXSource_MissingBarcodeColumn(t *testing.T) {
	path := writeXLSX(t, [][]interface{}{
		{"First Name", "Last Name"},
		{"Ada", "Lovelace"},
	})

	_, err := (&XLSXSource{Path: path}).Attendees(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Barcode #")
}

func TestXLSXSource_MissingFile(t *testing.T) {
	_, err := (&XLSXSource{Path: filepath.Join(t.TempDir(), "none.xlsx")}).Attendees(context.Background())
	assert.Error(t, err)
}
