package httpapi

import (
	"bytes"
	"fmt"

	"loadmap/internal/service"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	roomsSheet   = "Rooms"
	summarySheet = "Summary"
)

// RoomsExportHeader column titles of the Rooms sheet
var RoomsExportHeader = []string{
	"Room ID",
	"Raw Label",
	"Category",
	"Uniform PSF",
	"Code Ref",
	"Confidence",
	"Needs Review",
}

var roomsColumnWidths = []float64{38, 18, 26, 12, 60, 12, 14}

// GenerateRoomsExport renders a selection as a workbook with a Rooms sheet
// and a Summary sheet.
func GenerateRoomsExport(planID string, sel *service.Selection) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// the default sheet becomes the Rooms sheet
	if err := f.SetSheetName("Sheet1", roomsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range RoomsExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(roomsSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(roomsSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(roomsSheet, name, name, roomsColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, v := range sel.Views {
		row := []any{v.ID, v.RawLabel, "", "", "", v.Confidence, v.NeedsReview}
		if v.Category != nil {
			row[2] = *v.Category
		}
		if v.Load != nil {
			if v.Load.UniformPSF != nil {
				row[3] = *v.Load.UniformPSF
			}
			row[4] = v.Load.CodeRef
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(roomsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := f.SetPanes(roomsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	summary := [][]any{
		{"Plan", planID},
		{"Rooms", len(sel.Views)},
		{"Reviewed", sel.Reviewed},
		{"Needs Review", sel.NeedsReview},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
