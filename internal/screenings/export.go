package screenings

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet    = "Summary"
	candidatesSheet = "Ranked Candidates"
)

// WriteWorkbook renders the snapshot as an xlsx workbook with a summary sheet and the
// ranked candidates in rank order.
func WriteWorkbook(w io.Writer, snap Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(candidatesSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("create wrap style: %w", err)
	}

	writeSummarySheet(f, snap, headerStyle, wrapStyle)
	writeCandidatesSheet(f, snap, headerStyle, wrapStyle)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, snap Snapshot, headerStyle, wrapStyle int) {
	f.SetColWidth(summarySheet, "A", "A", 22)
	f.SetColWidth(summarySheet, "B", "B", 80)

	f.SetCellValue(summarySheet, "A1", "Screening Report")
	f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)

	withEmail := 0
	for _, id := range snap.Identities {
		if id.HasEmail() {
			withEmail++
		}
	}
	rows := [][2]any{
		{"Generated:", snap.CreatedAt.Format("2006-01-02 15:04:05 MST")},
		{"Candidates ranked:", len(snap.Entries)},
		{"Candidates with email:", withEmail},
		{"Job description:", snap.JobDescription},
	}
	for i, row := range rows {
		r := i + 3
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", r), row[0])
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", r), row[1])
	}
	last := len(rows) + 2
	f.SetCellStyle(summarySheet, fmt.Sprintf("B%d", last), fmt.Sprintf("B%d", last), wrapStyle)
}

func writeCandidatesSheet(f *excelize.File, snap Snapshot, headerStyle, wrapStyle int) {
	headers := []string{"Rank", "File", "Name", "Email", "Score", "Summary"}
	widths := []float64{8, 30, 25, 30, 10, 80}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(candidatesSheet, col+"1", h)
		f.SetColWidth(candidatesSheet, col, col, widths[i])
	}
	f.SetCellStyle(candidatesSheet, "A1", "F1", headerStyle)

	for i, entry := range snap.Entries {
		r := i + 2
		id, _ := snap.Identity(entry.FileName)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("A%d", r), i+1)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("B%d", r), entry.FileName)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("C%d", r), id.Name)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("D%d", r), id.Email)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("E%d", r), fmt.Sprintf("%.4f", entry.Score))
		f.SetCellValue(candidatesSheet, fmt.Sprintf("F%d", r), entry.Summary)
		f.SetCellStyle(candidatesSheet, fmt.Sprintf("F%d", r), fmt.Sprintf("F%d", r), wrapStyle)
	}
}
