// Package export renders report listings as spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"task_portal/internal/models"
)

const (
	SheetName   = "Reports"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var Headers = []string{"Date", "Username", "Position", "Submitted At", "Task", "Plan", "Result"}

// Reports writes one row per task of each entry, in the given order. An
// entry without tasks still gets a row with the task columns empty.
// Times are shown in loc.
func Reports(entries []models.ReportEntry, loc *time.Location) (*bytes.Buffer, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err == nil {
		_ = f.SetRowStyle(SheetName, 1, 1, headerStyle)
	}

	row := 2
	for _, e := range entries {
		lead := []any{
			e.Date.In(loc).Format("2006-01-02"),
			username(e),
			position(e),
			submittedAt(e, loc),
		}

		if len(e.Tasks) == 0 {
			if err := writeRow(f, row, append(lead, "", "", "")); err != nil {
				return nil, err
			}
			row++
			continue
		}
		for _, t := range e.Tasks {
			values := append(append([]any{}, lead...), t.TaskName, t.Plan, t.Result)
			if err := writeRow(f, row, values); err != nil {
				return nil, err
			}
			row++
		}
	}

	_ = f.SetColWidth(SheetName, "A", "D", 18)
	_ = f.SetColWidth(SheetName, "E", "G", 30)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return &buf, nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func username(e models.ReportEntry) string {
	if e.User == nil {
		return ""
	}
	return e.User.Username
}

func position(e models.ReportEntry) string {
	if e.User == nil || e.User.Position == nil {
		return ""
	}
	return string(*e.User.Position)
}

func submittedAt(e models.ReportEntry, loc *time.Location) string {
	if e.SubmittedAt == nil {
		return ""
	}
	return e.SubmittedAt.In(loc).Format("2006-01-02 15:04:05")
}
