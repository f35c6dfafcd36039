package export

import (
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"task_portal/internal/models"
)

func TestReports(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	designer := models.PositionGraphicDesign
	submitted := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	entries := []models.ReportEntry{
		{
			DailyReport: models.DailyReport{ID: 1, Date: time.Date(2024, 6, 1, 12, 0, 0, 0, loc), UserID: 2, Submitted: true, SubmittedAt: &submitted},
			User:        &models.UserSummary{ID: 2, Username: "alice", Position: &designer},
			Tasks: []models.Task{
				{ID: 10, TaskName: "Write copy", Plan: "5", Result: "done"},
				{ID: 11, TaskName: "Proofread"},
			},
		},
		{
			DailyReport: models.DailyReport{ID: 2, Date: time.Date(2024, 5, 31, 12, 0, 0, 0, loc), UserID: 3, Submitted: true, SubmittedAt: &submitted},
			User:        &models.UserSummary{ID: 3, Username: "bob"},
		},
	}

	buf, err := Reports(entries, loc)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}

	// GetRows drops trailing empty cells
	want := [][]string{
		Headers,
		{"2024-06-01", "alice", "graphic_design", "2024-06-01 12:30:00", "Write copy", "5", "done"},
		{"2024-06-01", "alice", "graphic_design", "2024-06-01 12:30:00", "Proofread"},
		{"2024-05-31", "bob", "", "2024-06-01 12:30:00"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %q", len(rows), len(want), rows)
	}
	for i := range want {
		if len(rows[i]) != len(want[i]) {
			t.Fatalf("row %d = %q, want %q", i+1, rows[i], want[i])
		}
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Fatalf("row %d = %q, want %q", i+1, rows[i], want[i])
			}
		}
	}
}

func TestReportsEmpty(t *testing.T) {
	buf, err := Reports(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("empty export has %d rows, want only the header", len(rows))
	}
}
