package fo_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"fo-go/internal/fo"
	"fo-go/internal/testutil"
)

// reportFixture lays out a directory with known types, sizes, and mtimes
// relative to the fixed clock (2024-06-15).
func reportFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	notes := testutil.WriteFile(t, dir, "notes.txt", "hello world")
	testutil.SetModTime(t, notes, time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC))

	todo := testutil.WriteFile(t, dir, "todo.md", "x")
	testutil.SetModTime(t, todo, time.Date(2024, 6, 15, 7, 0, 0, 0, time.UTC))

	report := testutil.WriteFile(t, dir, "report.pdf", "12345678901234567890")
	testutil.SetModTime(t, report, time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))

	photo := testutil.WriteFile(t, dir, "photo.jpg", "fake jpeg d")
	testutil.SetModTime(t, photo, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))

	return dir
}

func TestFileManager_GenerateReport(t *testing.T) {
	t.Run("text rendering matches the golden file", func(t *testing.T) {
		dir := reportFixture(t)
		m, _ := newTestManager(t, testutil.FixedClock())

		out, err := m.GenerateReport(dir, false, fo.ReportText, false)
		if err != nil {
			t.Fatalf("GenerateReport() error = %v", err)
		}

		normalized := strings.ReplaceAll(out, dir, "<root>")
		g := goldie.New(t)
		g.Assert(t, "report_text", []byte(normalized))
	})

	t.Run("json totals agree with text totals", func(t *testing.T) {
		dir := reportFixture(t)
		m, _ := newTestManager(t, testutil.FixedClock())

		out, err := m.GenerateReport(dir, false, fo.ReportJSON, false)
		if err != nil {
			t.Fatalf("GenerateReport() error = %v", err)
		}

		var report fo.Report
		if err := json.Unmarshal([]byte(out), &report); err != nil {
			t.Fatalf("unmarshaling report: %v", err)
		}
		if report.TotalFiles != 4 {
			t.Errorf("TotalFiles = %d, want 4", report.TotalFiles)
		}
		if report.TotalSize != 43 {
			t.Errorf("TotalSize = %d, want 43", report.TotalSize)
		}
		if s := report.ByType["text"]; s == nil || s.Count != 2 || s.Size != 12 {
			t.Errorf("ByType[text] = %+v, want count 2 size 12", s)
		}
		if s := report.ByDate["today"]; s == nil || s.Count != 2 {
			t.Errorf("ByDate[today] = %+v, want count 2", s)
		}
		if s := report.BySize["tiny"]; s == nil || s.Count != 4 || s.Size != 43 {
			t.Errorf("BySize[tiny] = %+v, want count 4 size 43", s)
		}
	})

	t.Run("human sizes scale to the largest unit", func(t *testing.T) {
		dir := t.TempDir()
		big := testutil.WriteFile(t, dir, "big.bin", strings.Repeat("a", 2048))
		testutil.SetModTime(t, big, time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC))

		m, _ := newTestManager(t, testutil.FixedClock())
		out, err := m.GenerateReport(dir, false, fo.ReportText, true)
		if err != nil {
			t.Fatalf("GenerateReport() error = %v", err)
		}
		if !strings.Contains(out, "Total size: 2.00 KB") {
			t.Errorf("output missing scaled size:\n%s", out)
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		m, _ := newTestManager(t, testutil.FixedClock())
		_, err := m.GenerateReport(t.TempDir(), false, fo.ReportFormat("yaml"), false)
		if !errors.Is(err, fo.ErrInvalidArgument) {
			t.Errorf("GenerateReport() error = %v, want ErrInvalidArgument", err)
		}
	})
}
