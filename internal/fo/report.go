package fo

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ReportFormat selects the rendering of GenerateReport.
type ReportFormat string

const (
	ReportText ReportFormat = "text"
	ReportJSON ReportFormat = "json"
)

// CategoryStat is the per-category aggregate of a report.
type CategoryStat struct {
	Count int   `json:"count"`
	Size  int64 `json:"size"`
}

// Report aggregates file counts and sizes per type, size, and date
// category. Only categories with at least one file appear.
type Report struct {
	Directory  string                   `json:"directory"`
	TotalFiles int                      `json:"total_files"`
	TotalSize  int64                    `json:"total_size"`
	ByType     map[string]*CategoryStat `json:"by_type"`
	BySize     map[string]*CategoryStat `json:"by_size"`
	ByDate     map[string]*CategoryStat `json:"by_date"`
}

// GenerateReport scans directory and renders the aggregate statistics in
// the requested format. Text and JSON are produced from the same Report, so
// totals always agree between the two. humanSizes switches the text
// rendering to scaled units; JSON always carries raw byte counts.
func (m *FileManager) GenerateReport(directory string, recursive bool, format ReportFormat, humanSizes bool) (string, error) {
	root, err := m.walker.ResolveDir(directory)
	if err != nil {
		return "", err
	}
	if format != ReportText && format != ReportJSON {
		return "", fmt.Errorf("%w: unknown report format %q", ErrInvalidArgument, format)
	}

	files, err := m.walker.FindFiles(root, recursive)
	if err != nil {
		return "", err
	}

	report := &Report{
		Directory: root,
		ByType:    make(map[string]*CategoryStat),
		BySize:    make(map[string]*CategoryStat),
		ByDate:    make(map[string]*CategoryStat),
	}
	for _, f := range files {
		report.TotalFiles++
		report.TotalSize += f.Size
		bump(report.ByType, m.cat.TypeOf(f.Path), f.Size)
		bump(report.BySize, m.cat.SizeOf(f.Size), f.Size)
		bump(report.ByDate, m.cat.DateOf(f.ModTime), f.Size)
	}

	m.logger.Info("report complete", "files", report.TotalFiles, "bytes", report.TotalSize)

	if format == ReportJSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding report: %w", err)
		}
		return string(out), nil
	}
	return report.renderText(m.cat.SizeLabels(), humanSizes), nil
}

func bump(stats map[string]*CategoryStat, category string, size int64) {
	s, ok := stats[category]
	if !ok {
		s = &CategoryStat{}
		stats[category] = s
	}
	s.Count++
	s.Size += size
}

// renderText renders the report for humans. Type categories are ordered by
// descending file count (name breaks ties); size and date categories keep
// their canonical order.
func (r *Report) renderText(sizeOrder []string, humanSizes bool) string {
	fmtSize := func(n int64) string {
		if humanSizes {
			return humanReadableSize(n)
		}
		return fmt.Sprintf("%d B", n)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Report for %s\n", r.Directory)
	fmt.Fprintf(&b, "Total files: %d\n", r.TotalFiles)
	fmt.Fprintf(&b, "Total size: %s\n", fmtSize(r.TotalSize))

	b.WriteString("\nBy type:\n")
	for _, cat := range typeOrder(r.ByType) {
		s := r.ByType[cat]
		fmt.Fprintf(&b, "  %s: %d files, %s\n", cat, s.Count, fmtSize(s.Size))
	}

	b.WriteString("\nBy size:\n")
	for _, cat := range sizeOrder {
		if s, ok := r.BySize[cat]; ok {
			fmt.Fprintf(&b, "  %s: %d files, %s\n", cat, s.Count, fmtSize(s.Size))
		}
	}

	b.WriteString("\nBy date:\n")
	for _, cat := range DateLabels {
		if s, ok := r.ByDate[cat]; ok {
			fmt.Fprintf(&b, "  %s: %d files, %s\n", cat, s.Count, fmtSize(s.Size))
		}
	}

	return b.String()
}

func typeOrder(stats map[string]*CategoryStat) []string {
	cats := make([]string, 0, len(stats))
	for c := range stats {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if stats[cats[i]].Count != stats[cats[j]].Count {
			return stats[cats[i]].Count > stats[cats[j]].Count
		}
		return cats[i] < cats[j]
	})
	return cats
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// humanReadableSize renders a byte count with two decimals in the largest
// unit that keeps the value below 1024.
func humanReadableSize(n int64) string {
	if n == 0 {
		return "0 B"
	}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", v, sizeUnits[i])
}
