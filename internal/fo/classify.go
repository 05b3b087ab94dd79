package fo

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/h2non/filetype"
)

// Sort dimensions accepted by Classify and FileManager.Sort.
const (
	DimType = "type"
	DimSize = "size"
	DimDate = "date"
)

// ValidDimension reports whether d names a known sort dimension.
func ValidDimension(d string) bool {
	switch d {
	case DimType, DimSize, DimDate:
		return true
	}
	return false
}

// CategoryOther is the fallback bucket for files no rule claims.
const CategoryOther = "other"

// DateLabels is the canonical order of date categories. Evaluation order
// matters: the calendar buckets can overlap near week and month boundaries,
// and the first match wins.
var DateLabels = []string{"today", "this_week", "this_month", "this_year", "older"}

// sniffSize is how many leading bytes are read for content detection.
const sniffSize = 8192

// SizeBucket is one size category with its exclusive upper bound.
// MaxBytes <= 0 marks the open-ended top bucket.
type SizeBucket struct {
	Label    string
	MaxBytes int64
}

// Categorizer maps a file to a semantic bucket along one dimension.
// It is pure given a fixed clock: classification is total and deterministic,
// and never returns an error.
type Categorizer struct {
	extToType map[string]string
	sizes     []SizeBucket
	clock     Clock
}

// NewCategorizer builds a Categorizer from a category→extensions table and
// ordered size buckets. Extensions are matched case-insensitively. When an
// extension appears under several categories, the lexicographically first
// category claims it, so the reverse table is deterministic.
func NewCategorizer(types map[string][]string, sizes []SizeBucket, clock Clock) *Categorizer {
	cats := make([]string, 0, len(types))
	for c := range types {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	ext := make(map[string]string)
	for _, c := range cats {
		for _, e := range types[c] {
			e = strings.ToLower(e)
			if _, ok := ext[e]; !ok {
				ext[e] = c
			}
		}
	}
	return &Categorizer{extToType: ext, sizes: sizes, clock: clock}
}

// Classify returns f's category along the given dimension. The dimension
// must have been validated by the caller; an unknown one falls back to
// CategoryOther rather than failing mid-batch.
func (c *Categorizer) Classify(f File, dimension string) string {
	switch dimension {
	case DimType:
		return c.TypeOf(f.Path)
	case DimSize:
		return c.SizeOf(f.Size)
	case DimDate:
		return c.DateOf(f.ModTime)
	}
	return CategoryOther
}

// plainTextExts is the subset of document extensions reclassified to "text".
var plainTextExts = map[string]bool{".txt": true, ".md": true, ".csv": true, ".log": true}

// TypeOf returns the semantic type for a file: extension table first, then
// content sniffing for unrecognized extensions.
func (c *Categorizer) TypeOf(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if cat, ok := c.extToType[ext]; ok {
		if cat == "documents" && plainTextExts[ext] {
			return "text"
		}
		return cat
	}
	return sniffType(path)
}

// sniffType detects a category from file content. Any read or detection
// failure degrades to CategoryOther; sniffing never aborts a batch.
func sniffType(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return CategoryOther
	}
	defer f.Close()

	head := make([]byte, sniffSize)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return CategoryOther
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return CategoryOther
	}

	mime := kind.MIME.Value
	switch {
	case strings.HasPrefix(mime, "image/"):
		return "images"
	case strings.HasPrefix(mime, "video/"):
		return "videos"
	case strings.HasPrefix(mime, "audio/"):
		return "audio"
	case strings.HasPrefix(mime, "text/"):
		return "text"
	}

	switch mime {
	case "application/pdf", "application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return "documents"
	case "application/zip", "application/x-rar-compressed", "application/vnd.rar",
		"application/x-tar", "application/gzip", "application/x-7z-compressed",
		"application/x-bzip2":
		return "archives"
	}
	return CategoryOther
}

// SizeOf returns the first bucket whose exclusive upper bound the size is
// strictly below, evaluated in configured (ascending) order. Sizes beyond
// every bound land in the open-ended bucket.
func (c *Categorizer) SizeOf(size int64) string {
	open := ""
	for _, b := range c.sizes {
		if b.MaxBytes <= 0 {
			if open == "" {
				open = b.Label
			}
			continue
		}
		if size < b.MaxBytes {
			return b.Label
		}
	}
	if open != "" {
		return open
	}
	if n := len(c.sizes); n > 0 {
		return c.sizes[n-1].Label
	}
	return CategoryOther
}

// DateOf buckets a modification time against the current calendar day.
func (c *Categorizer) DateOf(mtime time.Time) string {
	now := c.clock.Now()
	mtime = mtime.In(now.Location())

	// Anchor both calendar days in UTC: the bucket is a count of calendar
	// days, not elapsed hours, and must not shift when the local week
	// contains a daylight saving transition.
	mYear, mMonth, mDom := mtime.Date()
	nYear, nMonth, nDom := now.Date()
	mDay := time.Date(mYear, mMonth, mDom, 0, 0, 0, 0, time.UTC)
	nDay := time.Date(nYear, nMonth, nDom, 0, 0, 0, 0, time.UTC)
	days := int(nDay.Sub(mDay) / (24 * time.Hour))

	switch {
	case days == 0:
		return "today"
	case days <= 7:
		return "this_week"
	case mYear == nYear && mMonth == nMonth:
		return "this_month"
	case mYear == nYear:
		return "this_year"
	}
	return "older"
}

// SizeLabels returns the configured size category labels in ascending
// threshold order. Reports use this as the canonical display order.
func (c *Categorizer) SizeLabels() []string {
	labels := make([]string, len(c.sizes))
	for i, b := range c.sizes {
		labels[i] = b.Label
	}
	return labels
}
