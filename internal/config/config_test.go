package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := Default("/data/fo")
	original.DefaultDimension = "date"
	original.HistoryLimit = 10
	original.ConfirmActions = false

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf, "/data/fo")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.DBPath != original.DBPath {
		t.Errorf("DBPath = %q, want %q", got.DBPath, original.DBPath)
	}
	if got.DefaultDimension != "date" {
		t.Errorf("DefaultDimension = %q, want %q", got.DefaultDimension, "date")
	}
	if got.HistoryLimit != 10 {
		t.Errorf("HistoryLimit = %d, want 10", got.HistoryLimit)
	}
	if got.ConfirmActions {
		t.Error("ConfirmActions = true, want false")
	}
	if len(got.SizeBuckets) != len(original.SizeBuckets) {
		t.Fatalf("len(SizeBuckets) = %d, want %d", len(got.SizeBuckets), len(original.SizeBuckets))
	}
	if got.SizeBuckets[0].Label != "tiny" {
		t.Errorf("SizeBuckets[0].Label = %q, want %q", got.SizeBuckets[0].Label, "tiny")
	}
}

func TestManager_Read_PartialFileKeepsDefaults(t *testing.T) {
	partial := strings.NewReader(`
default_sort_dimension = "size"
use_colors = false
`)

	m := &Manager{}
	got, err := m.Read(partial, "/data/fo")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.DefaultDimension != "size" {
		t.Errorf("DefaultDimension = %q, want %q", got.DefaultDimension, "size")
	}
	if got.UseColors {
		t.Error("UseColors = true, want false")
	}
	// Values absent from the file keep their defaults.
	if got.DBPath != filepath.Join("/data/fo", "fo.sqlite") {
		t.Errorf("DBPath = %q, want default", got.DBPath)
	}
	if got.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d, want 50", got.HistoryLimit)
	}
	if len(got.Types) == 0 {
		t.Error("Types lost its defaults")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default("/data/fo")

	if cfg.DBPath != filepath.Join("/data/fo", "fo.sqlite") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.LogDir != filepath.Join("/data/fo", "log") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.DefaultDimension != "type" {
		t.Errorf("DefaultDimension = %q, want %q", cfg.DefaultDimension, "type")
	}
	if !cfg.UseColors || !cfg.ConfirmActions {
		t.Error("colors and confirmations should default on")
	}
	if cfg.SizeBuckets[len(cfg.SizeBuckets)-1].MaxBytes != 0 {
		t.Error("top size bucket should be open-ended")
	}
}

func TestReadWriteFile(t *testing.T) {
	t.Run("round-trips through a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "conf", "fo.toml")
		cfg := Default("/data/fo")
		cfg.HistoryLimit = 7

		if err := WriteToFile(path, cfg); err != nil {
			t.Fatalf("WriteToFile() error = %v", err)
		}
		got, err := ReadFromFile(path, "/data/fo")
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.HistoryLimit != 7 {
			t.Errorf("HistoryLimit = %d, want 7", got.HistoryLimit)
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		if _, err := ReadFromFile("/does/not/exist.toml", "/data/fo"); err == nil {
			t.Fatal("ReadFromFile() error = nil, want error")
		}
	})
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fo.toml")
	cfg := Default("/data/fo")

	if err := Init(path, cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := Init(path, cfg); err == nil {
		t.Fatal("Init() on existing file error = nil, want error")
	}
}

func TestConfig_GetSet(t *testing.T) {
	t.Run("get renders scalar values", func(t *testing.T) {
		cfg := Default("/data/fo")

		tests := []struct {
			key  string
			want string
		}{
			{"db_path", filepath.Join("/data/fo", "fo.sqlite")},
			{"default_sort_dimension", "type"},
			{"history_limit", "50"},
			{"use_colors", "true"},
			{"confirm_actions", "true"},
		}
		for _, tt := range tests {
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		}

		if _, err := cfg.Get("bogus"); err == nil {
			t.Error("Get(bogus) error = nil, want error")
		}
	})

	t.Run("set validates values", func(t *testing.T) {
		cfg := Default("/data/fo")

		if err := cfg.Set("default_sort_dimension", "date"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if cfg.DefaultDimension != "date" {
			t.Errorf("DefaultDimension = %q, want %q", cfg.DefaultDimension, "date")
		}

		if err := cfg.Set("default_sort_dimension", "alphabetical"); err == nil {
			t.Error("Set(invalid dimension) error = nil, want error")
		}
		if err := cfg.Set("history_limit", "-3"); err == nil {
			t.Error("Set(negative history_limit) error = nil, want error")
		}
		if err := cfg.Set("use_colors", "maybe"); err == nil {
			t.Error("Set(non-bool use_colors) error = nil, want error")
		}
		if err := cfg.Set("bogus", "x"); err == nil {
			t.Error("Set(bogus) error = nil, want error")
		}
	})
}
