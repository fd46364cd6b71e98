package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agenthands/pyint/pkg/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.yaml", "max_depth: 50\ntrace: true\ndump_file: tokens.db\ncolor: never\nhistory_file: /tmp/h\n")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := config.Config{MaxDepth: 50, Trace: true, DumpFile: "tokens.db", Color: "never", HistoryFile: "/tmp/h"}
	if *cfg != want {
		t.Errorf("got %+v, want %+v", *cfg, want)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.Load(writeFile(t, dir, "partial.yaml", "trace: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxDepth != 1000 || cfg.Color != "auto" || !cfg.Trace {
		t.Errorf("got %+v", *cfg)
	}

	cfg, err = config.Load(writeFile(t, dir, "empty.yaml", ""))
	if err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if *cfg != *config.Default() {
		t.Errorf("empty file: got %+v", *cfg)
	}

	cfg, err = config.Load(writeFile(t, dir, "zero.yaml", "max_depth: 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxDepth != 0 {
		t.Errorf("explicit zero max_depth overridden: %d", cfg.MaxDepth)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		msg     string
	}{
		{"UnknownField", "max_depht: 3\n", "field max_depht not found"},
		{"BadType", "max_depth: deep\n", "parse"},
		{"Negative", "max_depth: -1\n", "max_depth must be >= 0"},
		{"BadColor", "color: sometimes\n", "color must be auto, always or never"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, dir, tt.name+".yaml", tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not contain %q", err, tt.msg)
			}
		})
	}

	var verr *config.ValidationError
	_, err := config.Load(writeFile(t, dir, "both.yaml", "max_depth: -2\ncolor: pink\n"))
	if !errors.As(err, &verr) || len(verr.Issues) != 2 {
		t.Errorf("expected 2 validation issues, got %v", err)
	}

	if _, err := config.Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != *config.Default() {
		t.Errorf("no file: got %+v", *cfg)
	}

	writeFile(t, dir, config.DefaultFile, "max_depth: 7\n")
	cfg, err = config.LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxDepth != 7 {
		t.Errorf("got %+v", *cfg)
	}
}
