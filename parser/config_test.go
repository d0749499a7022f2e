package parser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "max_file_size: 1048576\nparallel: true\nparallel_workers: 4\nskip_tests: true\nexclude_dirs:\n  - .git\n  - vendor\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxFileSize != 1048576 {
		t.Fatalf("expected max file size 1048576, got %d", cfg.MaxFileSize)
	}
	if !cfg.Parallel || cfg.ParallelWorkers != 4 {
		t.Fatalf("unexpected parallel config: %+v", cfg)
	}
	if !cfg.SkipTests {
		t.Fatal("expected skip_tests true")
	}
	if len(cfg.ExcludeDirs) != 2 {
		t.Fatalf("expected 2 exclude dirs, got %d", len(cfg.ExcludeDirs))
	}
	if cfg.Extra == nil {
		t.Fatal("expected Extra to default to an empty map")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
