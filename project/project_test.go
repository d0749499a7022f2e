package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/codegraph/graphstore"
	_ "github.com/viant/codegraph/lang/golang"
	"github.com/viant/codegraph/parser"
)

func TestDetectGoModule(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module github.com/example/widgets\n\ngo 1.23\n"), 0o644))
	sub := filepath.Join(dir, "pkg", "inner")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	meta, err := Detect(sub)
	require.NoError(t, err)
	require.Equal(t, dir, meta.RootPath)
	require.Equal(t, "go", meta.Type)
	require.Equal(t, "github.com/example/widgets", meta.Name)
}

func TestDetectFallsBackToUnknown(t *testing.T) {
	dir := t.TempDir()
	meta, err := Detect(dir)
	require.NoError(t, err)
	require.Equal(t, "unknown", meta.Type)
	require.Equal(t, filepath.Base(dir), meta.Name)
}

func TestDetectNodePackageName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name": "widgets-ui", "version": "1.0.0"}`), 0o644))

	meta, err := Detect(dir)
	require.NoError(t, err)
	require.Equal(t, "javascript", meta.Type)
	require.Equal(t, "widgets-ui", meta.Name)
}

func TestRootReturnsJustPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("[package]\nname = \"widgets\"\nversion = \"0.1.0\"\n"), 0o644))

	root, err := Root(dir)
	require.NoError(t, err)
	require.Equal(t, dir, root)
}

func TestScanParsesMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	goSrc := "package widgets\n\nfunc Greet() string { return \"hi\" }\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.go"), []byte(goSrc), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vendor", "ignored.go"), []byte(goSrc), 0o644))

	cfg := parser.DefaultConfig()
	info, err := Scan(dir, cfg)
	require.NoError(t, err)
	require.Len(t, info.Files, 1)
	require.Equal(t, 1, info.TotalFunctions)
}

func TestScanIntoUsesProvidedStore(t *testing.T) {
	dir := t.TempDir()
	goSrc := "package widgets\n\nfunc Greet() string { return \"hi\" }\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.go"), []byte(goSrc), 0o644))

	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	cfg := parser.DefaultConfig()
	info, err := ScanInto(map[string][]string{"go": {filepath.Join(dir, "widget.go")}}, cfg, store)
	require.NoError(t, err)
	require.Equal(t, 1, info.TotalFunctions)
	require.True(t, store.NodeCount() > 0)
}
