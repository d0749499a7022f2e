// Package project finds a project's root and its declared name, walks
// it honoring ParserConfig.ExcludeDirs, and dispatches each file to the
// registry's frontend for its extension.
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/viant/afs"
	"golang.org/x/mod/modfile"

	"github.com/viant/codegraph/graphstore"
	"github.com/viant/codegraph/parser"
	"github.com/viant/codegraph/registry"
)

// markers maps a project marker file to the project type it implies,
// in search-priority order. Adapted from
// inspector/repository/detector.go's Detector.markers/determineProjectType.
var markers = []struct {
	file string
	kind string
}{
	{"go.mod", "go"},
	{"pom.xml", "java"},
	{"build.gradle", "java"},
	{"package.json", "javascript"},
	{"Cargo.toml", "rust"},
	{"pyproject.toml", "python"},
	{"requirements.txt", "python"},
	{"composer.json", "php"},
	{"Gemfile", "ruby"},
	{".git", "git"},
}

// Meta is what Detect learns about a project: its root directory, the
// ecosystem marker that identified it, and its declared name (module
// path, package name, artifact id, ...) when one could be extracted.
type Meta struct {
	RootPath string
	Type     string
	Name     string
}

// Detect walks up from path looking for a project marker file and, if
// the marker names a project type this module recognizes, tries to
// extract that project's declared name. It falls back to path itself,
// typed "unknown", named after the directory, when no marker is found.
// Adapted from inspector/repository/detector.go's
// Detector.DetectProject/findProjectRoot/extractProjectName.
func Detect(path string) (Meta, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Meta{}, err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return Meta{}, err
	}
	dir := absPath
	if !info.IsDir() {
		dir = filepath.Dir(absPath)
	}

	for {
		for _, m := range markers {
			if _, err := os.Stat(filepath.Join(dir, m.file)); err == nil {
				return Meta{
					RootPath: dir,
					Type:     m.kind,
					Name:     extractProjectName(dir, m.kind),
				}, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return Meta{RootPath: absPath, Type: "unknown", Name: filepath.Base(absPath)}, nil
}

// Root is Detect narrowed to just the project root directory, for
// callers that only need the path.
func Root(path string) (string, error) {
	meta, err := Detect(path)
	if err != nil {
		return "", err
	}
	return meta.RootPath, nil
}

func extractProjectName(rootPath, kind string) string {
	switch kind {
	case "go":
		return extractGoModuleName(filepath.Join(rootPath, "go.mod"))
	case "javascript":
		return extractRegexName(filepath.Join(rootPath, "package.json"), `"name"\s*:\s*"([^"]+)"`, rootPath)
	case "java":
		if name := extractRegexName(filepath.Join(rootPath, "pom.xml"), `<artifactId>([^<]+)</artifactId>`, ""); name != "" {
			return name
		}
		return extractRegexName(filepath.Join(rootPath, "build.gradle"), `(?:rootProject|project)\.name\s*=\s*['"]([^'"]+)['"]`, rootPath)
	case "python":
		if name := extractRegexName(filepath.Join(rootPath, "pyproject.toml"), `(?:tool\.poetry|project)\.name\s*=\s*["']([^"']+)["']`, ""); name != "" {
			return name
		}
		return filepath.Base(rootPath)
	case "rust":
		return extractRegexName(filepath.Join(rootPath, "Cargo.toml"), `\[package\](?:.|\n)*?name\s*=\s*["']([^"']+)["']`, rootPath)
	default:
		return filepath.Base(rootPath)
	}
}

// extractGoModuleName reads go.mod through afs (so a remote-storage
// project root works the same as a local one) and parses it with
// golang.org/x/mod/modfile, falling back to a plain os.ReadFile when
// afs can't reach the path (e.g. it isn't backed by a registered
// scheme in this process).
func extractGoModuleName(goModPath string) string {
	fs := afs.New()
	if content, err := fs.DownloadWithURL(context.Background(), goModPath); err == nil && len(content) > 0 {
		if mod, err := modfile.Parse(goModPath, content, nil); err == nil && mod.Module != nil {
			return mod.Module.Mod.Path
		}
	}
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return filepath.Base(filepath.Dir(goModPath))
	}
	if mod, err := modfile.Parse(goModPath, data, nil); err == nil && mod.Module != nil {
		return mod.Module.Mod.Path
	}
	return filepath.Base(filepath.Dir(goModPath))
}

// extractRegexName is the generic fallback for config formats this
// module has no parser library for (package.json's one field, Maven/
// Gradle/Cargo's name declarations): a narrow regex match, same as
// inspector/repository/detector.go's per-format helpers, collapsed
// into one function since the pattern is identical across formats.
func extractRegexName(path, pattern, fallbackDir string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		if fallbackDir != "" {
			return filepath.Base(fallbackDir)
		}
		return ""
	}
	matches := regexp.MustCompile(pattern).FindSubmatch(data)
	if len(matches) < 2 {
		if fallbackDir != "" {
			return filepath.Base(fallbackDir)
		}
		return ""
	}
	return string(matches[1])
}

// Scan walks dir and parses every file whose extension the registry
// claims, merging results into a single ProjectInfo. Each matched
// language's files are parsed with that language's own ParserConfig
// (same cfg for all, language-specific knobs travel in cfg.Extra).
func Scan(dir string, cfg parser.ParserConfig) (parser.ProjectInfo, error) {
	excluded := make(map[string]bool, len(cfg.ExcludeDirs))
	for _, d := range cfg.ExcludeDirs {
		excluded[d] = true
	}

	byLanguage := map[string][]string{}
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && excluded[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		p, lookupErr := registry.ForPath(path, cfg)
		if lookupErr != nil {
			return nil // unrecognized extension, not an error
		}
		byLanguage[p.Language()] = append(byLanguage[p.Language()], path)
		return nil
	})
	if err != nil {
		return parser.ProjectInfo{}, &parser.IOError{Path: dir, Err: err}
	}

	store, err := graphstore.InMemory()
	if err != nil {
		return parser.ProjectInfo{}, fmt.Errorf("opening scratch graph for project scan: %w", err)
	}
	defer store.Close()

	return ScanInto(byLanguage, cfg, store)
}

// ScanInto parses a language->paths map into an existing store,
// allowing callers to reuse a persistent graph across scans.
func ScanInto(byLanguage map[string][]string, cfg parser.ParserConfig, store *graphstore.Store) (parser.ProjectInfo, error) {
	var agg parser.ProjectInfo
	start := time.Now()
	for language, paths := range byLanguage {
		p, err := registry.New(language, cfg)
		if err != nil {
			continue
		}
		proj, err := p.ParseFiles(paths, store)
		if err != nil {
			return agg, fmt.Errorf("scanning %s files: %w", language, err)
		}
		agg.Files = append(agg.Files, proj.Files...)
		agg.TotalFunctions += proj.TotalFunctions
		agg.TotalClasses += proj.TotalClasses
		agg.FailedFiles = append(agg.FailedFiles, proj.FailedFiles...)
	}
	agg.TotalParseTime = time.Since(start)
	return agg, nil
}
