// Package parser defines the uniform contract every language frontend
// implements: CodeParser, its configuration, metrics, and error
// taxonomy. Frontends live under lang/*; this package only describes
// the shape they share.
package parser

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/viant/codegraph/graphstore"
)

// CodeParser is the contract every language frontend implements.
// Implementations must be safe for concurrent use: parse_files may
// serialize graph writes behind a mutex while running extraction
// concurrently.
type CodeParser interface {
	// Language returns the lowercase language identifier, e.g. "python".
	Language() string

	// FileExtensions returns the extensions this parser claims, each
	// including the leading dot, e.g. []string{".py", ".pyw"}.
	FileExtensions() []string

	// CanParse reports whether path's extension is claimed by this parser.
	CanParse(path string) bool

	// ParseFile reads path, extracts a CodeIR, and maps it into store.
	// Updates the parser's metrics; ParseSource does not.
	ParseFile(path string, store *graphstore.Store) (FileInfo, error)

	// ParseSource extracts a CodeIR from in-memory source using
	// filePath only as a logical label for graph nodes, and maps it
	// into store. Does not update metrics.
	ParseSource(source, filePath string, store *graphstore.Store) (FileInfo, error)

	// ParseFiles parses every path, sequentially or in parallel per
	// Config().Parallel, and returns aggregate project info.
	ParseFiles(paths []string, store *graphstore.Store) (ProjectInfo, error)

	// ParseDirectory discovers parseable files under dir and parses them.
	ParseDirectory(dir string, store *graphstore.Store) (ProjectInfo, error)

	// DiscoverFiles walks dir and returns paths this parser can parse,
	// honoring Config().ExcludeDirs.
	DiscoverFiles(dir string) ([]string, error)

	Config() ParserConfig
	Metrics() ParserMetrics
	ResetMetrics()
}

// DiscoverFiles is the default directory-walk shared by every frontend:
// filepath.Walk, skipping ExcludeDirs, filtering by extensions.
func DiscoverFiles(dir string, extensions []string, excludeDirs []string) ([]string, error) {
	excluded := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		excluded[d] = true
	}

	var files []string
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
		ext := filepath.Ext(path)
		for _, want := range extensions {
			if strings.EqualFold(ext, want) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, &IOError{Path: dir, Err: err}
	}
	return files, nil
}

// ParseFilesSequential is the default ParseFiles body shared by
// frontends that don't override it for parallel parsing: parses every
// path in order via parseOne and aggregates the result.
func ParseFilesSequential(paths []string, parseOne func(string) (FileInfo, error)) ProjectInfo {
	var proj ProjectInfo
	for _, path := range paths {
		start := time.Now()
		info, err := parseOne(path)
		if err != nil {
			proj.FailedFiles = append(proj.FailedFiles, FailedFile{Path: path, Message: err.Error()})
			continue
		}
		proj.TotalFunctions += len(info.Functions)
		proj.TotalClasses += len(info.Classes)
		proj.TotalParseTime += time.Since(start)
		proj.Files = append(proj.Files, info)
	}
	return proj
}
