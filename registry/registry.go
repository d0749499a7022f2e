// Package registry is the language-ID dispatch table: adding a new
// frontend is a one-line Register call in that frontend's init(), not
// a change to this package.
package registry

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/codegraph/parser"
)

// Factory constructs a fresh CodeParser for the given config. Kept
// distinct from a plain instance so ParseDirectory-style callers can
// get parser instances with their own metrics bookkeeping.
type Factory func(cfg parser.ParserConfig) parser.CodeParser

type registry struct {
	mu         sync.RWMutex
	byLanguage map[string]Factory
	byExt      map[string]string // extension -> language
}

var global = &registry{
	byLanguage: map[string]Factory{},
	byExt:      map[string]string{},
}

// Register adds a frontend factory under its language ID and claims its
// file extensions for ForPath lookups. Later registrations for the same
// extension win, matching how a user's custom frontend would override a
// built-in one.
func Register(language string, extensions []string, factory Factory) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.byLanguage[language] = factory
	for _, ext := range extensions {
		global.byExt[strings.ToLower(ext)] = language
	}
}

// Languages returns every registered language ID.
func Languages() []string {
	global.mu.RLock()
	defer global.mu.RUnlock()
	langs := make([]string, 0, len(global.byLanguage))
	for l := range global.byLanguage {
		langs = append(langs, l)
	}
	return langs
}

// New constructs the frontend for language, or an error if none is registered.
func New(language string, cfg parser.ParserConfig) (parser.CodeParser, error) {
	global.mu.RLock()
	factory, ok := global.byLanguage[language]
	global.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("registry: no frontend registered for language %q", language)
	}
	return factory(cfg), nil
}

// ForPath picks a frontend by the file extension of path.
func ForPath(path string, cfg parser.ParserConfig) (parser.CodeParser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	global.mu.RLock()
	lang, ok := global.byExt[ext]
	global.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("registry: no frontend registered for extension %q", ext)
	}
	return New(lang, cfg)
}
