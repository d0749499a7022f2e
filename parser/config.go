package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParserConfig controls every frontend's behavior uniformly. Language
// frontends may read additional language-specific knobs out of Extra.
type ParserConfig struct {
	MaxFileSize     int64            `yaml:"max_file_size"`
	Parallel        bool             `yaml:"parallel"`
	ParallelWorkers int              `yaml:"parallel_workers"`
	SkipPrivate     bool             `yaml:"skip_private"`
	SkipTests       bool             `yaml:"skip_tests"`
	FileExtensions  []string         `yaml:"file_extensions"`
	ExcludeDirs     []string         `yaml:"exclude_dirs"`

	// Extra carries language-specific knobs (e.g. the C pipeline's
	// ForcePlatform) that don't belong on the shared struct.
	Extra map[string]interface{} `yaml:"extra"`
}

// LoadConfig reads a ParserConfig from a YAML file, following the
// module's choice of YAML as its one structured-config format. Extra
// defaults to an empty map when the file doesn't set one, so callers can
// always index it without a nil check.
func LoadConfig(path string) (ParserConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ParserConfig{}, fmt.Errorf("reading parser config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ParserConfig{}, fmt.Errorf("parsing parser config %s: %w", path, err)
	}
	if cfg.Extra == nil {
		cfg.Extra = map[string]interface{}{}
	}
	return cfg, nil
}

// DefaultConfig returns a ParserConfig with conservative defaults: a
// 5MB file-size cap, sequential parsing, no private or test entities
// skipped, and the usual VCS/dependency/build directories excluded.
func DefaultConfig() ParserConfig {
	return ParserConfig{
		MaxFileSize: 5 * 1024 * 1024,
		ExcludeDirs: []string{".git", "node_modules", "vendor", "target", "__pycache__"},
		Extra:       map[string]interface{}{},
	}
}

// Validate checks for internally inconsistent configuration.
func (c ParserConfig) Validate() error {
	if c.MaxFileSize <= 0 {
		return &InvalidConfigError{Field: "MaxFileSize", Msg: "must be positive"}
	}
	if c.Parallel && c.ParallelWorkers < 0 {
		return &InvalidConfigError{Field: "ParallelWorkers", Msg: "must not be negative"}
	}
	return nil
}
