package pipeline

import "strings"

// PipelineConfig selects which of the six stages run and how.
type PipelineConfig struct {
	InjectStubs         bool
	ConditionalStrategy ConditionalStrategy
	NeutralizeGCC       bool
	StripAttributes     bool
	NeutralizeMacros    bool
	ForcePlatform       string
}

// DefaultConfig runs every stage with EvaluateSimple conditionals and
// platform auto-detection.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		InjectStubs:         true,
		ConditionalStrategy: ConditionalEvaluateSimple,
		NeutralizeGCC:       true,
		StripAttributes:     true,
		NeutralizeMacros:    true,
	}
}

// MinimalConfig runs no stage; the source passes through unchanged.
func MinimalConfig() PipelineConfig {
	return PipelineConfig{ConditionalStrategy: ConditionalKeepAll}
}

// KernelConfig forces the linux platform and runs every stage, the
// configuration the C frontend uses for its Kernel extraction mode.
func KernelConfig() PipelineConfig {
	cfg := DefaultConfig()
	cfg.ForcePlatform = "linux"
	return cfg
}

// PipelineStats tallies how much work each stage did, surfaced to
// callers (and to the C frontend's own diagnostics) without requiring
// a second pass over the transformed source.
type PipelineStats struct {
	StubsInjected         int
	ConditionalsStripped  int
	GCCNeutralized        int
	AttributesStripped    int
	MacroStats            MacroStats
	OriginalLength        int
	ProcessedLength       int
}

// PipelineResult is everything Process produces: the transformed
// source ready for tree-sitter, the platform that was detected or
// forced, the GCC transformation records for position mapping, and
// stage statistics.
type PipelineResult struct {
	Source          string
	Platform        DetectionResult
	Transformations []Transformation
	Stats           PipelineStats
}

// Pipeline runs the six-stage C source transformation described in the
// spec: platform detection, header-stub injection, conditional
// evaluation, GCC-extension neutralization, attribute stripping, and
// kernel-macro neutralization.
type Pipeline struct {
	registry   *PlatformRegistry
	neutralize *GccNeutralizer
}

// NewPipeline constructs a pipeline with the default platform registry.
func NewPipeline() *Pipeline {
	return &Pipeline{
		registry:   NewPlatformRegistry(),
		neutralize: NewGccNeutralizer(),
	}
}

// Registry exposes the platform registry for direct lookups (e.g. the
// C frontend asking for a platform's ops-struct catalogue).
func (p *Pipeline) Registry() *PlatformRegistry {
	return p.registry
}

// GetStubs returns the header stub catalogue for a platform ID, or nil
// if the platform isn't registered.
func (p *Pipeline) GetStubs(platformID string) *HeaderStubs {
	platform := p.registry.Get(platformID)
	if platform == nil {
		return nil
	}
	return platform.HeaderStubs()
}

// Process runs source through every enabled stage in order.
func (p *Pipeline) Process(source string, cfg PipelineConfig) PipelineResult {
	stats := PipelineStats{OriginalLength: len(source)}

	// Stage 1: platform detection.
	var platform DetectionResult
	if cfg.ForcePlatform != "" {
		platform = DetectionResult{PlatformID: cfg.ForcePlatform, Confidence: 1.0, MatchedPatterns: []string{"forced"}}
	} else {
		platform = p.registry.Detect(source)
	}
	platformModule := p.registry.Get(platform.PlatformID)

	// Stage 2: header stub injection.
	processed := source
	if cfg.InjectStubs && platformModule != nil {
		stubs := platformModule.HeaderStubs().GetForIncludes(source)
		if stubs != "" {
			stats.StubsInjected = countTypedefLines(stubs)
			processed = stubs + "\n" + processed
		}
	}

	// Stage 3: conditional evaluation.
	var conditionalsStripped int
	processed, conditionalsStripped = EvaluateConditionals(processed, cfg.ConditionalStrategy)
	stats.ConditionalsStripped = conditionalsStripped

	// Stage 4: GCC extension neutralization.
	var transforms []Transformation
	if cfg.NeutralizeGCC {
		result := p.neutralize.Neutralize(processed)
		processed = result.Code
		transforms = result.Transformations
		stats.GCCNeutralized = len(transforms)
	}

	// Stage 5: platform-specific attribute strip.
	if cfg.StripAttributes && platformModule != nil {
		stripped, count := stripAttributes(processed, platformModule.AttributesToStrip())
		processed = stripped
		stats.AttributesStripped = count
	}

	// Stage 6: kernel macro neutralization.
	if cfg.NeutralizeMacros {
		neutralizer := NewMacroNeutralizer()
		processed = neutralizer.Neutralize(processed)
		stats.MacroStats = neutralizer.Stats()
	}

	stats.ProcessedLength = len(processed)

	return PipelineResult{
		Source:          processed,
		Platform:        platform,
		Transformations: transforms,
		Stats:           stats,
	}
}

func countTypedefLines(stubs string) int {
	count := 0
	for _, line := range splitLines(stubs) {
		if strings.Contains(line, "typedef") {
			count++
		}
	}
	return count
}

// stripAttributes removes every occurrence of each named attribute
// from source, handling both plain markers ("__init ") and
// function-like ones ("EXPORT_SYMBOL(foo)") whose parenthesized
// argument must be balanced-delimiter scanned away with it.
func stripAttributes(source string, attributes []string) (string, int) {
	result := source
	count := 0

	for _, attr := range attributes {
		before := strings.Count(result, attr)

		for _, suffix := range []string{" ", "\t", "("} {
			pattern := attr + suffix
			for strings.Contains(result, pattern) {
				if suffix == "(" {
					start := strings.Index(result, attr)
					if start < 0 {
						break
					}
					parenRel := strings.IndexByte(result[start:], '(')
					if parenRel < 0 {
						break
					}
					absParen := start + parenRel
					end, ok := findMatchingParen(result, absParen)
					if !ok {
						break
					}
					result = result[:start] + result[end:]
				} else {
					result = strings.Replace(result, pattern, "", 1)
				}
			}
		}

		after := strings.Count(result, attr)
		if before > after {
			count += before - after
		}
	}

	return result, count
}
