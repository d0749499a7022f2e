package pipeline

import "strings"

// DetectionKind is the category of evidence a DetectionPattern checks for.
type DetectionKind int

const (
	DetectionInclude DetectionKind = iota
	DetectionMacro
	DetectionFunctionCall
	DetectionTypeName
)

// DetectionPattern is one weighted piece of evidence a platform module
// contributes to PlatformRegistry.Detect's confidence score.
type DetectionPattern struct {
	Kind    DetectionKind
	Pattern string
	Weight  float32
}

// DetectionResult is the platform Detect (or a forced platform)
// settled on, plus which patterns fired.
type DetectionResult struct {
	PlatformID      string
	Confidence      float32
	MatchedPatterns []string
}

// CallbackCategory classifies a field in a platform ops struct
// (file_operations, pci_driver, ...) by the lifecycle event it hooks.
type CallbackCategory string

const (
	CallbackInit      CallbackCategory = "init"
	CallbackCleanup   CallbackCategory = "cleanup"
	CallbackOpen      CallbackCategory = "open"
	CallbackClose     CallbackCategory = "close"
	CallbackRead      CallbackCategory = "read"
	CallbackWrite     CallbackCategory = "write"
	CallbackIoctl     CallbackCategory = "ioctl"
	CallbackMmap      CallbackCategory = "mmap"
	CallbackPoll      CallbackCategory = "poll"
	CallbackProbe     CallbackCategory = "probe"
	CallbackRemove    CallbackCategory = "remove"
	CallbackSuspend   CallbackCategory = "suspend"
	CallbackResume    CallbackCategory = "resume"
	CallbackInterrupt CallbackCategory = "interrupt"
	CallbackTimer     CallbackCategory = "timer"
	CallbackWorkqueue CallbackCategory = "workqueue"
	CallbackOther     CallbackCategory = "other"
)

// OpsFieldDef names one field in an ops struct and the callback
// category it represents.
type OpsFieldDef struct {
	Name     string
	Category CallbackCategory
}

// OpsStructDef is a platform callback table, e.g. struct file_operations.
type OpsStructDef struct {
	StructName string
	Fields     []OpsFieldDef
}

// HeaderStubs is a catalogue of header path -> stub type definitions,
// injected ahead of parsing so code that relies on a header tree-sitter
// never sees still has the types it needs in scope.
type HeaderStubs struct {
	headers map[string]string
}

// NewHeaderStubs constructs an empty stub catalogue.
func NewHeaderStubs() *HeaderStubs {
	return &HeaderStubs{headers: map[string]string{}}
}

// Add registers stub content for a header path.
func (h *HeaderStubs) Add(path, content string) {
	h.headers[path] = content
}

// HasStub reports whether a stub is registered for path.
func (h *HeaderStubs) HasStub(path string) bool {
	_, ok := h.headers[path]
	return ok
}

// GetForIncludes scans source for #include lines and concatenates the
// stub content for every header it has a match for.
func (h *HeaderStubs) GetForIncludes(source string) string {
	var out strings.Builder
	for _, line := range splitLines(source) {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#include") {
			continue
		}
		path, ok := extractIncludePath(trimmed)
		if !ok {
			continue
		}
		stub, ok := h.headers[path]
		if !ok {
			continue
		}
		out.WriteString("/* Stub for ")
		out.WriteString(path)
		out.WriteString(" */\n")
		out.WriteString(stub)
		out.WriteByte('\n')
	}
	return out.String()
}

func extractIncludePath(line string) (string, bool) {
	line = strings.TrimSpace(strings.TrimPrefix(line, "#include"))
	switch {
	case strings.HasPrefix(line, "<"):
		line = strings.TrimPrefix(line, "<")
		if !strings.HasSuffix(line, ">") {
			return "", false
		}
		return strings.TrimSuffix(line, ">"), true
	case strings.HasPrefix(line, "\""):
		line = strings.TrimPrefix(line, "\"")
		if !strings.HasSuffix(line, "\"") {
			return "", false
		}
		return strings.TrimSuffix(line, "\""), true
	default:
		return "", false
	}
}

// PlatformModule is the per-platform catalogue a PlatformRegistry
// consults: detection evidence, header stubs, attributes to strip from
// the transformed source, and ops-struct/call-normalization tables the
// C frontend's extractor uses to classify kernel callback functions.
type PlatformModule interface {
	ID() string
	Name() string
	DetectionPatterns() []DetectionPattern
	HeaderStubs() *HeaderStubs
	AttributesToStrip() []string
	OpsStructs() []OpsStructDef
	CallNormalizations() map[string]string
}

// PlatformRegistry holds every known PlatformModule and scores source
// against each to pick the best match.
type PlatformRegistry struct {
	platforms []PlatformModule
}

// NewPlatformRegistry constructs a registry pre-populated with the
// platform modules this module ships: the full Linux catalogue plus the
// single-pattern FreeBSD and Darwin stubs.
func NewPlatformRegistry() *PlatformRegistry {
	r := &PlatformRegistry{}
	r.Register(NewLinuxPlatform())
	r.Register(NewFreeBSDPlatform())
	r.Register(NewDarwinPlatform())
	return r
}

// Register adds a platform module to the registry.
func (r *PlatformRegistry) Register(p PlatformModule) {
	r.platforms = append(r.platforms, p)
}

// Get looks up a registered platform by ID.
func (r *PlatformRegistry) Get(id string) PlatformModule {
	for _, p := range r.platforms {
		if p.ID() == id {
			return p
		}
	}
	return nil
}

// Detect scores source against every registered platform and returns
// the best match, or a zero-confidence "generic" result if nothing
// scored above zero.
func (r *PlatformRegistry) Detect(source string) DetectionResult {
	best := DetectionResult{PlatformID: "generic", Confidence: 0}
	for _, p := range r.platforms {
		result := scorePlatform(source, p)
		if result.Confidence > best.Confidence {
			best = result
		}
	}
	return best
}

func scorePlatform(source string, p PlatformModule) DetectionResult {
	var totalWeight float32
	var matched []string
	sourceLower := strings.ToLower(source)

	for _, pattern := range p.DetectionPatterns() {
		var hit bool
		switch pattern.Kind {
		case DetectionInclude:
			hit = strings.Contains(source, "#include <"+pattern.Pattern) ||
				strings.Contains(source, "#include \""+pattern.Pattern)
		case DetectionMacro:
			hit = strings.Contains(source, pattern.Pattern)
		case DetectionFunctionCall:
			hit = strings.Contains(source, pattern.Pattern+"(")
		case DetectionTypeName:
			hit = strings.Contains(sourceLower, strings.ToLower(pattern.Pattern))
		}
		if hit {
			totalWeight += pattern.Weight
			matched = append(matched, pattern.Pattern)
		}
	}

	confidence := totalWeight / 10.0
	if confidence > 1.0 {
		confidence = 1.0
	}

	return DetectionResult{PlatformID: p.ID(), Confidence: confidence, MatchedPatterns: matched}
}
