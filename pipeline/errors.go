package pipeline

import (
	"sort"
	"strings"
)

// ErrorKind classifies a tree-sitter ERROR/MISSING node recovered from a
// Tolerant or Kernel extraction, by what kernel/GCC construct most
// plausibly produced it. The classifier is a best-effort heuristic over
// the node's source text, not a precise diagnosis.
type ErrorKind string

const (
	ErrorUnknownType        ErrorKind = "unknown-type"
	ErrorDefineMacro        ErrorKind = "DEFINE_* macro"
	ErrorListHead           ErrorKind = "LIST_HEAD"
	ErrorModuleMacro        ErrorKind = "MODULE_* macro"
	ErrorAttributeSyntax    ErrorKind = "__attribute__ syntax"
	ErrorTypeof             ErrorKind = "typeof"
	ErrorContainerOf        ErrorKind = "container_of"
	ErrorLikelyUnlikely     ErrorKind = "likely/unlikely"
	ErrorAssertionMacro     ErrorKind = "assertion macro"
	ErrorOffsetofSizeof     ErrorKind = "offsetof/sizeof"
	ErrorTokenPasting       ErrorKind = "token pasting"
	ErrorPreprocessorCond   ErrorKind = "preprocessor conditional"
	ErrorOther              ErrorKind = "other"
)

// ErrorNode is one recovered ERROR or MISSING node, enough to classify
// and to report a location back to the caller.
type ErrorNode struct {
	Text string
	Row  int
	Col  int
}

// ClassifyError assigns an ErrorKind to a recovered error node's text
// using substring cues, checked in order from most to least specific so
// a node that matches several cues gets its most informative label.
func ClassifyError(text string) ErrorKind {
	switch {
	case strings.Contains(text, "DEFINE_"):
		return ErrorDefineMacro
	case strings.Contains(text, "LIST_HEAD"):
		return ErrorListHead
	case strings.Contains(text, "MODULE_"):
		return ErrorModuleMacro
	case strings.Contains(text, "__attribute__"):
		return ErrorAttributeSyntax
	case strings.Contains(text, "typeof"):
		return ErrorTypeof
	case strings.Contains(text, "container_of"):
		return ErrorContainerOf
	case strings.Contains(text, "likely") || strings.Contains(text, "unlikely"):
		return ErrorLikelyUnlikely
	case strings.Contains(text, "BUILD_BUG_ON") || strings.Contains(text, "WARN_ON") || strings.Contains(text, "BUG_ON"):
		return ErrorAssertionMacro
	case strings.Contains(text, "offsetof") || strings.Contains(text, "sizeof"):
		return ErrorOffsetofSizeof
	case strings.Contains(text, "##"):
		return ErrorTokenPasting
	case strings.Contains(text, "#if") || strings.Contains(text, "#ifdef") || strings.Contains(text, "#ifndef"):
		return ErrorPreprocessorCond
	case looksLikeUnknownType(text):
		return ErrorUnknownType
	default:
		return ErrorOther
	}
}

func looksLikeUnknownType(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}

// ErrorHistogram counts recovered error nodes by ErrorKind, in the
// shape spec.md's diagnostic utility requires: a histogram over the
// recovered error taxonomy, not a bare error count.
type ErrorHistogram struct {
	counts map[ErrorKind]int
	total  int
}

// NewErrorHistogram constructs an empty histogram.
func NewErrorHistogram() *ErrorHistogram {
	return &ErrorHistogram{counts: map[ErrorKind]int{}}
}

// Record classifies and tallies one recovered error node.
func (h *ErrorHistogram) Record(node ErrorNode) {
	h.counts[ClassifyError(node.Text)]++
	h.total++
}

// Total returns how many error nodes were recorded.
func (h *ErrorHistogram) Total() int {
	return h.total
}

// Count returns the tally for one ErrorKind.
func (h *ErrorHistogram) Count(kind ErrorKind) int {
	return h.counts[kind]
}

// Kinds returns every ErrorKind seen, sorted by descending count then
// alphabetically for stable output.
func (h *ErrorHistogram) Kinds() []ErrorKind {
	kinds := make([]ErrorKind, 0, len(h.counts))
	for k := range h.counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if h.counts[kinds[i]] != h.counts[kinds[j]] {
			return h.counts[kinds[i]] > h.counts[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})
	return kinds
}
