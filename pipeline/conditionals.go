package pipeline

import "strings"

// ConditionalStrategy selects how preprocessor conditionals are
// handled ahead of tree-sitter parsing.
type ConditionalStrategy string

const (
	// ConditionalKeepAll leaves every directive untouched.
	ConditionalKeepAll ConditionalStrategy = "keep_all"
	// ConditionalStripAll blanks every directive line except #include.
	ConditionalStripAll ConditionalStrategy = "strip_all"
	// ConditionalEvaluateSimple evaluates only #if 0 / #if 1-style
	// conditions it can prove, keeping everything else (ifdef/ifndef,
	// unresolvable #if) as active code.
	ConditionalEvaluateSimple ConditionalStrategy = "evaluate_simple"
)

// conditionalState tracks one level of #if/#ifdef nesting.
type conditionalState int

const (
	stateActive conditionalState = iota
	stateDisabled
	stateElseActive
	stateElseDisabled
)

// EvaluateConditionals strips or keeps preprocessor conditional blocks
// according to strategy, returning the rewritten source (with line
// count preserved — every stripped line becomes an empty line) and the
// number of lines blanked, directive and code lines alike.
func EvaluateConditionals(source string, strategy ConditionalStrategy) (string, int) {
	switch strategy {
	case ConditionalStripAll:
		return stripAllPreprocessor(source)
	case ConditionalEvaluateSimple:
		return evaluateSimpleConditionals(source)
	default:
		return source, 0
	}
}

func stripAllPreprocessor(source string) (string, int) {
	var out strings.Builder
	stripped := 0
	for _, line := range splitLines(source) {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#include"):
			out.WriteString(line)
			out.WriteByte('\n')
		case strings.HasPrefix(trimmed, "#"):
			out.WriteByte('\n')
			stripped++
		default:
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}
	return out.String(), stripped
}

type directiveKind int

const (
	dirIf directiveKind = iota
	dirIfdef
	dirIfndef
	dirElif
	dirElse
	dirEndif
	dirInclude
	dirOther
)

type directive struct {
	kind      directiveKind
	condition string
}

func evaluateSimpleConditionals(source string) (string, int) {
	var out strings.Builder
	stripped := 0
	stack := []conditionalState{stateActive}

	top := func() conditionalState {
		return stack[len(stack)-1]
	}
	activeTop := func() bool {
		s := top()
		return s == stateActive || s == stateElseActive
	}

	for _, line := range splitLines(source) {
		trimmed := strings.TrimSpace(line)
		d, ok := preprocessorDirective(trimmed)
		if !ok {
			if activeTop() {
				out.WriteString(line)
			}
			out.WriteByte('\n')
			if !activeTop() {
				stripped++
			}
			continue
		}

		switch d.kind {
		case dirIf:
			var next conditionalState
			if activeTop() {
				if isFalseCondition(d.condition) {
					next = stateDisabled
				} else {
					next = stateActive
				}
			} else {
				next = stateDisabled
			}
			stack = append(stack, next)
			out.WriteByte('\n')
			stripped++

		case dirIfdef, dirIfndef:
			var next conditionalState
			if activeTop() {
				next = stateActive
			} else {
				next = stateDisabled
			}
			stack = append(stack, next)
			out.WriteString(line)
			out.WriteByte('\n')

		case dirElif:
			if len(stack) > 0 {
				switch top() {
				case stateDisabled:
					if !isFalseCondition(d.condition) {
						stack[len(stack)-1] = stateActive
					}
				case stateActive:
					stack[len(stack)-1] = stateDisabled
				}
			}
			out.WriteByte('\n')
			stripped++

		case dirElse:
			if len(stack) > 0 {
				switch top() {
				case stateActive:
					stack[len(stack)-1] = stateElseDisabled
				case stateDisabled:
					stack[len(stack)-1] = stateElseActive
				}
			}
			out.WriteByte('\n')
			stripped++

		case dirEndif:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			out.WriteByte('\n')
			stripped++

		case dirInclude:
			out.WriteString(line)
			out.WriteByte('\n')

		default:
			if activeTop() {
				out.WriteString(line)
				out.WriteByte('\n')
			} else {
				out.WriteByte('\n')
				stripped++
			}
		}
	}

	return out.String(), stripped
}

// preprocessorDirective classifies a trimmed line as a preprocessor
// directive. "Other" covers #define/#undef/#pragma/#error/#warning and
// anything unrecognized; they're passed through the active/disabled
// check the same way regular code is, since they carry no nesting
// state of their own.
func preprocessorDirective(trimmed string) (directive, bool) {
	if !strings.HasPrefix(trimmed, "#") {
		return directive{}, false
	}
	rest := strings.TrimLeft(trimmed[1:], " \t")

	switch {
	case rest == "if" || strings.HasPrefix(rest, "if "):
		cond := strings.TrimSpace(strings.TrimPrefix(rest, "if"))
		return directive{kind: dirIf, condition: cond}, true
	case strings.HasPrefix(rest, "ifdef "), strings.HasPrefix(rest, "ifdef\t"):
		return directive{kind: dirIfdef}, true
	case strings.HasPrefix(rest, "ifndef "), strings.HasPrefix(rest, "ifndef\t"):
		return directive{kind: dirIfndef}, true
	case strings.HasPrefix(rest, "elif "):
		cond := strings.TrimSpace(strings.TrimPrefix(rest, "elif"))
		return directive{kind: dirElif, condition: cond}, true
	case rest == "else" || strings.HasPrefix(rest, "else "), strings.HasPrefix(rest, "else\t"):
		return directive{kind: dirElse}, true
	case rest == "endif" || strings.HasPrefix(rest, "endif "), strings.HasPrefix(rest, "endif\t"), strings.HasPrefix(rest, "endif/"):
		return directive{kind: dirEndif}, true
	case strings.HasPrefix(rest, "include"):
		return directive{kind: dirInclude}, true
	default:
		return directive{kind: dirOther}, true
	}
}

// isFalseCondition recognizes the handful of #if conditions provably
// false without a real macro-expansion context: #if 0, #if (0), #if !1.
// Anything else (including defined(FOO) for an unknown FOO) is treated
// as possibly true, the conservative choice for partial parsing.
func isFalseCondition(condition string) bool {
	condition = strings.TrimSpace(condition)
	return condition == "0" || condition == "(0)" || condition == "!1"
}

func splitLines(source string) []string {
	lines := strings.Split(source, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
