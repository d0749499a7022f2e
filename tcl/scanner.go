// Package tcl implements SDC constraint extraction and EDA tool
// command classification for Tcl sources (plain .tcl scripts, .sdc
// timing constraints, .upf power intent). Tcl is parsed by line/token
// scanning rather than a tree-sitter grammar: the retrieval pack ships
// no tree-sitter-tcl grammar, and SDC/EDA scripts are a restricted,
// largely flat command dialect a balanced-delimiter word scanner
// handles well, grounded on the same technique this module's C
// pipeline uses for GCC-extension neutralization.
package tcl

import "strings"

// Command is one Tcl command: its name (the first word), its
// remaining words as already-scanned argument tokens, and the source
// line it starts on.
type Command struct {
	Name string
	Args []string
	Line int
}

// Tokenize splits source into top-level commands, respecting Tcl's
// brace/bracket/quote grouping and backslash-newline continuation, and
// dropping comment-only lines (a '#' as the first non-whitespace
// character of a command runs to end of line).
func Tokenize(source string) []Command {
	var commands []Command
	var buf strings.Builder

	line := 1
	startLine := 0
	depthBrace := 0
	depthBracket := 0
	inQuote := false

	flush := func() {
		text := strings.TrimSpace(buf.String())
		if text != "" {
			words := splitWords(text)
			if len(words) > 0 {
				commands = append(commands, Command{Name: words[0], Args: words[1:], Line: startLine})
			}
		}
		buf.Reset()
		startLine = 0
	}

	i := 0
	n := len(source)
	for i < n {
		c := source[i]

		if depthBrace == 0 && depthBracket == 0 && !inQuote {
			if strings.TrimSpace(buf.String()) == "" && c == '#' {
				for i < n && source[i] != '\n' {
					if source[i] == '\\' && i+1 < n && source[i+1] == '\n' {
						i += 2
						line++
						continue
					}
					i++
				}
				continue
			}
			if c == ';' || c == '\n' {
				flush()
				if c == '\n' {
					line++
				}
				i++
				continue
			}
			if c == '\\' && i+1 < n && source[i+1] == '\n' {
				buf.WriteByte(' ')
				i += 2
				line++
				continue
			}
		}

		switch c {
		case '{':
			if !inQuote {
				depthBrace++
			}
		case '}':
			if !inQuote && depthBrace > 0 {
				depthBrace--
			}
		case '[':
			if !inQuote {
				depthBracket++
			}
		case ']':
			if !inQuote && depthBracket > 0 {
				depthBracket--
			}
		case '"':
			if depthBrace == 0 {
				inQuote = !inQuote
			}
		case '\n':
			line++
		}

		if startLine == 0 && c != ' ' && c != '\t' && c != '\r' {
			startLine = line
		}
		buf.WriteByte(c)
		i++
	}
	flush()

	return commands
}

// splitWords splits a command's text into words, treating {...},
// [...], and "..." as grouping delimiters whose internal whitespace
// does not split the word.
func splitWords(s string) []string {
	var words []string
	i := 0
	n := len(s)
	for i < n {
		for i < n && isSpace(s[i]) {
			i++
		}
		if i >= n {
			break
		}
		start := i
		for i < n && !isSpace(s[i]) {
			switch s[i] {
			case '{', '[', '"':
				i = scanGroup(s, i)
			default:
				i++
			}
		}
		words = append(words, s[start:i])
	}
	return words
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// scanGroup returns the index one past the end of the balanced
// {...}/[...]/"..." group starting at s[start]. Brackets recurse into
// nested braces/brackets/quotes; quotes honor backslash escaping.
func scanGroup(s string, start int) int {
	n := len(s)
	open := s[start]
	switch open {
	case '"':
		j := start + 1
		for j < n {
			if s[j] == '\\' {
				j += 2
				continue
			}
			if s[j] == '"' {
				return j + 1
			}
			j++
		}
		return n
	case '{':
		depth := 1
		j := start + 1
		for j < n && depth > 0 {
			switch s[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			j++
		}
		return j
	case '[':
		depth := 1
		j := start + 1
		for j < n && depth > 0 {
			switch s[j] {
			case '[':
				depth++
				j++
			case ']':
				depth--
				j++
			case '{':
				j = scanGroup(s, j)
			case '"':
				j = scanGroup(s, j)
			default:
				j++
			}
		}
		return j
	default:
		return start + 1
	}
}
