package llmjson

import "strings"

// Repair fixes the JSON defects models most often produce: // line comments,
// /* */ block comments, and trailing commas before a closing brace or
// bracket. Comments are stripped first so that a comma separated from its
// closing delimiter only by a comment is still recognized as trailing. Both
// scans are string-aware, so comment markers and commas inside string
// literals (URLs in particular) are left untouched. Repair is idempotent.
func Repair(candidate string) string {
	return stripTrailingCommas(stripComments(candidate))
}

func stripComments(s string) string {
	var (
		b        strings.Builder
		inString bool
		escape   bool
	)
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			b.WriteByte(c)
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			b.WriteByte(c)
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end == -1 {
				i = len(s)
			} else {
				i += 2 + end + 1
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func stripTrailingCommas(s string) string {
	var (
		b        strings.Builder
		inString bool
		escape   bool
	)
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			b.WriteByte(c)
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
			b.WriteByte(c)
		case ',':
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
