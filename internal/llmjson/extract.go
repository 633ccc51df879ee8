// Package llmjson recovers structured payloads from free-form language-model
// output. Model text routinely wraps JSON in markdown fences, prepends prose,
// or carries minor syntax defects (trailing commas, comments); this package
// extracts the most plausible candidate, repairs it, and decodes it against a
// typed payload through an ordered list of strategies.
package llmjson

import (
	"fmt"
	"strings"
)

// structured-data language tags that mark a fenced block as the payload.
var payloadLangs = map[string]struct{}{
	"json":  {},
	"json5": {},
	"jsonc": {},
}

// ExtractPayload pulls the best structured-data candidate out of raw model
// text. In order it tries: a fenced block tagged as JSON, the first fenced
// block of any language, the first balanced {...} or [...] in the text, and
// finally the whole trimmed text. It only fails when the input is empty.
// The returned candidate is not guaranteed to parse.
func ExtractPayload(text string) (string, error) {
	s := trimBOM(strings.TrimSpace(text))
	if s == "" {
		return "", &ExtractionError{Reason: "empty input"}
	}

	if block, ok := findFencedBlock(s, true); ok {
		return block, nil
	}
	if block, ok := findFencedBlock(s, false); ok {
		return stripLeadingLangTag(block), nil
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			if out, ok := balancedFrom(s, i); ok {
				return out, nil
			}
		}
	}
	return s, nil
}

// findFencedBlock scans for ``` or ~~~ fenced blocks. With jsonOnly set it
// returns the first block whose language tag is a structured-data tag;
// otherwise it returns the first block of any language, language line removed.
func findFencedBlock(s string, jsonOnly bool) (string, bool) {
	for _, fence := range []string{"```", "~~~"} {
		start := 0
		for {
			i := strings.Index(s[start:], fence)
			if i == -1 {
				break
			}
			i += start
			afterFence := i + len(fence)
			nl := strings.IndexByte(s[afterFence:], '\n')
			if nl == -1 {
				break // opening fence with no body
			}
			lang := strings.ToLower(strings.TrimSpace(s[afterFence : afterFence+nl]))
			contentStart := afterFence + nl + 1
			j := strings.Index(s[contentStart:], fence)
			if j == -1 {
				// Unterminated block: tolerate by taking everything after the
				// opening line. Models frequently drop the closing fence.
				if !jsonOnly || isPayloadLang(lang) {
					return strings.TrimSpace(s[contentStart:]), true
				}
				break
			}
			content := strings.TrimSpace(s[contentStart : contentStart+j])
			if jsonOnly {
				if isPayloadLang(lang) {
					return content, true
				}
				start = contentStart + j + len(fence)
				continue
			}
			return content, true
		}
	}
	return "", false
}

// stripLeadingLangTag drops a language tag that ended up inside the block
// body, e.g. when the model writes the fence and the tag on separate lines.
func stripLeadingLangTag(s string) string {
	nl := strings.IndexByte(s, '\n')
	if nl == -1 {
		return s
	}
	if isPayloadLang(strings.ToLower(strings.TrimSpace(s[:nl]))) {
		return strings.TrimSpace(s[nl+1:])
	}
	return s
}

func isPayloadLang(lang string) bool {
	fields := strings.Fields(lang)
	if len(fields) == 0 {
		return false
	}
	_, ok := payloadLangs[fields[0]]
	return ok
}

// balancedFrom extracts a balanced JSON value starting at startIdx, tracking
// nesting and skipping braces inside string literals and escape sequences.
func balancedFrom(s string, startIdx int) (string, bool) {
	open := s[startIdx]
	if open != '{' && open != '[' {
		return "", false
	}

	var (
		depth    []byte
		inString bool
		escape   bool
	)
	depth = append(depth, open)

	for i := startIdx + 1; i < len(s); i++ {
		c := s[i]
		if inString {
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
		case '{', '[':
			depth = append(depth, c)
		case '}', ']':
			top := depth[len(depth)-1]
			if (top == '{' && c != '}') || (top == '[' && c != ']') {
				return "", false
			}
			depth = depth[:len(depth)-1]
			if len(depth) == 0 {
				return s[startIdx : i+1], true
			}
		}
	}
	return "", false
}

// trimBOM drops a UTF-8 byte order mark, which some transports prepend.
func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}

// ExtractionError reports that no structured-data candidate could be found.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("payload extraction failed: %s", e.Reason)
}
