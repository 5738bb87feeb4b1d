// Package payload locates and validates structured JSON payloads embedded in
// free-text model responses. Models are instructed to return bare JSON, but
// they routinely wrap it in prose or markdown fences; this package recovers
// the payload when possible and classifies the failure when not.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Shape declares the expected top-level JSON shape of a payload.
type Shape int

const (
	// ShapeObject expects a JSON object ({...}).
	ShapeObject Shape = iota
	// ShapeArray expects a JSON array ([...]).
	ShapeArray
)

// Extraction failure classes. All are recoverable: callers substitute a
// default value and continue, and the raw text is preserved for diagnosis.
var (
	// ErrNoPayload means no substring opening with the expected bracket
	// reaches a balanced close anywhere in the text.
	ErrNoPayload = errors.New("no structured payload found in response")

	// ErrMalformed means a candidate substring was located but did not
	// parse as JSON.
	ErrMalformed = errors.New("malformed payload in response")

	// ErrSchemaMismatch means the payload parsed but is missing required
	// keys. Typed decoders wrap this sentinel.
	ErrSchemaMismatch = errors.New("payload does not match expected schema")
)

// fencePattern matches a markdown code fence (```json ... ```) so the inner
// content can be tried before scanning the whole text.
var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")

// Extract locates the structured payload of the given shape in raw text.
//
// The whole text is tried as JSON first; only when that fails does Extract
// fall back to fenced blocks and then to a bracket-balanced scan that tracks
// nesting depth and string state. The first balanced candidate that parses
// wins; the scan is never greedy, so prose containing brace-like characters
// after the real payload cannot over-match.
func Extract(raw string, shape Shape) (json.RawMessage, error) {
	open, closing := byte('{'), byte('}')
	if shape == ShapeArray {
		open, closing = '[', ']'
	}

	// Whole-text parse: the model followed instructions exactly.
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == open {
		if cleaned, ok := tryParse(trimmed); ok {
			return cleaned, nil
		}
	}

	// Fenced blocks next: the most common deviation.
	for _, m := range fencePattern.FindAllStringSubmatch(raw, -1) {
		inner := strings.TrimSpace(m[1])
		if len(inner) > 0 && inner[0] == open {
			if cleaned, ok := tryParse(inner); ok {
				return cleaned, nil
			}
		}
	}

	// Balanced scan over the full text.
	found := false
	for start := 0; start < len(raw); start++ {
		if raw[start] != open {
			continue
		}
		found = true
		candidate := scanBalanced(raw[start:], open, closing)
		if candidate == "" {
			continue
		}
		if cleaned, ok := tryParse(candidate); ok {
			return cleaned, nil
		}
	}

	if !found {
		return nil, ErrNoPayload
	}
	return nil, ErrMalformed
}

// ExtractObject is shorthand for Extract with ShapeObject.
func ExtractObject(raw string) (json.RawMessage, error) {
	return Extract(raw, ShapeObject)
}

// ExtractArray is shorthand for Extract with ShapeArray.
func ExtractArray(raw string) (json.RawMessage, error) {
	return Extract(raw, ShapeArray)
}

// scanBalanced returns the prefix of s that closes the opening bracket at
// s[0], tracking nesting depth and JSON string/escape state. Returns ""
// when the text ends before the bracket balances.
func scanBalanced(s string, open, closing byte) string {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
			// Brackets inside strings don't count.
		case ch == open:
			depth++
		case ch == closing:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// tryParse validates a candidate as JSON, cleaning common model artifacts
// (line comments, trailing commas) before giving up.
func tryParse(candidate string) (json.RawMessage, bool) {
	if json.Valid([]byte(candidate)) {
		return json.RawMessage(candidate), true
	}
	cleaned := cleanJSON(candidate)
	if json.Valid([]byte(cleaned)) {
		return json.RawMessage(cleaned), true
	}
	return nil, false
}

// SchemaError wraps ErrSchemaMismatch with the specific field complaint.
func SchemaError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchemaMismatch, fmt.Sprintf(format, args...))
}
