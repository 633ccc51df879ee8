package llmjson

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Payload is implemented by every type that can be decoded from model
// output. Validate must check the whole value: field presence, non-empty
// strings, and collection bounds. A payload either fully validates or is
// rejected; there is no partial acceptance.
type Payload interface {
	Validate() error
}

// FallbackFunc is a last-resort extractor invoked on the original raw text
// after the JSON strategies have failed. It returns a generic value that is
// then coerced into the target payload and validated like any other result.
type FallbackFunc func(raw string) (any, error)

// previewLimit bounds the raw-text preview carried by a ValidationError.
const previewLimit = 200

// Decode turns raw model text into a validated payload of type T. Strategies
// run in a fixed order, each recording its failure reason:
//
//  1. direct:   extract candidate, repair, unmarshal straight into T
//  2. generic:  same candidate, but through a generic value first (tolerates
//               shape drift that a re-marshal round trip can absorb)
//  3. fallback: the caller-supplied extractor on the original raw text
//
// The first strategy whose value validates wins. If all fail, Decode returns
// a *ValidationError aggregating every attempt.
func Decode[T Payload](raw string, fallback FallbackFunc) (T, error) {
	var zero T
	var attempts []StrategyFailure

	candidate, extractErr := ExtractPayload(raw)
	if extractErr == nil {
		candidate = Repair(candidate)

		if v, err := decodeDirect[T](candidate); err == nil {
			return v, nil
		} else {
			attempts = append(attempts, StrategyFailure{Name: "direct", Reason: err.Error()})
		}

		if v, err := decodeGeneric[T](candidate); err == nil {
			return v, nil
		} else {
			attempts = append(attempts, StrategyFailure{Name: "generic", Reason: err.Error()})
		}
	} else {
		attempts = append(attempts, StrategyFailure{Name: "extract", Reason: extractErr.Error()})
	}

	if fallback != nil {
		if v, err := decodeFallback[T](raw, fallback); err == nil {
			return v, nil
		} else {
			attempts = append(attempts, StrategyFailure{Name: "fallback", Reason: err.Error()})
		}
	}

	return zero, &ValidationError{
		Strategies: attempts,
		Preview:    preview(raw),
	}
}

func decodeDirect[T Payload](candidate string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return v, fmt.Errorf("unmarshal: %w", err)
	}
	if err := v.Validate(); err != nil {
		return v, fmt.Errorf("validate: %w", err)
	}
	return v, nil
}

func decodeGeneric[T Payload](candidate string) (T, error) {
	var v T
	var generic any
	if err := json.Unmarshal([]byte(candidate), &generic); err != nil {
		return v, fmt.Errorf("unmarshal generic: %w", err)
	}
	return coerce[T](generic)
}

func decodeFallback[T Payload](raw string, fallback FallbackFunc) (T, error) {
	var v T
	generic, err := fallback(raw)
	if err != nil {
		return v, fmt.Errorf("extractor: %w", err)
	}
	return coerce[T](generic)
}

// coerce round-trips a generic value through JSON into the payload type and
// validates the result.
func coerce[T Payload](generic any) (T, error) {
	var v T
	data, err := json.Marshal(generic)
	if err != nil {
		return v, fmt.Errorf("remarshal: %w", err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("coerce: %w", err)
	}
	if err := v.Validate(); err != nil {
		return v, fmt.Errorf("validate: %w", err)
	}
	return v, nil
}

func preview(raw string) string {
	r := []rune(strings.TrimSpace(raw))
	if len(r) <= previewLimit {
		return string(r)
	}
	return string(r[:previewLimit]) + "..."
}

// StrategyFailure records why one decoding strategy rejected the text.
type StrategyFailure struct {
	Name   string
	Reason string
}

// ValidationError reports that every decoding strategy failed. It keeps each
// attempt's reason plus a bounded preview of the original text for diagnosis.
type ValidationError struct {
	Strategies []StrategyFailure
	Preview    string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Strategies))
	for _, s := range e.Strategies {
		parts = append(parts, fmt.Sprintf("%s: %s", s.Name, s.Reason))
	}
	return fmt.Sprintf("all decode strategies failed (%s); text preview: %q",
		strings.Join(parts, "; "), e.Preview)
}
