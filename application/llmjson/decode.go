// Package llmjson decodes the nominally-JSON replies of a text-completion
// model. Decoding runs in explicit stages: Strict parses the whole reply,
// Recover extracts the first balanced object from surrounding prose. Callers
// own the final, dependency-free fallback.
package llmjson

import (
	"encoding/json"
	"fmt"
	"strings"

	"career-coach/domain"
)

// MaxRecoverBytes bounds how much text Recover scans.
const MaxRecoverBytes = 1 << 20

type Stage int

const (
	StageStrict Stage = iota + 1
	StageRecovered
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageStrict:
		return "strict"
	case StageRecovered:
		return "recovered"
	default:
		return "failed"
	}
}

// CleanFences strips a surrounding markdown code fence and whitespace.
func CleanFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "```json"), "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Strict parses the whole reply, tolerating only a code fence around it.
func Strict[T any](raw string) (T, error) {
	var out T
	cleaned := CleanFences(raw)
	if cleaned == "" {
		return out, domain.ErrEmptyOutput
	}
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return out, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	return out, nil
}

// Recover parses the first balanced {...} object found in the reply.
func Recover[T any](raw string) (T, error) {
	var out T
	if len(raw) > MaxRecoverBytes {
		raw = raw[:MaxRecoverBytes]
	}
	candidate, ok := FirstObject(raw)
	if !ok {
		return out, fmt.Errorf("%w: no JSON object found", domain.ErrMalformedOutput)
	}
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return out, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	return out, nil
}

// Decode runs Strict then Recover and reports which stage produced the value.
func Decode[T any](raw string) (T, Stage, error) {
	out, err := Strict[T](raw)
	if err == nil {
		return out, StageStrict, nil
	}
	out, rerr := Recover[T](raw)
	if rerr == nil {
		return out, StageRecovered, nil
	}
	var zero T
	return zero, StageFailed, rerr
}

// FirstObject returns the first brace-balanced object in s, skipping braces
// inside JSON strings. When the braces never balance it falls back to the
// span from the first '{' to the last '}'.
func FirstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	end := strings.LastIndexByte(s, '}')
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}
