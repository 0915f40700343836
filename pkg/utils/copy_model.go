package utils

import (
	"context"
	"strings"
)

// CopyModelClient is the generation provider boundary: a structured prompt in,
// raw model text out. The text is not guaranteed to be valid JSON; callers
// run ExtractJSONObject over it.
type CopyModelClient interface {
	GenerateJSON(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
	ModelName() string
}

// ExtractJSONObject pulls the first balanced JSON object out of raw model
// output. Models wrap JSON in prose or markdown fences often enough that
// callers cannot unmarshal the response directly.
func ExtractJSONObject(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	if start < 0 {
		return "", ErrUnexpectedAIShape
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}

	return "", ErrUnexpectedAIShape
}
