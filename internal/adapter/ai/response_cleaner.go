// Package ai holds the model-facing helpers: output cleaning, schema decoding and the circuit breaker.
package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

// ResponseCleaner strips the wrapping that chat models put around a JSON object.
// It never rewrites quotes or markdown emphasis inside the object, since
// prediction text is free-form Chinese prose.
type ResponseCleaner struct{}

// NewResponseCleaner creates a new response cleaner.
func NewResponseCleaner() *ResponseCleaner {
	return &ResponseCleaner{}
}

// CleanJSONResponse returns the best JSON candidate found in response.
func (rc *ResponseCleaner) CleanJSONResponse(response string) (string, error) {
	response = rc.removeMarkdownBlocks(response)
	response = rc.extractJSON(response)
	response = rc.validateAndFixJSON(response)
	return response, nil
}

// removeMarkdownBlocks drops ``` fences, including a leading language tag.
func (rc *ResponseCleaner) removeMarkdownBlocks(response string) string {
	response = strings.TrimSpace(response)
	if i := strings.Index(response, "```"); i >= 0 {
		rest := response[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.Contains(rest[:nl], "{") {
			rest = rest[nl+1:]
		}
		if j := strings.LastIndex(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		response = rest
	}
	return strings.TrimSpace(response)
}

// extractJSON returns the first balanced {...} object. Braces inside string
// literals are ignored.
func (rc *ResponseCleaner) extractJSON(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return response
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		ch := response[i]
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
				return response[start : i+1]
			}
		}
	}
	// unbalanced: hand back from the first brace and let validation fail
	return response[start:]
}

func (rc *ResponseCleaner) validateAndFixJSON(response string) string {
	if rc.IsValidJSON(response) {
		return response
	}
	return rc.fixCommonJSONIssues(response)
}

func (rc *ResponseCleaner) fixCommonJSONIssues(response string) string {
	return trailingComma.ReplaceAllString(response, "$1")
}

// IsValidJSON checks if a string is valid JSON.
func (rc *ResponseCleaner) IsValidJSON(response string) bool {
	return json.Valid([]byte(response))
}

// CleanAndValidateJSON cleans response and fails when the result is still not JSON.
func (rc *ResponseCleaner) CleanAndValidateJSON(response string) (string, error) {
	cleaned, err := rc.CleanJSONResponse(response)
	if err != nil {
		return "", err
	}

	if !rc.IsValidJSON(cleaned) {
		return "", &JSONValidationError{
			Original: response,
			Cleaned:  cleaned,
			Message:  "cleaned response is still not valid JSON",
		}
	}

	return cleaned, nil
}

// JSONValidationError represents a JSON validation error.
type JSONValidationError struct {
	Original string
	Cleaned  string
	Message  string
}

func (e *JSONValidationError) Error() string {
	return e.Message
}
