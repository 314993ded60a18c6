package httpserver

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// validationDetails maps each failed field to the tag that rejected it.
func validationDetails(err error) map[string]string {
	out := map[string]string{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[strings.ToLower(fe.Field())] = fe.Tag()
		}
	}
	return out
}

// missingRequired reports whether err contains a failed "required" tag.
func missingRequired(err error) bool {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return false
	}
	for _, fe := range ve {
		if fe.Tag() == "required" {
			return true
		}
	}
	return false
}

var userIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.:@-]{1,128}$`)

// ValidUserID reports whether id is a usable opaque user id.
func ValidUserID(id string) bool { return userIDPattern.MatchString(id) }

// SanitizeString strips NUL bytes, trims, caps the length and drops invalid UTF-8.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)
	if !utf8.ValidString(input) {
		input = strings.ToValidUTF8(input, "")
	}
	if utf8.RuneCountInString(input) > 1000 {
		input = string([]rune(input)[:1000])
	}
	return input
}
