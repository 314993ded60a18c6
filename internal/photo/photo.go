// Package photo validates student photos and converts them to and from data URLs.
package photo

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

var allowed = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Validate sniffs data and returns its MIME type. It rejects empty input,
// anything over maxBytes, and anything that is not jpeg, png or webp.
func Validate(data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty photo", domain.ErrInvalidArgument)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: photo exceeds %d bytes", domain.ErrInvalidArgument, maxBytes)
	}
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if _, ok := allowed[m.String()]; ok {
			return m.String(), nil
		}
	}
	return "", fmt.Errorf("%w: unsupported photo type %s", domain.ErrInvalidArgument, mt.String())
}

// EncodeDataURL renders data as "data:<mime>;base64,...". An empty contentType is sniffed.
func EncodeDataURL(data []byte, contentType string) string {
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL accepts either a data URL or bare base64 and returns the bytes
// with the declared (or sniffed) content type.
func DecodeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", fmt.Errorf("%w: empty photo", domain.ErrInvalidArgument)
	}
	declared := ""
	if strings.HasPrefix(s, "data:") {
		meta, payload, ok := strings.Cut(s[len("data:"):], ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, "", fmt.Errorf("%w: malformed data url", domain.ErrInvalidArgument)
		}
		declared = strings.TrimSuffix(meta, ";base64")
		s = payload
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, "", fmt.Errorf("%w: photo is not base64: %v", domain.ErrInvalidArgument, err)
	}
	if declared == "" {
		declared = mimetype.Detect(b).String()
	}
	return b, declared, nil
}
