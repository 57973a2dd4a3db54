// Package b64 decodes the loosely formatted base64 found in subscription
// payloads and links.
package b64

import (
	"encoding/base64"
	"errors"
	"unicode/utf8"
)

// ErrNotText is returned by DecodeText when the decoded bytes are not UTF-8.
var ErrNotText = errors.New("decoded content is not valid utf-8")

// Decode tries the standard alphabet (with padding) first, then URL-safe,
// then both unpadded variants.
func Decode(s string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// DecodeText is Decode plus a UTF-8 check.
func DecodeText(s string) (string, error) {
	b, err := Decode(s)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrNotText
	}
	return string(b), nil
}

// StripSpace removes ASCII space, tab, CR and LF.
func StripSpace(s string) string {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			buf = append(buf, s[i])
		}
	}
	return string(buf)
}
