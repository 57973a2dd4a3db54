package sub

import (
	"iter"
	"strings"

	"github.com/John-Robertt/sub2clash/internal/sub/b64"
)

// Payload is the subscription text after the optional outer base64 layer
// has been removed.
//
// Decoded is false when the input was not base64 (or did not decode to
// UTF-8); Text is then the input minus a leading BOM.
type Payload struct {
	Text    string
	Decoded bool
}

// Unwrap removes the outer base64 layer if the payload has one.
func Unwrap(raw string) Payload {
	s := strings.TrimPrefix(raw, "\uFEFF")
	compact := b64.StripSpace(s)
	if compact == "" {
		return Payload{Text: s}
	}
	text, err := b64.DecodeText(compact)
	if err != nil {
		return Payload{Text: s}
	}
	return Payload{Text: text, Decoded: true}
}

// Lines yields the trimmed candidate link lines of text in order, skipping
// blank lines and // comments.
func Lines(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range strings.SplitSeq(text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "//") {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

// Normalize is Unwrap followed by Lines.
func Normalize(raw string) iter.Seq[string] {
	return Lines(Unwrap(raw).Text)
}
