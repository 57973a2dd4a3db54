package sub

import (
	"errors"
	"fmt"
	"strings"

	"github.com/John-Robertt/sub2clash/internal/model"
	"github.com/John-Robertt/sub2clash/internal/sub/ss"
	"github.com/John-Robertt/sub2clash/internal/sub/vmess"
)

// Scheme is the closed set of line classes the decoder distinguishes.
type Scheme int

const (
	SchemeUnknown Scheme = iota
	SchemeShadowsocks
	SchemeVMess
)

func (s Scheme) String() string {
	switch s {
	case SchemeShadowsocks:
		return "ss"
	case SchemeVMess:
		return "vmess"
	default:
		return "unknown"
	}
}

// ErrUnrecognized is returned by Decode for lines that are not ss:// or
// vmess:// links.
var ErrUnrecognized = errors.New("unrecognized link scheme")

// DecodeError is a per-line failure. It never aborts a conversion.
type DecodeError struct {
	Scheme Scheme
	Line   int // 1-based position among candidate lines; 0 when unknown
	Cause  error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d (%s): %v", e.Line, e.Scheme, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Scheme, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// Classify picks the scheme of a candidate line by prefix.
func Classify(line string) Scheme {
	return classify(unquote(strings.TrimSpace(line)))
}

func classify(line string) Scheme {
	switch {
	case strings.HasPrefix(line, ss.Prefix):
		return SchemeShadowsocks
	case strings.HasPrefix(line, vmess.Prefix):
		return SchemeVMess
	default:
		return SchemeUnknown
	}
}

// Decode classifies line and parses it with the matching decoder.
//
// Unknown schemes return ErrUnrecognized; parse failures return a
// *DecodeError.
func Decode(line string) (model.Proxy, error) {
	line = unquote(strings.TrimSpace(line))

	var (
		p   model.Proxy
		err error
	)
	scheme := classify(line)
	switch scheme {
	case SchemeShadowsocks:
		p, err = ss.DecodeLink(line)
	case SchemeVMess:
		p, err = vmess.DecodeLink(line)
	case SchemeUnknown:
		return model.Proxy{}, ErrUnrecognized
	}
	if err != nil {
		return model.Proxy{}, &DecodeError{Scheme: scheme, Cause: err}
	}
	return p, nil
}

// unquote strips one leading and one trailing quote character, as links are
// sometimes pasted wrapped in quotes.
func unquote(s string) string {
	if s != "" && (s[0] == '\'' || s[0] == '"') {
		s = s[1:]
	}
	if s != "" && (s[len(s)-1] == '\'' || s[len(s)-1] == '"') {
		s = s[:len(s)-1]
	}
	return s
}
