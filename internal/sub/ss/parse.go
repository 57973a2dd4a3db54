package ss

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/John-Robertt/sub2clash/internal/model"
	"github.com/John-Robertt/sub2clash/internal/sub/b64"
)

// Prefix is the link scheme this package decodes.
const Prefix = "ss://"

// DefaultName is used when the link carries no #fragment.
const DefaultName = "SS"

// bodyPattern is the only accepted shape of the decoded body:
// method:password@host:port.
var bodyPattern = regexp.MustCompile(`^(.+?):(.+?)@(.+):(\d+)$`)

type ParseError struct {
	Message string
	Snippet string // decoded body, when available
	Cause   error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return "ss: " + e.Message
	}
	return fmt.Sprintf("ss: %s: %v", e.Message, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// DecodeLink parses ss://base64(method:password@host:port)#name.
func DecodeLink(link string) (model.Proxy, error) {
	rest, ok := strings.CutPrefix(link, Prefix)
	if !ok {
		return model.Proxy{}, &ParseError{Message: "missing ss:// prefix"}
	}

	body, frag, hasFrag := strings.Cut(rest, "#")
	name := DefaultName
	if hasFrag && frag != "" {
		decoded, err := url.PathUnescape(frag)
		if err != nil {
			return model.Proxy{}, &ParseError{Message: "name URL decode failed", Cause: err}
		}
		name = decoded
	}

	decoded, err := b64.DecodeText(body)
	if err != nil {
		return model.Proxy{}, &ParseError{Message: "base64 decode failed", Cause: err}
	}

	m := bodyPattern.FindStringSubmatch(decoded)
	if m == nil {
		return model.Proxy{}, &ParseError{Message: "decoded content does not match method:password@host:port", Snippet: decoded}
	}
	method, password, host, portStr := m[1], m[2], m[3], m[4]

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return model.Proxy{}, &ParseError{Message: "invalid port", Snippet: decoded, Cause: err}
	}
	if port < 1 || port > 65535 {
		return model.Proxy{}, &ParseError{Message: "port out of range", Snippet: decoded, Cause: errors.New(portStr)}
	}

	return model.Proxy{
		Kind:   model.KindShadowsocks,
		Name:   name,
		Server: host,
		Port:   port,
		SS: &model.Shadowsocks{
			Cipher:   method,
			Password: password,
		},
	}, nil
}

// EncodeLink renders p back into the form DecodeLink accepts.
func EncodeLink(p model.Proxy) (string, error) {
	if p.Kind != model.KindShadowsocks || p.SS == nil {
		return "", fmt.Errorf("unsupported proxy type: %s", p.Kind)
	}
	body := p.SS.Cipher + ":" + p.SS.Password + "@" + p.Server + ":" + strconv.Itoa(p.Port)

	var b strings.Builder
	b.WriteString(Prefix)
	b.WriteString(base64.StdEncoding.EncodeToString([]byte(body)))
	if p.Name != "" {
		b.WriteByte('#')
		b.WriteString(pctEncode(p.Name))
	}
	return b.String(), nil
}

func pctEncode(s string) string {
	// QueryEscape uses '+' for spaces; rewrite to %20 so PathUnescape reverses it.
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
