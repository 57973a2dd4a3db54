package vmess

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/John-Robertt/sub2clash/internal/model"
	"github.com/John-Robertt/sub2clash/internal/sub/b64"
)

// Prefix is the link scheme this package decodes.
const Prefix = "vmess://"

type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return "vmess: " + e.Message
	}
	return fmt.Sprintf("vmess: %s: %v", e.Message, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// rawLink is the JSON object inside vmess://. Only the keys we render are
// decoded; v2rayN adds net/tls/path/... which are ignored.
type rawLink struct {
	PS   string     `json:"ps"`
	Add  string     `json:"add"`
	Port flexNumber `json:"port"`
	ID   string     `json:"id"`
	Aid  flexNumber `json:"aid"`
}

// flexNumber accepts 443, "443" and "" (as unset).
type flexNumber struct {
	Value int
	Set   bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Accept integral floats such as 443.0.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return fmt.Errorf("not an integer: %s", s)
		}
		v = int(f)
	}
	n.Value = v
	n.Set = true
	return nil
}

// DecodeLink parses vmess://base64(json).
func DecodeLink(link string) (model.Proxy, error) {
	rest, ok := strings.CutPrefix(link, Prefix)
	if !ok {
		return model.Proxy{}, &ParseError{Message: "missing vmess:// prefix"}
	}

	decoded, err := b64.Decode(strings.TrimSpace(rest))
	if err != nil {
		return model.Proxy{}, &ParseError{Message: "base64 decode failed", Cause: err}
	}

	var raw rawLink
	if err := json.Unmarshal(decoded, &raw); err != nil {
		return model.Proxy{}, &ParseError{Message: "invalid JSON content", Cause: err}
	}

	if strings.TrimSpace(raw.Add) == "" {
		return model.Proxy{}, &ParseError{Message: "missing add"}
	}
	if !raw.Port.Set {
		return model.Proxy{}, &ParseError{Message: "missing port"}
	}
	if raw.Port.Value < 1 || raw.Port.Value > 65535 {
		return model.Proxy{}, &ParseError{Message: "port out of range", Cause: errors.New(strconv.Itoa(raw.Port.Value))}
	}
	if strings.TrimSpace(raw.ID) == "" {
		return model.Proxy{}, &ParseError{Message: "missing id"}
	}
	if raw.Aid.Value < 0 {
		return model.Proxy{}, &ParseError{Message: "negative aid"}
	}

	name := raw.PS
	if name == "" {
		name = raw.Add
	}

	return model.Proxy{
		Kind:   model.KindVMess,
		Name:   name,
		Server: raw.Add,
		Port:   raw.Port.Value,
		VMess: &model.VMess{
			UUID:    raw.ID,
			AlterID: raw.Aid.Value,
		},
	}, nil
}

// ValidUUID reports whether id is a canonical RFC 4122 UUID. Links with other
// ids are still accepted; the caller may log them.
func ValidUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
