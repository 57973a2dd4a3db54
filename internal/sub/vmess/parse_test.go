package vmess

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/John-Robertt/sub2clash/internal/model"
)

func vmessLink(js string) string {
	return "vmess://" + base64.StdEncoding.EncodeToString([]byte(js))
}

func TestDecodeLink_Scenario(t *testing.T) {
	p, err := DecodeLink("vmess://eyJwcyI6ImFiYyIsImFkZCI6ImguY29tIiwicG9ydCI6NDQzLCJpZCI6InUxIn0=")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind != model.KindVMess || p.Type() != "vmess" {
		t.Fatalf("kind=%v type=%q", p.Kind, p.Type())
	}
	if p.Name != "abc" || p.Server != "h.com" || p.Port != 443 {
		t.Fatalf("name/server/port=%q/%q/%d", p.Name, p.Server, p.Port)
	}
	if p.VMess.UUID != "u1" || p.VMess.AlterID != 0 || p.Cipher() != "auto" || !p.UDP() {
		t.Fatalf("uuid/aid/cipher/udp=%q/%d/%q/%v", p.VMess.UUID, p.VMess.AlterID, p.Cipher(), p.UDP())
	}
}

func TestDecodeLink_NameFallsBackToAdd(t *testing.T) {
	tests := []struct {
		js   string
		want string
	}{
		{`{"add":"h.com","port":443,"id":"u1"}`, "h.com"},
		{`{"ps":"","add":"h.com","port":443,"id":"u1"}`, "h.com"},
		{`{"ps":"香港","add":"h.com","port":443,"id":"u1"}`, "香港"},
	}
	for _, tt := range tests {
		p, err := DecodeLink(vmessLink(tt.js))
		if err != nil {
			t.Fatalf("DecodeLink(%s) unexpected err: %v", tt.js, err)
		}
		if p.Name != tt.want {
			t.Fatalf("DecodeLink(%s).Name=%q, want %q", tt.js, p.Name, tt.want)
		}
	}
}

func TestDecodeLink_FlexibleNumbers(t *testing.T) {
	tests := []struct {
		js      string
		port    int
		alterID int
	}{
		{`{"add":"a","port":"8443","id":"u","aid":"2"}`, 8443, 2},
		{`{"add":"a","port":443,"id":"u","aid":64}`, 443, 64},
		{`{"add":"a","port":443.0,"id":"u","aid":""}`, 443, 0},
		{`{"add":"a","port":"443","id":"u","aid":null}`, 443, 0},
	}
	for _, tt := range tests {
		p, err := DecodeLink(vmessLink(tt.js))
		if err != nil {
			t.Fatalf("DecodeLink(%s) unexpected err: %v", tt.js, err)
		}
		if p.Port != tt.port || p.VMess.AlterID != tt.alterID {
			t.Fatalf("DecodeLink(%s) port/aid=%d/%d, want %d/%d", tt.js, p.Port, p.VMess.AlterID, tt.port, tt.alterID)
		}
	}
}

func TestDecodeLink_Errors(t *testing.T) {
	tests := []struct {
		name string
		link string
	}{
		{"prefix", "ss://abc"},
		{"bad base64", "vmess://!!!"},
		{"not json", vmessLink("hello")},
		{"missing add", vmessLink(`{"port":443,"id":"u"}`)},
		{"missing port", vmessLink(`{"add":"a","id":"u"}`)},
		{"bad port", vmessLink(`{"add":"a","port":"https","id":"u"}`)},
		{"port range", vmessLink(`{"add":"a","port":70000,"id":"u"}`)},
		{"missing id", vmessLink(`{"add":"a","port":443}`)},
		{"negative aid", vmessLink(`{"add":"a","port":443,"id":"u","aid":-1}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLink(tt.link)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T: %v", err, err)
			}
		})
	}
}

func TestValidUUID(t *testing.T) {
	if !ValidUUID("b831381d-6324-4d53-ad4f-8cda48b30811") {
		t.Fatalf("expected canonical uuid to be valid")
	}
	for _, s := range []string{"u1", "", "b831381d63244d53ad4f8cda48b30811"} {
		if ValidUUID(s) {
			t.Fatalf("ValidUUID(%q)=true, want false", s)
		}
	}
}
