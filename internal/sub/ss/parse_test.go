package ss

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/John-Robertt/sub2clash/internal/model"
)

func ssLink(body, frag string) string {
	s := "ss://" + base64.StdEncoding.EncodeToString([]byte(body))
	if frag != "" {
		s += "#" + frag
	}
	return s
}

func TestDecodeLink_Scenario(t *testing.T) {
	p, err := DecodeLink("ss://bTpwQGhvc3Q6ODA=#Node1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Kind != model.KindShadowsocks || p.Type() != "ss" {
		t.Fatalf("kind=%v type=%q", p.Kind, p.Type())
	}
	if p.Name != "Node1" || p.Server != "host" || p.Port != 80 {
		t.Fatalf("name/server/port=%q/%q/%d", p.Name, p.Server, p.Port)
	}
	if p.SS.Cipher != "m" || p.SS.Password != "p" {
		t.Fatalf("cipher/password=%q/%q", p.SS.Cipher, p.SS.Password)
	}
	if !p.UDP() {
		t.Fatalf("udp should always be true")
	}
}

func TestDecodeLink_Name(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{ssLink("aes-128-gcm:pass@example.com:8388", ""), DefaultName},
		{ssLink("aes-128-gcm:pass@example.com:8388", "Node%201"), "Node 1"},
		{ssLink("aes-128-gcm:pass@example.com:8388", "%E9%A6%99%E6%B8%AF"), "香港"},
		{ssLink("aes-128-gcm:pass@example.com:8388", "a#b"), "a#b"},
		{ssLink("aes-128-gcm:pass@example.com:8388", "") + "#", DefaultName},
	}
	for _, tt := range tests {
		p, err := DecodeLink(tt.link)
		if err != nil {
			t.Fatalf("DecodeLink(%q) unexpected err: %v", tt.link, err)
		}
		if p.Name != tt.want {
			t.Fatalf("DecodeLink(%q).Name=%q, want %q", tt.link, p.Name, tt.want)
		}
	}
}

func TestDecodeLink_UnpaddedBase64(t *testing.T) {
	link := "ss://" + base64.RawURLEncoding.EncodeToString([]byte("chacha20-ietf-poly1305:pw@1.2.3.4:443")) + "#x"
	p, err := DecodeLink(link)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SS.Cipher != "chacha20-ietf-poly1305" || p.Server != "1.2.3.4" || p.Port != 443 {
		t.Fatalf("got %+v", p)
	}
}

func TestDecodeLink_PatternCaptures(t *testing.T) {
	// host is greedy up to the last colon, method/password are not.
	p, err := DecodeLink(ssLink("m:p:q@::1:8388", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SS.Cipher != "m" || p.SS.Password != "p:q" || p.Server != "::1" || p.Port != 8388 {
		t.Fatalf("got cipher=%q password=%q server=%q port=%d", p.SS.Cipher, p.SS.Password, p.Server, p.Port)
	}
}

func TestDecodeLink_Errors(t *testing.T) {
	tests := []struct {
		name string
		link string
	}{
		{"prefix", "vmess://abc"},
		{"bad base64", "ss://!!!#x"},
		{"no at", ssLink("m:p-host:80", "")},
		{"no port", ssLink("m:p@host", "")},
		{"alpha port", ssLink("m:p@host:http", "")},
		{"port zero", ssLink("m:p@host:0", "")},
		{"port too big", ssLink("m:p@host:65536", "")},
		{"bad fragment", ssLink("m:p@host:80", "%zz")},
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

func TestEncodeLink_RoundTrip(t *testing.T) {
	in := []model.Proxy{
		{Kind: model.KindShadowsocks, Name: "Node 1", Server: "example.com", Port: 8388, SS: &model.Shadowsocks{Cipher: "aes-256-gcm", Password: "secret"}},
		{Kind: model.KindShadowsocks, Name: "香港 01", Server: "1.2.3.4", Port: 1, SS: &model.Shadowsocks{Cipher: "m", Password: "p:q"}},
	}
	for _, want := range in {
		link, err := EncodeLink(want)
		if err != nil {
			t.Fatalf("EncodeLink unexpected err: %v", err)
		}
		got, err := DecodeLink(link)
		if err != nil {
			t.Fatalf("DecodeLink(%q) unexpected err: %v", link, err)
		}
		if got.Name != want.Name || got.Server != want.Server || got.Port != want.Port || *got.SS != *want.SS {
			t.Fatalf("round trip mismatch: got %+v / %+v, want %+v / %+v", got, *got.SS, want, *want.SS)
		}
	}
}

func TestEncodeLink_RejectsVMess(t *testing.T) {
	if _, err := EncodeLink(model.Proxy{Kind: model.KindVMess}); err == nil {
		t.Fatalf("expected error")
	}
}
