package model

import "testing"

func TestDocumentValidate(t *testing.T) {
	doc := &Document{
		Proxies: []Proxy{{Kind: KindShadowsocks, Name: "A", SS: &Shadowsocks{Cipher: "m", Password: "p"}}},
		Groups:  []Group{{Name: "PROXY", Type: "select", Members: []string{"A", AutoMember}}},
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc.Groups[0].Members = append(doc.Groups[0].Members, "B")
	if err := doc.Validate(); err == nil {
		t.Fatalf("expected error for dangling member")
	}
}

func TestProxyCipherAndType(t *testing.T) {
	ss := Proxy{Kind: KindShadowsocks, SS: &Shadowsocks{Cipher: "aes-128-gcm"}}
	if ss.Type() != "ss" || ss.Cipher() != "aes-128-gcm" || !ss.UDP() {
		t.Fatalf("ss type/cipher/udp=%q/%q/%v", ss.Type(), ss.Cipher(), ss.UDP())
	}
	vm := Proxy{Kind: KindVMess, VMess: &VMess{UUID: "u1"}}
	if vm.Type() != "vmess" || vm.Cipher() != VMessCipher || !vm.UDP() {
		t.Fatalf("vmess type/cipher/udp=%q/%q/%v", vm.Type(), vm.Cipher(), vm.UDP())
	}
}

func TestRuleString(t *testing.T) {
	if got := (Rule{Type: "MATCH", Action: "PROXY"}).String(); got != "MATCH,PROXY" {
		t.Fatalf("got %q", got)
	}
	if got := (Rule{Type: "DOMAIN-SUFFIX", Value: "example.com", Action: "DIRECT"}).String(); got != "DOMAIN-SUFFIX,example.com,DIRECT" {
		t.Fatalf("got %q", got)
	}
}
