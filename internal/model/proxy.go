package model

// Kind is the closed set of proxy protocols a Proxy can carry.
type Kind int

const (
	KindShadowsocks Kind = iota + 1
	KindVMess
)

// Type returns the Clash "type" value for the kind.
func (k Kind) Type() string {
	switch k {
	case KindShadowsocks:
		return "ss"
	case KindVMess:
		return "vmess"
	default:
		return ""
	}
}

func (k Kind) String() string {
	switch k {
	case KindShadowsocks:
		return "shadowsocks"
	case KindVMess:
		return "vmess"
	default:
		return "unknown"
	}
}

// VMessCipher is the only cipher emitted for vmess nodes.
const VMessCipher = "auto"

type Shadowsocks struct {
	Cipher   string
	Password string
}

type VMess struct {
	UUID    string
	AlterID int
}

// Proxy is one decoded subscription node.
//
// Exactly one of SS/VMess is set, matching Kind. Name is taken from the link
// and is not guaranteed to be unique.
type Proxy struct {
	Kind Kind
	Name string

	Server string
	Port   int

	SS    *Shadowsocks
	VMess *VMess
}

// Type returns the rendered type tag ("ss" / "vmess").
func (p Proxy) Type() string { return p.Kind.Type() }

// UDP reports whether UDP relay is enabled. Subscription links never say
// otherwise, so it is always on.
func (p Proxy) UDP() bool { return true }

// Cipher returns the cipher field for either variant.
func (p Proxy) Cipher() string {
	switch p.Kind {
	case KindShadowsocks:
		if p.SS != nil {
			return p.SS.Cipher
		}
	case KindVMess:
		return VMessCipher
	}
	return ""
}
