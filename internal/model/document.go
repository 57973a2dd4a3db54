package model

import "fmt"

// AutoMember is the built-in pseudo member every select group may list
// without a backing proxy.
const AutoMember = "auto"

// Options holds the global settings rendered at the top of the document.
type Options struct {
	Port               int
	SocksPort          int
	AllowLAN           bool
	Mode               string
	LogLevel           string
	ExternalController string
}

type Group struct {
	Name string
	Type string // "select"

	Members []string // proxy names or AutoMember
}

// Document is the whole Clash configuration built for one conversion.
type Document struct {
	Options Options
	Proxies []Proxy
	Groups  []Group
	Rules   []string
}

// Validate checks that every group member names a proxy in the document or
// is AutoMember.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("nil document")
	}
	names := make(map[string]struct{}, len(d.Proxies))
	for _, p := range d.Proxies {
		names[p.Name] = struct{}{}
	}
	for _, g := range d.Groups {
		for _, m := range g.Members {
			if m == AutoMember {
				continue
			}
			if _, ok := names[m]; !ok {
				return fmt.Errorf("group %q: member %q is not a proxy", g.Name, m)
			}
		}
	}
	return nil
}
