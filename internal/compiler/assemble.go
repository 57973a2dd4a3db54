package compiler

import (
	"github.com/John-Robertt/sub2clash/internal/model"
)

// ProxyGroupName is the single select group every document routes through.
const ProxyGroupName = "PROXY"

// DefaultOptions is the global settings template.
func DefaultOptions() model.Options {
	return model.Options{
		Port:               7890,
		SocksPort:          7891,
		AllowLAN:           false,
		Mode:               "rule",
		LogLevel:           "info",
		ExternalController: "127.0.0.1:9090",
	}
}

// Assemble builds the document for proxies. Order is kept, duplicate names
// are not renamed, and an empty input yields a group holding only "auto".
func Assemble(proxies []model.Proxy) *model.Document {
	members := make([]string, 0, len(proxies)+1)
	for _, p := range proxies {
		members = append(members, p.Name)
	}
	members = append(members, model.AutoMember)

	return &model.Document{
		Options: DefaultOptions(),
		Proxies: append([]model.Proxy(nil), proxies...),
		Groups: []model.Group{
			{
				Name:    ProxyGroupName,
				Type:    "select",
				Members: members,
			},
		},
		Rules: []string{
			model.Rule{Type: "MATCH", Action: ProxyGroupName}.String(),
		},
	}
}
