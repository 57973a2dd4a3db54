package render

import (
	"strconv"
	"strings"

	"github.com/John-Robertt/sub2clash/internal/model"
)

// ContentType is the media type of Clash output.
const ContentType = "text/yaml;charset=UTF-8"

type optionLine struct {
	key   string
	value func(model.Options) string
}

// optionLines fixes both the rendered key names and their order.
var optionLines = []optionLine{
	{"port", func(o model.Options) string { return strconv.Itoa(o.Port) }},
	{"socks-port", func(o model.Options) string { return strconv.Itoa(o.SocksPort) }},
	{"allow-lan", func(o model.Options) string { return strconv.FormatBool(o.AllowLAN) }},
	{"mode", func(o model.Options) string { return o.Mode }},
	{"log-level", func(o model.Options) string { return o.LogLevel }},
	{"external-controller", func(o model.Options) string { return o.ExternalController }},
}

// Clash renders doc as a Clash YAML document.
//
// Values are written verbatim: names or passwords containing YAML syntax
// (": ", leading quotes, '#') produce a document the client may misread.
func Clash(doc *model.Document) string {
	if doc == nil {
		return ""
	}
	lines := make([]string, 0, len(optionLines)+len(doc.Proxies)*9+len(doc.Groups)*6+len(doc.Rules)+4)

	for _, ol := range optionLines {
		lines = append(lines, ol.key+": "+ol.value(doc.Options))
	}
	lines = append(lines, "")

	lines = append(lines, "proxies:")
	for _, p := range doc.Proxies {
		lines = appendProxy(lines, p)
		lines = append(lines, "")
	}

	lines = append(lines, "proxy-groups:")
	for _, g := range doc.Groups {
		lines = append(lines, "  - name: "+g.Name)
		lines = append(lines, "    type: "+g.Type)
		lines = append(lines, "    proxies:")
		for _, m := range g.Members {
			lines = append(lines, "      - "+m)
		}
		lines = append(lines, "")
	}

	lines = append(lines, "rules:")
	for _, r := range doc.Rules {
		lines = append(lines, "  - "+r)
	}

	return strings.Join(lines, "\n")
}

func appendProxy(lines []string, p model.Proxy) []string {
	lines = append(lines, "  - name: "+p.Name)
	lines = append(lines, "    type: "+p.Type())
	lines = append(lines, "    server: "+p.Server)
	lines = append(lines, "    port: "+strconv.Itoa(p.Port))
	switch p.Kind {
	case model.KindShadowsocks:
		var password string
		if p.SS != nil {
			password = p.SS.Password
		}
		lines = append(lines, "    cipher: "+p.Cipher())
		lines = append(lines, "    password: "+password)
	case model.KindVMess:
		var id string
		var aid int
		if p.VMess != nil {
			id, aid = p.VMess.UUID, p.VMess.AlterID
		}
		lines = append(lines, "    uuid: "+id)
		lines = append(lines, "    alterId: "+strconv.Itoa(aid))
		lines = append(lines, "    cipher: "+p.Cipher())
	}
	lines = append(lines, "    udp: "+strconv.FormatBool(p.UDP()))
	return lines
}
