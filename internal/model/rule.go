package model

import "fmt"

type Rule struct {
	Type   string // e.g. "DOMAIN-SUFFIX", "MATCH"
	Value  string // empty for MATCH
	Action string // group name or DIRECT/REJECT
}

// String renders the rule in Clash "TYPE,VALUE,ACTION" form.
func (r Rule) String() string {
	if r.Type == "MATCH" {
		return fmt.Sprintf("MATCH,%s", r.Action)
	}
	return fmt.Sprintf("%s,%s,%s", r.Type, r.Value, r.Action)
}
