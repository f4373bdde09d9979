package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/spf13/pflag"
)

// linkTypeValue is a pflag.Value that only accepts known link types.
type linkTypeValue domain.LinkType

var _ pflag.Value = (*linkTypeValue)(nil)

func (v *linkTypeValue) String() string { return string(*v) }
func (v *linkTypeValue) Type() string   { return "linkType" }

func (v *linkTypeValue) Set(s string) error {
	t := domain.LinkType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return fmt.Errorf("must be one of %s", strings.Join(linkTypeNames(), ", "))
	}
	*v = linkTypeValue(t)
	return nil
}

func linkTypeNames() []string {
	names := make([]string, 0, len(domain.ValidLinkTypes))
	for t := range domain.ValidLinkTypes {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

// parentChildValue accepts "parent" or "child".
type parentChildValue domain.ParentChild

var _ pflag.Value = (*parentChildValue)(nil)

func (v *parentChildValue) String() string { return string(*v) }
func (v *parentChildValue) Type() string   { return "relation" }

func (v *parentChildValue) Set(s string) error {
	p := domain.ParentChild(strings.ToLower(strings.TrimSpace(s)))
	if p == domain.RelationNone || !p.IsValid() {
		return fmt.Errorf("must be %q or %q", domain.RelationParent, domain.RelationChild)
	}
	*v = parentChildValue(p)
	return nil
}

// formatValue selects a config output format.
type formatValue string

var _ pflag.Value = (*formatValue)(nil)

func (v *formatValue) String() string { return string(*v) }
func (v *formatValue) Type() string   { return "format" }

func (v *formatValue) Set(s string) error {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "table", "yaml", "yml", "toml", "json":
		*v = formatValue(s)
		return nil
	}
	return fmt.Errorf("must be one of table, yaml, toml, json")
}
