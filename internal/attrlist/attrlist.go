// Package attrlist parses AsciiDoc attribute lists such as
// `source%nowrap,java` or `#goals.incremental, role="lead"` into Properties.
package attrlist

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax is returned when an attribute list cannot be tokenized,
// for example when a quoted value is never closed.
var ErrSyntax = errors.New("attribute list syntax error")

// Properties is the parsed form of one attribute list. It is attached to a
// node when the node is opened and consumed once when the node is rendered.
type Properties struct {
	ID        string
	Classes   []string
	Options   []string
	Arguments []string

	named map[string]string
	order []string
}

// New returns empty Properties.
func New() *Properties {
	return &Properties{named: make(map[string]string)}
}

// Argument returns positional argument i, or "" when absent.
func (p *Properties) Argument(i int) string {
	if p == nil || i < 0 || i >= len(p.Arguments) {
		return ""
	}
	return p.Arguments[i]
}

// HasArgument reports whether any positional argument equals v.
func (p *Properties) HasArgument(v string) bool {
	if p == nil {
		return false
	}
	for _, a := range p.Arguments {
		if a == v {
			return true
		}
	}
	return false
}

// HasOption reports whether option name was set with %name or options=.
func (p *Properties) HasOption(name string) bool {
	if p == nil {
		return false
	}
	return contains(p.Options, name)
}

// HasClass reports whether role name is present.
func (p *Properties) HasClass(name string) bool {
	if p == nil {
		return false
	}
	return contains(p.Classes, name)
}

// AddClass appends a role unless already present.
func (p *Properties) AddClass(name string) {
	if name != "" && !contains(p.Classes, name) {
		p.Classes = append(p.Classes, name)
	}
}

// AddOption appends an option unless already present.
func (p *Properties) AddOption(name string) {
	if name != "" && !contains(p.Options, name) {
		p.Options = append(p.Options, name)
	}
}

// Get returns a named attribute or "".
func (p *Properties) Get(name string) string {
	if p == nil {
		return ""
	}
	return p.named[name]
}

// Lookup returns a named attribute and whether it was set.
func (p *Properties) Lookup(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.named[name]
	return v, ok
}

// Has reports whether a named attribute was set.
func (p *Properties) Has(name string) bool {
	_, ok := p.Lookup(name)
	return ok
}

// Set stores a named attribute, keeping first-insertion order.
func (p *Properties) Set(name, value string) {
	if p.named == nil {
		p.named = make(map[string]string)
	}
	if _, ok := p.named[name]; !ok {
		p.order = append(p.order, name)
	}
	p.named[name] = value
}

// Delete removes a named attribute.
func (p *Properties) Delete(name string) {
	if p == nil {
		return
	}
	if _, ok := p.named[name]; !ok {
		return
	}
	delete(p.named, name)
	for i, n := range p.order {
		if n == name {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Names returns named attribute keys in insertion order.
func (p *Properties) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Merge copies everything from other into p. Values in other win.
func (p *Properties) Merge(other *Properties) {
	if other == nil {
		return
	}
	if other.ID != "" {
		p.ID = other.ID
	}
	for _, c := range other.Classes {
		p.AddClass(c)
	}
	for _, o := range other.Options {
		p.AddOption(o)
	}
	if len(other.Arguments) > 0 {
		p.Arguments = append([]string(nil), other.Arguments...)
	}
	for _, n := range other.order {
		p.Set(n, other.named[n])
	}
}

// PromoteArgumentsToClasses turns every non-empty positional argument into a
// role, leaving the arguments in place.
func (p *Properties) PromoteArgumentsToClasses() {
	for _, a := range p.Arguments {
		if a != "" && !strings.ContainsAny(a, " \t") {
			p.AddClass(a)
		}
	}
}

// Clone returns a deep copy.
func (p *Properties) Clone() *Properties {
	if p == nil {
		return nil
	}
	c := New()
	c.Merge(p)
	return c
}

// String renders a stable, human readable form used in logs and tests.
func (p *Properties) String() string {
	if p == nil {
		return "{}"
	}
	var parts []string
	if p.ID != "" {
		parts = append(parts, "id="+p.ID)
	}
	if len(p.Classes) > 0 {
		parts = append(parts, "class="+strings.Join(p.Classes, " "))
	}
	if len(p.Options) > 0 {
		parts = append(parts, "options="+strings.Join(p.Options, ","))
	}
	if len(p.Arguments) > 0 {
		parts = append(parts, fmt.Sprintf("arguments=%q", p.Arguments))
	}
	for _, n := range p.order {
		parts = append(parts, fmt.Sprintf("%s=%q", n, p.named[n]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
