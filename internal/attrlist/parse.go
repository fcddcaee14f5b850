package attrlist

import (
	"fmt"
	"strings"
)

type entry struct {
	name   string
	value  string
	quoted bool
}

// Parse parses the text between the brackets of a block attribute line.
// The first positional entry may use the style#id.role%option shorthand.
func Parse(s string) (*Properties, error) {
	return parse(s, true)
}

// ParseMacro parses the attribute list of an inline or block macro, where
// the first positional entry is taken literally (alt text, link text).
func ParseMacro(s string) (*Properties, error) {
	return parse(s, false)
}

func parse(s string, shorthand bool) (*Properties, error) {
	p := New()
	if strings.TrimSpace(s) == "" {
		return p, nil
	}
	entries, err := split(s)
	if err != nil {
		return nil, err
	}

	positional := 0
	for _, e := range entries {
		if e.name != "" {
			p.applyNamed(e.name, e.value)
			continue
		}
		if shorthand && positional == 0 && !e.quoted && isShorthand(e.value) {
			p.applyShorthand(e.value)
		} else {
			p.Arguments = append(p.Arguments, e.value)
		}
		positional++
	}
	for len(p.Arguments) > 0 && p.Arguments[len(p.Arguments)-1] == "" {
		p.Arguments = p.Arguments[:len(p.Arguments)-1]
	}
	if len(p.Arguments) == 0 {
		p.Arguments = nil
	}
	return p, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) *Properties {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Properties) applyNamed(name, value string) {
	switch name {
	case "id":
		p.ID = value
	case "role":
		for _, r := range strings.Fields(value) {
			p.AddClass(r)
		}
	case "options", "opts":
		for _, o := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' }) {
			p.AddOption(o)
		}
	default:
		p.Set(name, value)
	}
}

// applyShorthand handles style#id.role%option in the first positional slot.
func (p *Properties) applyShorthand(s string) {
	marker := byte(0)
	start := 0
	flush := func(end int) {
		v := s[start:end]
		switch marker {
		case 0:
			p.Arguments = append(p.Arguments, v)
		case '#':
			if v != "" {
				p.ID = v
			}
		case '.':
			p.AddClass(v)
		case '%':
			p.AddOption(v)
		}
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '#', '.', '%':
			flush(i)
			marker = s[i]
			start = i + 1
		}
	}
	flush(len(s))
}

func isShorthand(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t") {
		return false
	}
	return strings.ContainsAny(s, "#.%")
}

func split(s string) ([]entry, error) {
	var out []entry
	i := 0
	for {
		i = skipSpaces(s, i)
		var e entry
		if n, next, ok := readName(s, i); ok {
			e.name = n
			i = skipSpaces(s, next)
		}
		v, quoted, next, err := readValue(s, i)
		if err != nil {
			return nil, err
		}
		e.value, e.quoted = v, quoted
		i = next
		out = append(out, e)
		if i >= len(s) {
			break
		}
		i++ // comma
		if i >= len(s) {
			break
		}
	}
	return out, nil
}

func readName(s string, i int) (string, int, bool) {
	j := i
	for j < len(s) && isNameByte(s[j]) {
		j++
	}
	if j == i {
		return "", i, false
	}
	k := skipSpaces(s, j)
	if k < len(s) && s[k] == '=' {
		return s[i:j], k + 1, true
	}
	return "", i, false
}

func readValue(s string, i int) (string, bool, int, error) {
	if i < len(s) && (s[i] == '"' || s[i] == '\'') {
		q := s[i]
		var b strings.Builder
		j := i + 1
		for ; j < len(s); j++ {
			c := s[j]
			if c == '\\' && j+1 < len(s) && s[j+1] == q {
				b.WriteByte(q)
				j++
				continue
			}
			if c == q {
				break
			}
			b.WriteByte(c)
		}
		if j >= len(s) {
			return "", false, 0, fmt.Errorf("%w: unterminated %c quote at offset %d", ErrSyntax, q, i)
		}
		j++
		for j < len(s) && s[j] != ',' {
			j++
		}
		return b.String(), true, j, nil
	}
	j := i
	for j < len(s) && s[j] != ',' {
		j++
	}
	return strings.TrimSpace(s[i:j]), false, j, nil
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func isNameByte(c byte) bool {
	return c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
