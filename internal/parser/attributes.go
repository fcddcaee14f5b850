package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/adocgest/internal/variables"
)

// Characters produced by built-in attributes are carried through inline
// scanning as private-use sentinels so they are never read as markup.
const sentinelBase = 0xE000

// hardBreak marks a forced line break in paragraph text.
const hardBreak = '\uE100'

var builtinAttributes = map[string]string{
	"empty":          "",
	"sp":             " ",
	"nbsp":           "\u00a0",
	"zwsp":           "\u200b",
	"wj":             "\u2060",
	"apos":           "'",
	"quot":           `"`,
	"lsquo":          "‘",
	"rsquo":          "’",
	"ldquo":          "“",
	"rdquo":          "”",
	"deg":            "°",
	"plus":           "+",
	"brvbar":         "¦",
	"vbar":           "|",
	"amp":            "&",
	"lt":             "<",
	"gt":             ">",
	"startsb":        "[",
	"endsb":          "]",
	"caret":          "^",
	"asterisk":       "*",
	"tilde":          "~",
	"backslash":      `\`,
	"backtick":       "`",
	"two-colons":     "::",
	"two-semicolons": ";;",
	"cpp":            "C++",
	"pp":             "++",
}

// protect replaces ASCII punctuation with sentinels.
func protect(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r) {
			b.WriteRune(sentinelBase + r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// unprotect turns sentinels back into the characters they stand for and
// drops hard break markers.
func unprotect(s string) string {
	if !strings.ContainsFunc(s, isSentinel) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == hardBreak:
		case r >= sentinelBase && r < sentinelBase+0x80:
			b.WriteRune(r - sentinelBase)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isSentinel(r rune) bool {
	return r == hardBreak || (r >= sentinelBase && r < sentinelBase+0x80)
}

var (
	attrRefRe  = regexp.MustCompile(`\\?\{([\w-]+)(?::([\w-]+))?\}`)
	passSpanRe = regexp.MustCompile(`(?s)\+\+\+.*?\+\+\+|pass:\[.*?\]|\+\+.*?\+\+`)
)

// substituteAttributes replaces {name} references outside pass-through
// spans. Unknown names are left as written; a leading backslash escapes the
// reference.
func (s *state) substituteAttributes(text string) string {
	if !strings.Contains(text, "{") {
		return text
	}
	var b strings.Builder
	last := 0
	for _, span := range passSpanRe.FindAllStringIndex(text, -1) {
		b.WriteString(s.replaceRefs(text[last:span[0]]))
		b.WriteString(text[span[0]:span[1]])
		last = span[1]
	}
	b.WriteString(s.replaceRefs(text[last:]))
	return b.String()
}

func (s *state) replaceRefs(text string) string {
	return attrRefRe.ReplaceAllStringFunc(text, func(ref string) string {
		if strings.HasPrefix(ref, `\`) {
			return protect(ref[1:])
		}
		m := attrRefRe.FindStringSubmatch(ref)
		name, arg := m[1], m[2]
		switch name {
		case "counter", "counter2":
			if arg == "" {
				return ref
			}
			n := s.vars.Next(variables.CounterPrefix+arg, 1)
			if name == "counter2" {
				return ""
			}
			return strconv.Itoa(n)
		}
		if arg != "" {
			return ref
		}
		if v, ok := s.vars.Lookup(name); ok {
			return v
		}
		if v, ok := builtinAttributes[name]; ok {
			return protect(v)
		}
		return ref
	})
}

var (
	replacer = strings.NewReplacer(
		"(C)", "©",
		"(R)", "®",
		"(TM)", "™",
		" -- ", "\u2009—\u2009",
		"...", "…",
		"<=", "⇐",
		"=>", "⇒",
		"<-", "←",
		"->", "→",
	)
	emDashRe     = regexp.MustCompile(`(\w)--(\w)`)
	apostropheRe = regexp.MustCompile(`(\p{L})'(\p{L})`)
)

// typography applies the typographic replacements to plain text.
func typography(s string) string {
	s = replacer.Replace(s)
	s = emDashRe.ReplaceAllString(s, "${1}—${2}")
	return apostropheRe.ReplaceAllString(s, "${1}’${2}")
}
