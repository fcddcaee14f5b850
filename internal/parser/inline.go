package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/adocgest/internal/attrlist"
	"github.com/dgallion1/adocgest/internal/builder"
	"github.com/dgallion1/adocgest/internal/doctree"
	"github.com/dgallion1/adocgest/internal/render"
)

// inlineScanner turns inline markup into builder events. Quoted text,
// macros and links nest; everything else is buffered as plain text.
type inlineScanner struct {
	s *state
}

var (
	inlineAnchorRe = regexp.MustCompile(`^\[\[([A-Za-z_:][\w:.-]*)(?:,[ \t]*(.+?))?\]\]`)
	roleRe         = regexp.MustCompile(`^\[([^\[\]\n]+)\]`)
	xrefRe         = regexp.MustCompile(`^<<([^\s,>][^,>]*?)(?:,[ \t]*(.+?))?>>`)
	angleURLRe     = regexp.MustCompile(`^<((?:https?|ftp|irc)://[^>\s]+)>`)
	urlRe          = regexp.MustCompile(`^(?:https?|ftp|irc)://[^\s\[\]<>"]+`)
	macroRe        = regexp.MustCompile(`^(xref|link|mailto|footnote|footnoteref|anchor|image|pass):([^\s\[]*)\[`)
)

const escapable = "*_`#^~+[]<>{}\\'\"-.(:"

func (in *inlineScanner) run(text string) error {
	return in.emit(in.s.substituteAttributes(text))
}

func (in *inlineScanner) emit(text string) error {
	sc := &scan{in: in, b: in.s.b, text: text}
	return sc.all()
}

type scan struct {
	in    *inlineScanner
	b     *builder.Builder
	text  string
	plain strings.Builder
}

func (sc *scan) flush() {
	if sc.plain.Len() == 0 {
		return
	}
	sc.b.AppendText(unprotect(typography(sc.plain.String())))
	sc.plain.Reset()
}

func (sc *scan) all() error {
	text := sc.text
	for i := 0; i < len(text); {
		next, ok, err := sc.construct(i)
		if err != nil {
			return err
		}
		if ok {
			i = next
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == hardBreak {
			sc.flush()
			sc.b.AppendTag("br")
		} else {
			sc.plain.WriteString(text[i : i+size])
		}
		i += size
	}
	sc.flush()
	return nil
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (sc *scan) prev(i int) rune {
	if i == 0 {
		return 0
	}
	r, _ := utf8.DecodeLastRuneInString(sc.text[:i])
	return r
}

func (sc *scan) wordAt(i int) bool {
	if i >= len(sc.text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(sc.text[i:])
	return isWord(r)
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' }

// construct recognizes markup starting at i and returns the position after it.
func (sc *scan) construct(i int) (int, bool, error) {
	text := sc.text
	rest := text[i:]
	switch text[i] {
	case '\\':
		return sc.escape(i)
	case '+':
		return sc.plus(i)
	case '[':
		if m := inlineAnchorRe.FindStringSubmatch(rest); m != nil {
			sc.anchor(m[1], m[2])
			return i + len(m[0]), true, nil
		}
		if m := roleRe.FindStringSubmatch(rest); m != nil {
			j := i + len(m[0])
			if j < len(text) && strings.IndexByte("#*_`", text[j]) >= 0 {
				props, err := attrlist.Parse(m[1])
				if err == nil {
					props.PromoteArgumentsToClasses()
					if end, ok, err := sc.quote(j, props, true); ok || err != nil {
						return end, ok, err
					}
				}
			}
		}
	case '<':
		if m := xrefRe.FindStringSubmatch(rest); m != nil {
			return i + len(m[0]), true, sc.xref(m[1], m[2])
		}
		if m := angleURLRe.FindStringSubmatch(rest); m != nil {
			return i + len(m[0]), true, sc.link(m[1], "")
		}
	case '"', '\'':
		if strings.HasPrefix(rest[1:], "`") {
			return sc.curved(i)
		}
	case '*', '_', '`', '#', '^', '~':
		return sc.quote(i, nil, false)
	}

	if isWord(sc.prev(i)) {
		return 0, false, nil
	}
	if m := macroRe.FindStringSubmatchIndex(rest); m != nil {
		return sc.macro(i, rest[m[2]:m[3]], rest[m[4]:m[5]], i+m[1]-1)
	}
	if m := urlRe.FindString(rest); m != "" {
		return sc.url(i, m)
	}
	return 0, false, nil
}

func (sc *scan) escape(i int) (int, bool, error) {
	rest := sc.text[i+1:]
	if rest == "" {
		return 0, false, nil
	}
	// \https://example.org and \link:x[] stay literal
	if m := urlRe.FindString(rest); m != "" {
		scheme, after, _ := strings.Cut(m, ":")
		sc.plain.WriteString(scheme + protect(":") + after)
		return i + 1 + len(m), true, nil
	}
	if m := macroRe.FindString(rest); m != "" {
		sc.plain.WriteString(protect(m))
		return i + 1 + len(m), true, nil
	}
	if strings.IndexByte(escapable, rest[0]) < 0 {
		return 0, false, nil
	}
	// escaping a doubled mark covers both characters
	if len(rest) > 1 && rest[1] == rest[0] && strings.IndexByte("*_`#+", rest[0]) >= 0 {
		sc.plain.WriteString(protect(rest[:2]))
		return i + 3, true, nil
	}
	sc.plain.WriteString(protect(rest[:1]))
	return i + 2, true, nil
}

// plus handles +++raw+++, ++literal++ and +literal+.
func (sc *scan) plus(i int) (int, bool, error) {
	text := sc.text
	switch {
	case strings.HasPrefix(text[i:], "+++"):
		if end := strings.Index(text[i+3:], "+++"); end >= 0 {
			sc.passthrough(text[i+3 : i+3+end])
			return i + 3 + end + 3, true, nil
		}
	case strings.HasPrefix(text[i:], "++"):
		if end := strings.Index(text[i+2:], "++"); end > 0 {
			sc.plain.WriteString(protect(text[i+2 : i+2+end]))
			return i + 2 + end + 2, true, nil
		}
	default:
		if end, ok := sc.constrainedEnd(i, '+'); ok {
			sc.plain.WriteString(protect(text[i+1 : end]))
			return end + 1, true, nil
		}
	}
	return 0, false, nil
}

// constrainedEnd finds the closing mark of a constrained span opened at i:
// the opening mark may not follow a word character, the content may not
// start or end with a space and the closing mark may not precede one.
func (sc *scan) constrainedEnd(i int, c byte) (int, bool) {
	text := sc.text
	if p := sc.prev(i); isWord(p) || p == rune(c) {
		return 0, false
	}
	if i+1 >= len(text) || isSpace(text[i+1]) {
		return 0, false
	}
	for j := i + 2; j < len(text); j++ {
		if text[j] == c && !isSpace(text[j-1]) && !sc.wordAt(j+1) {
			return j, true
		}
		if text[j] == '\n' && j+1 < len(text) && text[j+1] == '\n' {
			break
		}
	}
	return 0, false
}

var quoteTags = map[byte]string{
	'*': "strong",
	'_': "em",
	'`': "code",
	'^': "sup",
	'~': "sub",
}

// quote emits strong, emphasis, monospace, mark, superscript and subscript
// spans. props come from a role prefix such as [.big]#text#.
func (sc *scan) quote(i int, props *attrlist.Properties, roled bool) (int, bool, error) {
	text := sc.text
	c := text[i]

	if c == '^' || c == '~' {
		end := strings.IndexByte(text[i+1:], c)
		if end <= 0 || strings.ContainsAny(text[i+1:i+1+end], " \t\n") {
			return 0, false, nil
		}
		return i + 1 + end + 1, true, sc.wrap(c, props, text[i+1:i+1+end])
	}

	if i+1 < len(text) && text[i+1] == c {
		pair := text[i : i+2]
		if end := strings.Index(text[i+2:], pair); end > 0 {
			return i + 2 + end + 2, true, sc.wrap(c, props, text[i+2:i+2+end])
		}
	}
	if roled && i+1 < len(text) {
		// the role bracket precedes the span, so the word boundary test
		// applies to the bracket instead
		if end := strings.IndexByte(text[i+1:], c); end > 0 {
			return i + 1 + end + 1, true, sc.wrap(c, props, text[i+1:i+1+end])
		}
	}
	if end, ok := sc.constrainedEnd(i, c); ok {
		return end + 1, true, sc.wrap(c, props, text[i+1:end])
	}
	return 0, false, nil
}

func (sc *scan) wrap(c byte, props *attrlist.Properties, content string) error {
	sc.flush()
	if props != nil {
		sc.b.SetProperties(props)
	}
	if c == '#' {
		sc.b.OpenElement(doctree.KindMark)
		if err := sc.in.emit(content); err != nil {
			return err
		}
		sc.b.CloseElement(doctree.KindMark)
		return nil
	}
	tag := quoteTags[c]
	sc.b.OpenTag(tag)
	if err := sc.in.emit(content); err != nil {
		return err
	}
	sc.b.CloseTag(tag)
	return nil
}

// curved handles "`double`" and '`single`' typographic quotes.
func (sc *scan) curved(i int) (int, bool, error) {
	text := sc.text
	q := text[i]
	closing := "`" + string(q)
	end := strings.Index(text[i+2:], closing)
	if end <= 0 {
		return 0, false, nil
	}
	open, shut := "“", "”"
	if q == '\'' {
		open, shut = "‘", "’"
	}
	sc.plain.WriteString(open)
	sc.flush()
	if err := sc.in.emit(text[i+2 : i+2+end]); err != nil {
		return 0, false, err
	}
	sc.plain.WriteString(shut)
	return i + 2 + end + 2, true, nil
}

// closeBracket returns the index of the "]" matching the "[" at open.
func closeBracket(text string, open int) int {
	depth := 0
	for j := open; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

func unescapeBrackets(s string) string {
	return strings.ReplaceAll(s, `\]`, "]")
}

func (sc *scan) macro(i int, name, target string, open int) (int, bool, error) {
	shut := closeBracket(sc.text, open)
	if shut < 0 {
		return 0, false, nil
	}
	attrs := unescapeBrackets(sc.text[open+1 : shut])
	end := shut + 1

	switch name {
	case "xref":
		if target == "" {
			return 0, false, nil
		}
		return end, true, sc.xref(target, attrs)
	case "link":
		if target == "" {
			return 0, false, nil
		}
		return end, true, sc.link(target, attrs)
	case "mailto":
		if target == "" {
			return 0, false, nil
		}
		return end, true, sc.link("mailto:"+target, attrs)
	case "footnote":
		return end, true, sc.footnote(target, attrs)
	case "footnoteref":
		id, text, _ := strings.Cut(attrs, ",")
		return end, true, sc.footnote(strings.TrimSpace(id), strings.TrimSpace(text))
	case "anchor":
		if target == "" {
			return 0, false, nil
		}
		sc.anchor(target, attrs)
		return end, true, nil
	case "image":
		if target == "" || strings.HasPrefix(target, ":") {
			return 0, false, nil
		}
		return end, true, sc.image(target, attrs)
	case "pass":
		sc.passthrough(attrs)
		return end, true, nil
	}
	return 0, false, nil
}

func (sc *scan) url(i int, target string) (int, bool, error) {
	end := i + len(target)
	if end < len(sc.text) && sc.text[end] == '[' {
		if shut := closeBracket(sc.text, end); shut > 0 {
			attrs := unescapeBrackets(sc.text[end+1 : shut])
			return shut + 1, true, sc.link(target, attrs)
		}
	}
	trimmed := strings.TrimRight(target, ".,;:!?")
	if strings.HasSuffix(trimmed, ")") && !strings.Contains(trimmed, "(") {
		trimmed = strings.TrimSuffix(trimmed, ")")
	}
	return i + len(trimmed), true, sc.link(trimmed, "")
}

func (sc *scan) passthrough(raw string) {
	sc.flush()
	sc.b.OpenElement(doctree.KindInlinePassthrough)
	sc.b.AppendText(raw)
	sc.b.CloseElement(doctree.KindInlinePassthrough)
}

func (sc *scan) anchor(id, reftext string) {
	sc.flush()
	p := attrlist.New()
	p.ID = id
	if reftext != "" {
		p.Set("reftext", reftext)
	}
	sc.b.SetProperties(p)
	sc.b.OpenElement(doctree.KindAnchor)
	sc.b.CloseElement(doctree.KindAnchor)
}

func (sc *scan) link(target, attrs string) error {
	sc.flush()
	text := attrs
	props := attrlist.New()
	if strings.Contains(attrs, "=") {
		if p, err := attrlist.ParseMacro(attrs); err == nil {
			props = p
			text = p.Argument(0)
		}
	}
	for _, role := range strings.Fields(props.Get("role")) {
		props.AddClass(role)
	}
	sc.b.SetProperties(props)
	sc.b.OpenElement(doctree.KindLink)
	sc.b.SetAttr("href", unprotect(target))
	if err := sc.in.emit(text); err != nil {
		return err
	}
	sc.b.CloseElement(doctree.KindLink)
	return nil
}

func (sc *scan) xref(target, text string) error {
	sc.flush()
	p := attrlist.New()
	p.Set(render.LinkToID, unprotect(target))
	sc.b.SetProperties(p)
	sc.b.OpenElement(doctree.KindLink)
	if err := sc.in.emit(text); err != nil {
		return err
	}
	sc.b.CloseElement(doctree.KindLink)
	return nil
}

func (sc *scan) footnote(name, text string) error {
	sc.flush()
	p := attrlist.New()
	if name != "" {
		p.Arguments = []string{name}
	}
	sc.b.SetProperties(p)
	sc.b.OpenElement(doctree.KindFootnote)
	if err := sc.in.emit(text); err != nil {
		return err
	}
	sc.b.CloseElement(doctree.KindFootnote)
	return nil
}

func (sc *scan) image(target, attrs string) error {
	sc.flush()
	p, err := attrlist.ParseMacro(attrs)
	if err != nil {
		return err
	}
	for _, role := range strings.Fields(p.Get("role")) {
		p.AddClass(role)
	}
	sc.b.SetProperties(p)
	sc.b.OpenElement(doctree.KindImage)
	sc.b.SetAttr("src", unprotect(target))
	sc.b.CloseElement(doctree.KindImage)
	return nil
}
