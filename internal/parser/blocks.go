package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/adocgest/internal/attrlist"
	"github.com/dgallion1/adocgest/internal/doctree"
	"github.com/dgallion1/adocgest/internal/render"
)

var (
	attrEntryRe   = regexp.MustCompile(`^:(!?)(\w[\w-]*)(!?):(?:[ \t]+(.*?))?[ \t]*$`)
	sectionRe     = regexp.MustCompile(`^(={1,6})[ \t]+(\S.*?)(?:[ \t]+=+)?[ \t]*$`)
	blockAnchorRe = regexp.MustCompile(`^\[\[([A-Za-z_:][\w:.-]*)(?:,[ \t]*(.+?))?\]\]$`)
	blockAttrRe   = regexp.MustCompile(`^\[([^\[].*)?\]$`)
	blockTitleRe  = regexp.MustCompile(`^\.([^.\s].*)$`)
	blockMacroRe  = regexp.MustCompile(`^(image|video)::([^\[\s]*)\[(.*)\]$`)
	tocMacroRe    = regexp.MustCompile(`^toc::\[(.*)\]$`)
	admonitionRe  = regexp.MustCompile(`^(NOTE|TIP|IMPORTANT|WARNING|CAUTION):[ \t]+(.*)$`)
	authorRe      = regexp.MustCompile(`^([^<:]+?)(?:[ \t]+<([^>]+)>)?[ \t]*$`)
	revisionRe    = regexp.MustCompile(`^v?(\d[^,:]*)(?:,[ \t]*([^:]+))?(?::[ \t]*(.*))?$`)
)

var admonitionStyles = map[string]bool{
	"NOTE": true, "TIP": true, "IMPORTANT": true, "WARNING": true, "CAUTION": true,
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "//") && !strings.HasPrefix(line, "////")
}

// delimiterOf reports whether line opens a delimited block and returns the
// line that closes it.
func delimiterOf(line string) (string, bool) {
	line = strings.TrimRight(line, " \t")
	if line == "--" {
		return line, true
	}
	if strings.HasPrefix(line, "```") {
		return "```", true
	}
	if len(line) >= 4 && (line[0] == '|' || line[0] == ',' || line[0] == ':') && strings.Trim(line[1:], "=") == "" {
		return line, true
	}
	if len(line) < 4 || !strings.ContainsRune("-.=*_+/", rune(line[0])) {
		return "", false
	}
	if strings.Trim(line, line[:1]) != "" {
		return "", false
	}
	return line, true
}

// header consumes the document header: the title, author and revision lines
// and attribute entries up to the first blank line.
func (s *state) header(r *lineReader) error {
lead:
	for !r.done() {
		l := r.peek()
		switch {
		case strings.TrimSpace(l) == "" || isComment(l):
			r.next()
		case attrEntryRe.MatchString(l):
			r.next()
			s.attributeEntry(l)
		default:
			break lead
		}
	}
	if r.done() || !strings.HasPrefix(r.peek(), "= ") {
		return nil
	}
	title := strings.TrimSpace(strings.TrimPrefix(r.next(), "= "))

	meta := 0
	for !r.done() && strings.TrimSpace(r.peek()) != "" {
		l := r.next()
		switch {
		case isComment(l):
		case attrEntryRe.MatchString(l):
			s.attributeEntry(l)
		case meta == 0:
			meta++
			if m := authorRe.FindStringSubmatch(l); m != nil {
				s.setAttr("author", strings.TrimSpace(m[1]))
				if m[2] != "" {
					s.setAttr("email", m[2])
				}
			}
		case meta == 1:
			meta++
			if m := revisionRe.FindStringSubmatch(l); m != nil {
				s.setAttr("revnumber", strings.TrimSpace(m[1]))
				if m[2] != "" {
					s.setAttr("revdate", strings.TrimSpace(m[2]))
				}
				if m[3] != "" {
					s.setAttr("revremark", strings.TrimSpace(m[3]))
				}
			}
		}
	}

	s.setAttr("doctitle", title)
	if s.vars.Has("notitle") {
		return nil
	}
	s.b.OpenElement(doctree.KindSection)
	s.b.SetAttr("level", "1")
	s.b.SetAttr(render.DocumentTitleAttr, "")
	s.b.OpenElement(doctree.KindHeading)
	s.b.SetAttr("level", "1")
	if err := s.inl.run(title); err != nil {
		return err
	}
	s.b.CloseElement(doctree.KindHeading)
	return nil
}

// setAttr stores a document attribute unless the caller protected it.
func (s *state) setAttr(name, value string) {
	if s.p.opts.Protected[name] {
		return
	}
	s.vars.Set(name, value)
}

func (s *state) attributeEntry(line string) {
	m := attrEntryRe.FindStringSubmatch(line)
	if m == nil {
		return
	}
	name := m[2]
	if s.p.opts.Protected[name] {
		return
	}
	if m[1] == "!" || m[3] == "!" {
		s.vars.Unset(name)
		return
	}
	s.vars.Set(name, s.substituteAttributes(m[4]))
}

// blocks parses until r is exhausted. Lists opened here are scoped to the
// cursor at entry, or to the whole body when that is a section.
func (s *state) blocks(r *lineReader) error {
	scope := s.b.Cursor()
	if isSectionScope(s.t.Kind(scope)) {
		scope = s.t.Body()
	}
	for !r.done() {
		if _, err := s.block(r, scope); err != nil {
			return err
		}
	}
	s.closeLists(scope)
	return nil
}

// block consumes one construct at the reader position. It reports whether
// the construct produced content, as opposed to metadata for the next block.
func (s *state) block(r *lineReader, scope doctree.NodeID) (bool, error) {
	line := r.peek()
	trimmed := strings.TrimRight(line, " \t")

	switch {
	case trimmed == "" || strings.TrimSpace(line) == "":
		r.next()
		return false, nil
	case isComment(line):
		r.next()
		return false, nil
	case attrEntryRe.MatchString(line):
		r.next()
		s.attributeEntry(line)
		return false, nil
	}

	if m := blockAnchorRe.FindStringSubmatch(trimmed); m != nil {
		r.next()
		p := s.b.Properties()
		p.ID = m[1]
		if m[2] != "" {
			p.Set("reftext", m[2])
		}
		return false, nil
	}
	if m := blockAttrRe.FindStringSubmatch(trimmed); m != nil {
		n := r.lineNo()
		r.next()
		props, err := attrlist.Parse(m[1])
		if err != nil {
			return false, fmt.Errorf("line %d: %w", n, err)
		}
		for _, role := range strings.Fields(props.Get("role")) {
			props.AddClass(role)
		}
		s.b.Properties().Merge(props)
		return false, nil
	}
	if m := blockTitleRe.FindStringSubmatch(trimmed); m != nil {
		r.next()
		s.title, s.hasTitle = m[1], true
		return false, nil
	}
	if m := sectionRe.FindStringSubmatch(trimmed); m != nil {
		r.next()
		return true, s.section(len(m[1]), m[2], scope)
	}
	if _, ok := delimiterOf(line); ok {
		return true, s.delimited(r)
	}
	if m := blockMacroRe.FindStringSubmatch(trimmed); m != nil {
		r.next()
		return true, s.blockMacro(m[1], m[2], m[3])
	}
	if tocMacroRe.MatchString(trimmed) {
		r.next()
		s.b.OpenElement(doctree.KindTOC)
		s.b.CloseElement(doctree.KindTOC)
		return true, nil
	}
	switch trimmed {
	case "'''", "---", "***":
		r.next()
		s.hasTitle = false
		s.b.AppendTag("hr")
		return true, nil
	case "<<<":
		r.next()
		s.b.OpenTag("div")
		s.b.SetAttr("style", "page-break-after: always;")
		s.b.CloseTag("div")
		return true, nil
	}
	if _, ok := matchListItem(line); ok {
		return true, s.list(r, scope)
	}
	if (line[0] == ' ' || line[0] == '\t') && s.listDepth == 0 {
		return true, s.literalParagraph(r)
	}
	return true, s.paragraph(r)
}

// style returns the first positional attribute of the pending properties.
func (s *state) style() string {
	if !s.b.HasProperties() {
		return ""
	}
	return s.b.Properties().Argument(0)
}

func (s *state) dropPending() {
	s.b.SetProperties(nil)
	s.hasTitle = false
}

// open starts a block and emits the pending title as its first child. A
// titled block with an id uses the title as its cross reference text.
func (s *state) open(k doctree.Kind, titleType string) (doctree.NodeID, error) {
	if s.hasTitle && s.b.HasProperties() {
		if p := s.b.Properties(); p.ID != "" && !p.Has("title") {
			p.Set("title", s.title)
		}
	}
	id := s.b.OpenElement(k)
	return id, s.emitTitle(id, titleType)
}

func (s *state) emitTitle(block doctree.NodeID, titleType string) error {
	if !s.hasTitle {
		return nil
	}
	title := s.title
	s.hasTitle = false
	s.b.OpenElement(doctree.KindTitle)
	if titleType != "" {
		s.b.SetAttr("type", titleType)
	}
	if p := s.t.Props(block); p != nil {
		if caption, ok := p.Lookup("caption"); ok {
			s.b.SetAttr("caption", caption)
		}
	}
	if err := s.inl.run(title); err != nil {
		return err
	}
	s.b.CloseElement(doctree.KindTitle)
	return nil
}

// endBlock closes the current leaf block and resumes in its parent.
func (s *state) endBlock() {
	s.b.CloseBlockElement()
	s.b.ResumeBlockParent()
}

func isSectionScope(k doctree.Kind) bool {
	return k == doctree.KindBody || k == doctree.KindSection
}

func (s *state) section(level int, text string, scope doctree.NodeID) error {
	s.closeLists(scope)
	s.hasTitle = false
	style := s.style()

	// Split the pending properties: the id belongs to the heading, the rest
	// to the section.
	props := s.b.Properties()
	hp := attrlist.New()
	hp.ID, props.ID = props.ID, ""
	if rt, ok := props.Lookup("reftext"); ok {
		hp.Set("reftext", rt)
	}

	if style == "discrete" || style == "float" || !isSectionScope(s.t.Kind(scope)) {
		sec := s.b.OpenElement(doctree.KindSection)
		s.b.SetAttr("level", "0")
		s.b.SetProperties(hp)
		h := s.b.OpenElement(doctree.KindHeading)
		s.b.SetAttr("level", strconv.Itoa(level))
		s.t.AddClass(h, "discrete")
		s.t.AddClass(h, s.t.Classes(sec)...)
		if err := s.inl.run(text); err != nil {
			return err
		}
		s.b.CloseElement(doctree.KindSection)
		return nil
	}

	if level == 1 {
		s.b.CloseSections(1)
		s.b.SetProperties(hp)
		s.b.OpenElement(doctree.KindHeading)
		s.b.SetAttr("level", "1")
		if err := s.inl.run(text); err != nil {
			return err
		}
		s.b.CloseElement(doctree.KindHeading)
		return nil
	}

	s.b.CloseSections(level)
	s.b.OpenElement(doctree.KindSection)
	s.b.SetAttr("level", strconv.Itoa(level))
	s.b.SetProperties(hp)
	s.b.OpenElement(doctree.KindHeading)
	s.b.SetAttr("level", strconv.Itoa(level))
	if s.vars.Has("sectnums") && level-1 <= s.vars.Int("sectnumlevels", 3) {
		s.b.SetAttr("sectnum", s.b.NextSectionNumber(level-1))
	}
	if err := s.inl.run(text); err != nil {
		return err
	}
	s.b.CloseElement(doctree.KindHeading)
	return nil
}

// readParagraph collects lines up to a blank line or a line that starts a
// different construct.
func (s *state) readParagraph(r *lineReader) []string {
	var lines []string
	for !r.done() {
		l := r.peek()
		if strings.TrimSpace(l) == "" {
			break
		}
		if isComment(l) {
			r.next()
			continue
		}
		if len(lines) > 0 {
			if _, ok := delimiterOf(l); ok {
				break
			}
			if s.listDepth > 0 {
				if _, ok := matchListItem(l); ok || strings.TrimSpace(l) == "+" {
					break
				}
			}
		}
		lines = append(lines, l)
		r.next()
	}
	return lines
}

func (s *state) literalParagraph(r *lineReader) error {
	var lines []string
	for !r.done() && strings.TrimSpace(r.peek()) != "" {
		lines = append(lines, r.next())
	}
	return s.verbatim(doctree.KindLiteralBlock, dedent(lines), false, "")
}

func dedent(lines []string) []string {
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= indent && indent > 0 {
			out[i] = l[indent:]
		} else {
			out[i] = strings.TrimLeft(l, " \t")
		}
	}
	return out
}

func (s *state) paragraph(r *lineReader) error {
	lines := s.readParagraph(r)
	if len(lines) == 0 {
		r.next()
		return nil
	}
	style := s.style()
	if m := admonitionRe.FindStringSubmatch(lines[0]); m != nil && style == "" {
		lines[0] = m[2]
		style = m[1]
	}
	text := strings.Join(lines, "\n")

	switch {
	case style == "literal":
		return s.verbatim(doctree.KindLiteralBlock, lines, false, "")
	case style == "listing" || style == "source":
		return s.verbatim(doctree.KindListingBlock, lines, true, "Listing")
	case style == "pass":
		return s.verbatim(doctree.KindPassthroughBlock, lines, false, "")
	case style == "markdown":
		return s.verbatim(doctree.KindMarkdownBlock, lines, false, "")
	case style == "quote":
		return s.inlineBlock(doctree.KindQuoteBlock, text, "")
	case style == "verse":
		return s.inlineBlock(doctree.KindVerseBlock, text, "")
	case style == "sidebar":
		return s.inlineBlock(doctree.KindSidebarBlock, text, "")
	case style == "example":
		return s.inlineBlock(doctree.KindExampleBlock, text, "Example")
	case admonitionStyles[style]:
		if _, err := s.open(doctree.KindAdmonitionBlock, ""); err != nil {
			return err
		}
		s.b.SetAttr("type", strings.ToLower(style))
		if err := s.inl.run(s.hardBreaks(text)); err != nil {
			return err
		}
		s.endBlock()
		return nil
	}
	return s.inlineBlock(doctree.KindParagraph, text, "")
}

// hardBreaks marks the line breaks that become <br>: lines ending in " +",
// or every line break with the hardbreaks option or attribute.
func (s *state) hardBreaks(text string) string {
	all := s.vars.Has("hardbreaks")
	if s.b.HasProperties() && s.b.Properties().HasOption("hardbreaks") {
		all = true
	}
	lines := strings.Split(text, "\n")
	for i := range lines {
		last := i == len(lines)-1
		switch {
		case strings.HasSuffix(lines[i], " +"):
			lines[i] = strings.TrimSuffix(lines[i], " +") + string(hardBreak)
		case all && !last:
			lines[i] += string(hardBreak)
		}
	}
	return strings.Join(lines, "\n")
}

func (s *state) inlineBlock(k doctree.Kind, text string, titleType string) error {
	text = s.hardBreaks(text)
	if _, err := s.open(k, titleType); err != nil {
		return err
	}
	if err := s.inl.run(text); err != nil {
		return err
	}
	s.endBlock()
	return nil
}

var calloutRe = regexp.MustCompile(`(?:[ \t]*(?://|#|--|;;)?[ \t]*<(\d+)>)+[ \t]*$`)
var calloutNumRe = regexp.MustCompile(`<(\d+)>`)

// verbatim emits lines as the raw text of a leaf block. Listing callout
// markers become conum elements.
func (s *state) verbatim(k doctree.Kind, lines []string, callouts bool, titleType string) error {
	if _, err := s.open(k, titleType); err != nil {
		return err
	}
	for i, l := range lines {
		if i > 0 {
			s.b.AppendText("\n")
		}
		loc := calloutRe.FindStringIndex(l)
		if !callouts || loc == nil {
			s.b.AppendText(l)
			continue
		}
		s.b.AppendText(l[:loc[0]])
		for j, m := range calloutNumRe.FindAllStringSubmatch(l[loc[0]:], -1) {
			if j > 0 || loc[0] > 0 {
				s.b.AppendText(" ")
			}
			p := attrlist.New()
			p.AddClass("conum")
			s.b.SetProperties(p)
			s.b.OpenTag("b")
			s.b.AppendText("(" + m[1] + ")")
			s.b.CloseTag("b")
		}
	}
	s.endBlock()
	return nil
}

func (s *state) delimited(r *lineReader) error {
	open := strings.TrimRight(r.next(), " \t")
	delim, _ := delimiterOf(open)
	var inner []string
	for !r.done() {
		l := r.next()
		if strings.TrimRight(l, " \t") == delim {
			break
		}
		inner = append(inner, l)
	}

	style := s.style()
	switch delim[0] {
	case '/':
		s.dropPending()
		return nil
	case '|', ',', ':':
		return s.table(delim[0], inner)
	case '`':
		p := s.b.Properties()
		lang := strings.TrimSpace(strings.TrimPrefix(open, "```"))
		p.Arguments = []string{"source"}
		if lang != "" {
			p.Arguments = append(p.Arguments, lang)
		}
		return s.verbatim(doctree.KindListingBlock, inner, true, "Listing")
	}

	if delim == "--" {
		return s.openBlock(style, inner)
	}
	switch delim[0] {
	case '-':
		switch style {
		case "literal":
			return s.verbatim(doctree.KindLiteralBlock, inner, false, "")
		case "markdown":
			return s.verbatim(doctree.KindMarkdownBlock, inner, false, "")
		case "pass":
			return s.verbatim(doctree.KindPassthroughBlock, inner, false, "")
		default:
			return s.verbatim(doctree.KindListingBlock, inner, true, "Listing")
		}
	case '.':
		switch style {
		case "listing", "source":
			return s.verbatim(doctree.KindListingBlock, inner, true, "Listing")
		default:
			return s.verbatim(doctree.KindLiteralBlock, inner, false, "")
		}
	case '+':
		if style == "markdown" {
			return s.verbatim(doctree.KindMarkdownBlock, inner, false, "")
		}
		return s.verbatim(doctree.KindPassthroughBlock, inner, false, "")
	case '=':
		if admonitionStyles[style] {
			return s.admonition(style, inner)
		}
		return s.compound(doctree.KindExampleBlock, inner, "Example")
	case '*':
		return s.compound(doctree.KindSidebarBlock, inner, "")
	case '_':
		if style == "verse" {
			return s.inlineBlock(doctree.KindVerseBlock, strings.Join(inner, "\n"), "")
		}
		return s.compound(doctree.KindQuoteBlock, inner, "")
	}
	return nil
}

func (s *state) openBlock(style string, inner []string) error {
	switch style {
	case "source", "listing":
		return s.verbatim(doctree.KindListingBlock, inner, true, "Listing")
	case "literal":
		return s.verbatim(doctree.KindLiteralBlock, inner, false, "")
	case "pass":
		return s.verbatim(doctree.KindPassthroughBlock, inner, false, "")
	case "markdown":
		return s.verbatim(doctree.KindMarkdownBlock, inner, false, "")
	case "verse":
		return s.inlineBlock(doctree.KindVerseBlock, strings.Join(inner, "\n"), "")
	case "quote":
		return s.compound(doctree.KindQuoteBlock, inner, "")
	case "sidebar":
		return s.compound(doctree.KindSidebarBlock, inner, "")
	case "example":
		return s.compound(doctree.KindExampleBlock, inner, "Example")
	default:
		if admonitionStyles[style] {
			return s.admonition(style, inner)
		}
		if style == "abstract" || style == "partintro" {
			s.b.Properties().AddClass(style)
		}
		return s.compound(doctree.KindOpenBlock, inner, "")
	}
}

func (s *state) admonition(style string, inner []string) error {
	if _, err := s.open(doctree.KindAdmonitionBlock, ""); err != nil {
		return err
	}
	s.b.SetAttr("type", strings.ToLower(style))
	if err := s.nested(inner); err != nil {
		return err
	}
	s.endBlock()
	return nil
}

func (s *state) compound(k doctree.Kind, inner []string, titleType string) error {
	if _, err := s.open(k, titleType); err != nil {
		return err
	}
	if err := s.nested(inner); err != nil {
		return err
	}
	s.endBlock()
	return nil
}

// nested parses the content of a delimited block with the cursor on it.
func (s *state) nested(inner []string) error {
	saved := s.listDepth
	s.listDepth = 0
	defer func() { s.listDepth = saved }()
	return s.blocks(&lineReader{lines: inner})
}

func (s *state) blockMacro(name, target, attrs string) error {
	macro, err := attrlist.ParseMacro(attrs)
	if err != nil {
		return err
	}
	target = s.substituteAttributes(target)

	switch name {
	case "image":
		if s.b.HasProperties() {
			block := s.b.Properties()
			for _, k := range []string{"alt", "width", "height", "link", "title"} {
				if v, ok := block.Lookup(k); ok && !macro.Has(k) {
					macro.Set(k, v)
				}
			}
			if len(macro.Arguments) == 0 && len(block.Arguments) > 0 {
				macro.Arguments = append([]string(nil), block.Arguments...)
			}
		}
		if _, err := s.open(doctree.KindImageBlock, "Figure"); err != nil {
			return err
		}
		s.b.SetProperties(macro)
		s.b.OpenElement(doctree.KindImage)
		s.b.SetAttr("src", target)
		s.b.CloseElement(doctree.KindImage)
		s.endBlock()
	case "video":
		s.b.Properties().Merge(macro)
		if _, err := s.open(doctree.KindVideoBlock, ""); err != nil {
			return err
		}
		s.b.SetAttr("src", target)
		s.endBlock()
	}
	return nil
}
