package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/adocgest/internal/attrlist"
	"github.com/dgallion1/adocgest/internal/doctree"
)

var (
	ulRe  = regexp.MustCompile(`^[ \t]*(-|\*{1,5})[ \t]+(.*)$`)
	olRe  = regexp.MustCompile(`^[ \t]*(\.{1,5}|\d+\.)[ \t]+(.*)$`)
	dlRe  = regexp.MustCompile(`^[ \t]*(.*?[^:;\s])(:{2,4}|;;)(?:[ \t]+(.*))?$`)
	colRe = regexp.MustCompile(`^<(\d+|\.)>[ \t]+(.*)$`)
)

type listItem struct {
	kind  doctree.Kind
	level int
	term  string
	text  string
	start string
}

func matchListItem(line string) (listItem, bool) {
	if m := ulRe.FindStringSubmatch(line); m != nil {
		level := len(m[1])
		if m[1] == "-" {
			level = 1
		}
		return listItem{kind: doctree.KindUnorderedList, level: level, text: m[2]}, true
	}
	if m := olRe.FindStringSubmatch(line); m != nil {
		it := listItem{kind: doctree.KindOrderedList, level: len(m[1]), text: m[2]}
		if m[1][0] != '.' {
			it.level = 1
			it.start = strings.TrimSuffix(m[1], ".")
		}
		return it, true
	}
	if m := colRe.FindStringSubmatch(line); m != nil {
		return listItem{kind: doctree.KindCalloutList, level: 1, text: m[2]}, true
	}
	if m := dlRe.FindStringSubmatch(line); m != nil {
		level := len(m[2]) - 1
		if m[2] == ";;" {
			level = 4
		}
		return listItem{kind: doctree.KindDescriptionList, level: level, term: m[1], text: m[3]}, true
	}
	return listItem{}, false
}

// within reports whether n is scope or lies below it.
func (s *state) within(n, scope doctree.NodeID) bool {
	if n == scope {
		return true
	}
	for _, a := range s.t.Ancestors(n) {
		if a == scope {
			return true
		}
	}
	return false
}

// list consumes consecutive list items. Blank lines between items do not end
// the list; any other line does.
func (s *state) list(r *lineReader, scope doctree.NodeID) error {
	s.listDepth++
	defer func() { s.listDepth-- }()

	for !r.done() {
		it, ok := matchListItem(r.peek())
		if !ok {
			break
		}
		r.next()
		if err := s.item(r, scope, it); err != nil {
			return err
		}
		mark := r.pos
		r.skipBlank()
		if _, ok := matchListItem(r.peek()); !ok || r.done() {
			r.pos = mark
			break
		}
	}
	s.closeLists(scope)
	return nil
}

// placeList moves the cursor to where the item belongs: an open list of the
// same kind and level, a nested list under the current item, or a new list.
func (s *state) placeList(scope doctree.NodeID, it listItem) error {
	if l := s.b.NearestLevel(it.kind, it.level); l != doctree.None && s.within(l, scope) {
		s.b.CloseToLevel(it.kind, it.level)
		s.dropPending()
		return nil
	}
	if item := s.b.Nearest(doctree.KindListItem, doctree.KindDescriptionDetail); item != doctree.None && s.within(item, scope) {
		s.b.CloseToElement(doctree.KindListItem, doctree.KindDescriptionDetail)
	}
	if it.start != "" && it.start != "1" {
		s.b.Properties().Set("start", it.start)
	}
	if _, err := s.open(it.kind, ""); err != nil {
		return err
	}
	s.b.SetAttr("level", strconv.Itoa(it.level))
	return nil
}

func (s *state) item(r *lineReader, scope doctree.NodeID, it listItem) error {
	if err := s.placeList(scope, it); err != nil {
		return err
	}
	lines := s.itemLines(r)

	if it.kind == doctree.KindDescriptionList {
		s.b.OpenElement(doctree.KindDescriptionTerm)
		if err := s.inl.run(it.term); err != nil {
			return err
		}
		s.b.CloseElement(doctree.KindDescriptionTerm)
		s.b.OpenElement(doctree.KindDescriptionDetail)
	} else {
		s.b.OpenElement(doctree.KindListItem)
		if it.kind == doctree.KindUnorderedList {
			it.text = s.checklist(it.text)
		}
	}

	if it.text != "" {
		lines = append([]string{it.text}, lines...)
	}
	if len(lines) > 0 {
		s.b.OpenElement(doctree.KindP)
		if err := s.inl.run(s.hardBreaks(strings.Join(lines, "\n"))); err != nil {
			return err
		}
		s.b.CloseElement(doctree.KindP)
	}
	return s.continuations(r)
}

// itemLines returns the lines that continue the text of a list item.
func (s *state) itemLines(r *lineReader) []string {
	var lines []string
	for !r.done() {
		l := r.peek()
		if strings.TrimSpace(l) == "" || strings.TrimSpace(l) == "+" {
			break
		}
		if _, ok := matchListItem(l); ok {
			break
		}
		if _, ok := delimiterOf(l); ok {
			break
		}
		if blockAttrRe.MatchString(strings.TrimSpace(l)) || blockAnchorRe.MatchString(strings.TrimSpace(l)) {
			break
		}
		r.next()
		if isComment(l) {
			continue
		}
		lines = append(lines, strings.TrimLeft(l, " \t"))
	}
	return lines
}

// continuations attaches the blocks that follow "+" lines to the current
// item.
func (s *state) continuations(r *lineReader) error {
	for !r.done() && strings.TrimSpace(r.peek()) == "+" {
		r.next()
		item := s.b.CloseToElement(doctree.KindListItem, doctree.KindDescriptionDetail)
		if item == doctree.None {
			return nil
		}
		for !r.done() {
			done, err := s.block(r, item)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		s.b.CloseToElement(doctree.KindListItem, doctree.KindDescriptionDetail)
	}
	return nil
}

// checklist replaces a leading [ ], [x] or [*] marker with its glyph and
// flags the enclosing list.
func (s *state) checklist(text string) string {
	var glyph string
	switch {
	case strings.HasPrefix(text, "[ ] "):
		glyph = "❏"
	case strings.HasPrefix(text, "[x] "), strings.HasPrefix(text, "[*] "):
		glyph = "✓"
	default:
		return text
	}
	if ul := s.b.Nearest(doctree.KindUnorderedList); ul != doctree.None {
		p := s.t.Props(ul)
		if p == nil {
			p = attrlist.New()
			s.t.SetProps(ul, p)
		}
		p.AddOption("checklist")
	}
	return glyph + " " + text[4:]
}

// closeLists leaves every list opened below scope.
func (s *state) closeLists(scope doctree.NodeID) {
	kinds := []doctree.Kind{
		doctree.KindUnorderedList, doctree.KindOrderedList,
		doctree.KindDescriptionList, doctree.KindCalloutList,
	}
	if isSectionScope(s.t.Kind(scope)) {
		s.b.CloseElementTop(kinds...)
		return
	}
	for {
		l := s.b.Nearest(kinds...)
		if l == doctree.None || l == scope || !s.within(l, scope) {
			return
		}
		s.b.CloseElement(kinds...)
	}
}
