package render

import (
	"strconv"
	"strings"

	"github.com/dgallion1/adocgest/internal/doctree"
	"github.com/dgallion1/adocgest/internal/variables"
)

// Attribute set on the level-1 section that carries the document title; the
// enricher reads and removes it.
const DocumentTitleAttr = "is-document-title"

var defaultCaptionLabels = map[string]string{
	"Table":   "Table",
	"Figure":  "Figure",
	"Example": "Example",
}

func renderSection(_ *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	level := atoi(t.Attr(id, "level"), 2)
	t.RemoveAttr(id, "level")

	heading := t.FirstElementChild(id)
	if sid, ok := t.LookupAttr(id, "id"); ok {
		if heading != doctree.None && t.Kind(heading) == doctree.KindHeading && !t.HasAttr(heading, "id") {
			t.SetAttr(heading, "id", sid)
		}
		t.RemoveAttr(id, "id")
	}

	switch {
	case level <= 0:
		t.Unwrap(id)
	case level == 1:
		t.SetTag(id, "div")
		t.SetAttr(id, "id", "preamble")
		if heading != doctree.None {
			t.InsertBefore(id, heading)
		}
		body := newTag(t, "div", "sectionbody")
		t.MoveChildren(id, body)
		ensureContent(t, body)
		t.AppendChild(id, body)
	case level == 2:
		t.SetTag(id, "div")
		t.LeadClasses(id, "sect1")
		start := 0
		if heading != doctree.None {
			start = t.Index(heading) + 1
		}
		body := newTag(t, "div", "sectionbody")
		t.MoveChildrenAfter(id, start, body)
		ensureContent(t, body)
		t.AppendChild(id, body)
	default:
		t.SetTag(id, "div")
		t.LeadClasses(id, "sect"+strconv.Itoa(level-1))
	}
}

func headingLevel(t *doctree.Tree, id doctree.NodeID) int {
	if lv, ok := t.LookupAttr(id, "level"); ok {
		return atoi(lv, 2)
	}
	tag := t.Tag(id)
	if len(tag) == 2 && tag[0] == 'h' {
		return atoi(tag[1:], 2)
	}
	return 2
}

func isDocumentTitle(t *doctree.Tree, id doctree.NodeID, level int) bool {
	if level != 1 {
		return false
	}
	parent := t.Parent(id)
	if parent != t.Body() && !(t.Kind(parent) == doctree.KindSection && t.Attr(parent, "level") == "1") {
		return false
	}
	first := t.Find(t.Body(), func(n doctree.NodeID) bool {
		return t.Kind(n) == doctree.KindHeading && headingLevel(t, n) == 1
	})
	return first == id
}

func renderHeading(_ *Renderer, c *ruleCtx) {
	t, id, vars := c.t, c.id, c.vars
	level := headingLevel(t, id)
	docTitle := isDocumentTitle(t, id, level)
	t.RemoveAttr(id, "level")
	t.SetTag(id, "h"+strconv.Itoa(level))

	transplantTrailingAnchor(t, id)

	if docTitle {
		return
	}
	hid := t.Attr(id, "id")
	if hid == "" {
		hid = uniqueID(t, vars, HeadingID(strings.TrimSpace(t.TextContent(id)), vars.GetOr("idprefix", "_"), vars.GetOr("idseparator", "_")))
		t.SetAttr(id, "id", hid)
	}
	if t.Parent(id) == t.Body() {
		t.AddClass(id, "sect0")
	}

	anchorKey := variables.AnchorPrefix + hid
	if !vars.Has(anchorKey) {
		vars.Set(anchorKey, t.InnerHTML(id))
	}

	if num, ok := t.LookupAttr(id, "sectnum"); ok {
		t.RemoveAttr(id, "sectnum")
		vars.Set(variables.SectnumPrefix+hid, num)
		caption := num + ". "
		if override, ok := vars.Lookup(variables.CaptionPrefix + hid); ok {
			caption = override
		}
		prependText(t, id, caption)
	}

	if vars.Has("sectlinks") {
		link := newTag(t, "a", "link")
		t.SetAttr(link, "href", "#"+hid)
		t.MoveChildren(id, link)
		t.AppendChild(id, link)
	}
	if vars.Has("sectanchors") {
		anchor := newTag(t, "a", "anchor")
		t.SetAttr(anchor, "href", "#"+hid)
		t.PrependChild(id, anchor)
	}
}

// transplantTrailingAnchor moves the id of a trailing inline anchor onto the
// heading when whitespace separates it from the heading text.
func transplantTrailingAnchor(t *doctree.Tree, id doctree.NodeID) {
	children := t.Children(id)
	n := len(children)
	if n < 2 {
		return
	}
	last, prev := children[n-1], children[n-2]
	if t.Kind(last) != doctree.KindAnchor || t.ChildCount(last) > 0 || t.IsElement(prev) {
		return
	}
	text := t.Text(prev)
	trimmed := strings.TrimRight(text, " \t")
	if trimmed == text {
		return
	}
	aid := t.Attr(last, "id")
	if aid == "" {
		return
	}
	t.SetAttr(id, "id", aid)
	t.SetText(prev, trimmed)
	t.Detach(last)
}

func uniqueID(t *doctree.Tree, vars *variables.Store, base string) string {
	taken := func(s string) bool {
		return vars.Has(variables.AnchorPrefix+s) || t.FindByID(s) != doctree.None
	}
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		cand := base + "_" + strconv.Itoa(i)
		if !taken(cand) {
			return cand
		}
	}
}

func renderTitle(_ *Renderer, c *ruleCtx) {
	t, id, vars := c.t, c.id, c.vars
	typ := t.Attr(id, "type")
	caption, hasCaption := t.LookupAttr(id, "caption")
	t.RemoveAttr(id, "type")
	t.RemoveAttr(id, "caption")

	if typ == "Table" {
		t.SetTag(id, "caption")
	} else {
		t.SetTag(id, "div")
	}
	t.AddClass(id, "title")

	if hasCaption {
		prependText(t, id, caption)
		return
	}
	if typ == "" {
		return
	}
	key := strings.ToLower(typ) + "-caption"
	if vars.IsUnset(key) {
		return
	}
	label := vars.GetOr(key, defaultCaptionLabels[typ])
	if label == "" {
		return
	}
	n := vars.Next(variables.CounterPrefix+typ, 1)
	prependText(t, id, label+" "+strconv.Itoa(n)+". ")
}

func renderTOC(_ *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	t.RemoveChildren(id)
	t.SetTag(id, "div")
	t.SetAttr(id, "id", "toc")
	t.LeadClasses(id, "toc")
	title := newTag(t, "div")
	t.SetAttr(title, "id", "toctitle")
	appendText(t, title, c.vars.GetOr("toc-title", "Table of Contents"))
	t.AppendChild(id, title)
}
