package render

import (
	"slices"
	"strconv"

	"github.com/dgallion1/adocgest/internal/doctree"
)

// Ordered list numbering styles by nesting depth, starting at depth 1.
var orderedStyles = []string{"arabic", "loweralpha", "lowerroman", "upperalpha", "upperroman"}

var orderedTypes = map[string]string{
	"arabic":     "",
	"decimal":    "",
	"loweralpha": "a",
	"upperalpha": "A",
	"lowerroman": "i",
	"upperroman": "I",
	"lowergreek": "",
}

// OrderedStyle returns the numbering style for a list nested depth levels deep.
func OrderedStyle(depth int) string {
	if depth < 1 {
		depth = 1
	}
	if depth > len(orderedStyles) {
		depth = len(orderedStyles)
	}
	return orderedStyles[depth-1]
}

// listShell turns id into div.<class...> with an optional title followed by a
// new list element holding every other child. It returns the list element.
func listShell(t *doctree.Tree, id doctree.NodeID, listTag string, classes ...string) doctree.NodeID {
	t.RemoveAttr(id, "level")
	t.SetTag(id, "div")
	t.LeadClasses(id, classes...)
	title := t.ChildOfKind(id, doctree.KindTitle)
	list := newTag(t, listTag)
	moveExcept(t, id, list, title)
	t.AppendChild(id, list)
	return list
}

func renderUnorderedList(_ *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	checklist := c.props.Has("%checklist") || c.props.HasOption("checklist")
	style := c.props.Argument(0)
	classes := []string{"ulist"}
	if checklist {
		classes = append(classes, "checklist")
	}
	if style != "" {
		classes = append(classes, style)
	}
	ul := listShell(t, id, "ul", classes...)
	if checklist {
		t.AddClass(ul, "checklist")
	}
	if style != "" {
		t.AddClass(ul, style)
	}
}

func renderOrderedList(_ *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	style := ""
	for _, cls := range t.Classes(id) {
		if _, ok := orderedTypes[cls]; ok {
			style = cls
			break
		}
	}
	if _, ok := orderedTypes[c.props.Argument(0)]; style == "" && ok {
		style = c.props.Argument(0)
	}
	if style == "" {
		style = OrderedStyle(orderedDepth(t, id))
	}

	ol := listShell(t, id, "ol", "olist", style)
	t.AddClass(ol, style)
	if typ := orderedTypes[style]; typ != "" {
		t.SetAttr(ol, "type", typ)
	}
	if start := c.props.Get("start"); start != "" {
		t.SetAttr(ol, "start", start)
	}
	if c.props.HasOption("reversed") {
		t.SetAttr(ol, "reversed", "")
	}
}

// orderedDepth prefers the marker depth recorded by the parser and falls back
// to counting enclosing ordered lists.
func orderedDepth(t *doctree.Tree, id doctree.NodeID) int {
	if lv := atoi(t.Attr(id, "level"), 0); lv > 0 {
		return lv
	}
	depth := 1
	for _, a := range t.Ancestors(id) {
		if t.Kind(a) == doctree.KindOrderedList {
			depth++
		}
	}
	return depth
}

func isQanda(t *doctree.Tree, list doctree.NodeID) bool {
	if list == doctree.None || t.Kind(list) != doctree.KindDescriptionList {
		return false
	}
	return t.HasClass(list, "qanda") || t.Props(list).HasArgument("qanda")
}

func renderDescriptionList(_ *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	if c.props.HasArgument("qanda") || t.HasClass(id, "qanda") {
		listShell(t, id, "ol", "qlist", "qanda")
		return
	}
	listShell(t, id, "dl", "dlist")
}

func renderDescriptionTerm(_ *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	level := atoi(t.Attr(id, "level"), 1)
	t.RemoveAttr(id, "level")
	if isQanda(t, t.Parent(id)) {
		t.SetTag(id, "li")
		p := newTag(t, "p")
		em := newTag(t, "em")
		t.MoveChildren(id, em)
		t.AppendChild(p, em)
		t.AppendChild(id, p)
		return
	}
	t.SetTag(id, "dt")
	t.AddClass(id, "hdlist"+strconv.Itoa(level))
}

func renderDescriptionDetail(_ *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	if isQanda(t, t.Parent(id)) {
		prev := t.PrevElementSibling(id)
		if prev != doctree.None && t.Kind(prev) == doctree.KindDescriptionTerm {
			t.MoveChildren(id, prev)
			t.Detach(id)
			return
		}
		t.SetTag(id, "li")
		return
	}
	t.SetTag(id, "dd")
}

func renderListItem(_ *Renderer, c *ruleCtx) {
	c.t.RemoveAttr(c.id, "level")
	c.t.SetTag(c.id, "li")
}

func renderCalloutList(_ *Renderer, c *ruleCtx) {
	listShell(c.t, c.id, "ol", "colist", "arabic")
}

// checklistGlyphs are prepended to checklist items by the parser.
var checklistGlyphs = []string{"✓", "❏"}

// IsChecklistGlyph reports whether s is one of the checklist markers.
func IsChecklistGlyph(s string) bool {
	return slices.Contains(checklistGlyphs, s)
}
