package enrich

import (
	"strconv"
	"strings"

	"github.com/dgallion1/adocgest/internal/doctree"
	"github.com/dgallion1/adocgest/internal/variables"
)

// minTOCLevel is the heading level of top-level TOC entries.
const minTOCLevel = 2

type tocEntry struct {
	id    doctree.NodeID
	level int
}

// buildTOC fills the toc::[] placeholder, or synthesizes one when the toc
// attribute asks for it. It returns the number of entries.
func (e *Enricher) buildTOC(t *doctree.Tree, vars *variables.Store) int {
	placeholder := t.Find(t.Body(), func(n doctree.NodeID) bool {
		return t.Kind(n) == doctree.KindTOC
	})
	placement, auto := vars.Lookup("toc")
	if placeholder == doctree.None && (!auto || placement == "macro") {
		return 0
	}

	maxLevel := vars.Int("toclevels", 2) + 1
	entries := collectHeadings(t, maxLevel)
	if len(entries) == 0 {
		if placeholder != doctree.None {
			t.Detach(placeholder)
		}
		return 0
	}

	if placeholder == doctree.None {
		placeholder = t.NewElement(doctree.KindTOC)
		e.r.RenderNode(t, vars, placeholder)
		placeTOC(t, placeholder, placement)
	} else if title := tocTitle(t, placeholder); title != doctree.None {
		t.AddClass(title, "title")
	}
	t.AppendChild(placeholder, buildList(t, entries))
	return len(entries)
}

func tocTitle(t *doctree.Tree, toc doctree.NodeID) doctree.NodeID {
	for _, c := range t.ElementChildren(toc) {
		if t.Attr(c, "id") == "toctitle" {
			return c
		}
	}
	return doctree.None
}

func placeTOC(t *doctree.Tree, toc doctree.NodeID, placement string) {
	if placement == "preamble" {
		if pre := findPreamble(t); pre != doctree.None {
			t.AppendChild(pre, toc)
			return
		}
	}
	for _, c := range t.ElementChildren(t.Body()) {
		if t.Tag(c) == "h1" {
			t.InsertAfter(c, toc)
			return
		}
	}
	t.PrependChild(t.Body(), toc)
}

// collectHeadings returns section headings with an id from minTOCLevel to
// maxLevel in document order. Headings outside a section wrapper (discrete
// headings, the document title) and headings of nested documents are skipped.
func collectHeadings(t *doctree.Tree, maxLevel int) []tocEntry {
	var out []tocEntry
	for _, n := range t.Descendants(t.Body()) {
		if !t.IsElement(n) || t.Kind(n) != doctree.KindHeading || t.Attr(n, "id") == "" {
			continue
		}
		level := headingLevel(t.Tag(n))
		if level < minTOCLevel || level > maxLevel {
			continue
		}
		if !isSectionHeading(t, n) || t.HasClass(n, "discrete") {
			continue
		}
		out = append(out, tocEntry{id: n, level: level})
	}
	return out
}

func headingLevel(tag string) int {
	if len(tag) != 2 || tag[0] != 'h' {
		return 0
	}
	n, err := strconv.Atoi(tag[1:])
	if err != nil {
		return 0
	}
	return n
}

func isSectionHeading(t *doctree.Tree, h doctree.NodeID) bool {
	parent := t.Parent(h)
	if parent == doctree.None || t.Kind(parent) != doctree.KindSection || t.FirstElementChild(parent) != h {
		return false
	}
	for _, a := range t.Ancestors(h) {
		if t.Tag(a) == "table" {
			return false
		}
	}
	return true
}

// buildList nests entries into ul.sectlevelN lists. A deeper entry opens a
// list under the previous item (an empty item stands in for skipped levels);
// a shallower one returns to the list of its level.
func buildList(t *doctree.Tree, entries []tocEntry) doctree.NodeID {
	root := t.NewTag("ul")
	t.AddClass(root, "sectlevel1")
	stack := []doctree.NodeID{root}
	for _, en := range entries {
		depth := max(en.level-minTOCLevel+1, 1)
		for len(stack) < depth {
			top := stack[len(stack)-1]
			item := t.LastChild(top)
			if item == doctree.None {
				item = t.NewTag("li")
				t.AppendChild(top, item)
			}
			sub := t.NewTag("ul")
			t.AddClass(sub, "sectlevel"+strconv.Itoa(len(stack)+1))
			t.AppendChild(item, sub)
			stack = append(stack, sub)
		}
		stack = stack[:depth]

		li := t.NewTag("li")
		a := t.NewTag("a")
		t.SetAttr(a, "href", "#"+t.Attr(en.id, "id"))
		copyHeadingContent(t, en.id, a)
		t.AppendChild(li, a)
		t.AppendChild(stack[len(stack)-1], li)
	}
	return root
}

// copyHeadingContent clones the heading's inline content into dst, leaving
// out section anchors and footnote markers, unwrapping section links and
// dropping ids so the copies never collide with the originals.
func copyHeadingContent(t *doctree.Tree, h, dst doctree.NodeID) {
	for _, c := range t.Children(h) {
		if t.IsElement(c) && t.Tag(c) == "a" && t.HasClass(c, "anchor") {
			continue
		}
		if t.IsElement(c) && t.Tag(c) == "sup" && (t.HasClass(c, "footnote") || t.HasClass(c, "footnoteref")) {
			continue
		}
		cp := t.Clone(c)
		t.AppendChild(dst, cp)
		if t.IsElement(cp) && t.Tag(cp) == "a" && t.HasClass(cp, "link") {
			t.Unwrap(cp)
		}
	}
	for _, d := range t.Descendants(dst) {
		if t.IsElement(d) {
			t.RemoveAttr(d, "id")
		}
	}
	trimEdges(t, dst)
}

func trimEdges(t *doctree.Tree, id doctree.NodeID) {
	if first := t.FirstChild(id); first != doctree.None && !t.IsElement(first) {
		t.SetText(first, strings.TrimLeft(t.Text(first), " "))
	}
	if last := t.LastChild(id); last != doctree.None && !t.IsElement(last) {
		t.SetText(last, strings.TrimRight(t.Text(last), " "))
	}
}
