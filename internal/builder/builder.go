// Package builder assembles a doctree from a stream of structural events.
// It keeps one cursor into the tree; open operations descend, close
// operations climb to a matching scope. A close that matches nothing is a
// no-op so malformed nesting never fails a conversion.
package builder

import (
	"html"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgallion1/adocgest/internal/attrlist"
	"github.com/dgallion1/adocgest/internal/doctree"
	"github.com/dgallion1/adocgest/internal/variables"
)

// Builder owns the tree under construction.
type Builder struct {
	tree   *doctree.Tree
	vars   *variables.Store
	log    *slog.Logger
	cursor doctree.NodeID

	// lastBlockParent is the parent of the most recently closed leaf block.
	// It is only a hint: it is checked for attachment before use.
	lastBlockParent doctree.NodeID

	text    strings.Builder
	pending *attrlist.Properties

	sectnums []int
}

// New returns a Builder whose cursor is the body of a fresh tree.
func New(vars *variables.Store, log *slog.Logger) *Builder {
	if vars == nil {
		vars = variables.New(nil)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	t := doctree.New()
	return &Builder{
		tree:            t,
		vars:            vars,
		log:             log,
		cursor:          t.Body(),
		lastBlockParent: doctree.None,
	}
}

// Tree returns the tree under construction.
func (b *Builder) Tree() *doctree.Tree { return b.tree }

// Vars returns the document attributes shared with the parser.
func (b *Builder) Vars() *variables.Store { return b.vars }

// Cursor returns the node that the next open or append attaches to.
func (b *Builder) Cursor() doctree.NodeID { return b.cursor }

// CursorKind returns the kind of the cursor node.
func (b *Builder) CursorKind() doctree.Kind { return b.tree.Kind(b.cursor) }

// SetProperties replaces the pending properties that the next opened node
// will receive.
func (b *Builder) SetProperties(p *attrlist.Properties) {
	b.pending = p
}

// Properties returns the pending properties, creating them if needed.
func (b *Builder) Properties() *attrlist.Properties {
	if b.pending == nil {
		b.pending = attrlist.New()
	}
	return b.pending
}

// HasProperties reports whether properties are waiting for the next node.
func (b *Builder) HasProperties() bool { return b.pending != nil }

// AppendText buffers inline text for the cursor.
func (b *Builder) AppendText(s string) {
	b.text.WriteString(s)
}

// FlushText moves buffered text into a text child of the cursor.
func (b *Builder) FlushText() {
	b.flush(false)
}

func (b *Builder) flush(trimTrailing bool) {
	s := b.text.String()
	b.text.Reset()
	if trimTrailing {
		s = strings.TrimRight(s, " \t\r\n")
	}
	if s == "" {
		return
	}
	if last := b.tree.LastChild(b.cursor); last != doctree.None && !b.tree.IsElement(last) {
		b.tree.SetText(last, b.tree.Text(last)+s)
		return
	}
	b.tree.AppendChild(b.cursor, b.tree.NewText(s))
}

// OpenElement creates a child of the cursor of the given kind, hands it the
// pending properties and makes it the cursor.
func (b *Builder) OpenElement(k doctree.Kind) doctree.NodeID {
	b.flush(false)
	id := b.tree.NewElement(k)
	b.attach(id)
	return id
}

// OpenTag is OpenElement for a generic HTML element.
func (b *Builder) OpenTag(tag string) doctree.NodeID {
	b.flush(false)
	id := b.tree.NewTag(tag)
	b.tree.SetRendered(id, false)
	b.attach(id)
	return id
}

// AppendTag adds an empty generic element (br, hr) without moving the cursor.
func (b *Builder) AppendTag(tag string) doctree.NodeID {
	b.flush(false)
	id := b.tree.NewTag(tag)
	b.tree.SetRendered(id, false)
	b.propagate(id)
	b.tree.AppendChild(b.cursor, id)
	return id
}

func (b *Builder) attach(id doctree.NodeID) {
	b.propagate(id)
	b.tree.AppendChild(b.cursor, id)
	b.cursor = id
}

func (b *Builder) propagate(id doctree.NodeID) {
	p := b.pending
	b.pending = nil
	if p == nil {
		return
	}
	if p.ID != "" {
		b.tree.SetAttr(id, "id", p.ID)
		if text := anchorText(p); text != "" {
			key := variables.AnchorPrefix + p.ID
			if !b.vars.Has(key) {
				b.vars.Set(key, text)
			}
		}
	}
	b.tree.AddClass(id, p.Classes...)
	b.tree.SetProps(id, p)
}

func anchorText(p *attrlist.Properties) string {
	if v := p.Get("reftext"); v != "" {
		return html.EscapeString(v)
	}
	return html.EscapeString(p.Get("title"))
}

// SetAttr sets an attribute on the cursor.
func (b *Builder) SetAttr(key, val string) {
	b.tree.SetAttr(b.cursor, key, val)
}

func in(k doctree.Kind, kinds []doctree.Kind) bool {
	for _, x := range kinds {
		if x == k {
			return true
		}
	}
	return false
}

// scope returns the cursor followed by its ancestors, nearest first, Body excluded.
func (b *Builder) scope() []doctree.NodeID {
	if b.cursor == b.tree.Body() {
		return nil
	}
	return append([]doctree.NodeID{b.cursor}, b.tree.Ancestors(b.cursor)...)
}

func (b *Builder) nearest(match func(doctree.NodeID) bool) doctree.NodeID {
	for _, id := range b.scope() {
		if match(id) {
			return id
		}
	}
	return doctree.None
}

func (b *Builder) outermost(match func(doctree.NodeID) bool) doctree.NodeID {
	s := b.scope()
	for i := len(s) - 1; i >= 0; i-- {
		if match(s[i]) {
			return s[i]
		}
	}
	return doctree.None
}

func (b *Builder) ofKind(kinds []doctree.Kind) func(doctree.NodeID) bool {
	return func(id doctree.NodeID) bool { return in(b.tree.Kind(id), kinds) }
}

func (b *Builder) ofLevel(k doctree.Kind, level int) func(doctree.NodeID) bool {
	lv := strconv.Itoa(level)
	return func(id doctree.NodeID) bool {
		return b.tree.Kind(id) == k && b.tree.Attr(id, "level") == lv
	}
}

func (b *Builder) closeOut(id doctree.NodeID) doctree.NodeID {
	if id == doctree.None {
		return doctree.None
	}
	b.flush(false)
	b.cursor = b.tree.Parent(id)
	return id
}

func (b *Builder) closeTo(id doctree.NodeID) doctree.NodeID {
	if id == doctree.None {
		return doctree.None
	}
	b.flush(false)
	b.cursor = id
	return id
}

// CloseElement leaves the nearest enclosing node of one of kinds; its parent
// becomes the cursor. It returns the closed node or None.
func (b *Builder) CloseElement(kinds ...doctree.Kind) doctree.NodeID {
	id := b.closeOut(b.nearest(b.ofKind(kinds)))
	if id == doctree.None {
		b.log.Debug("close matched no open scope", "kinds", kinds, "cursor", b.CursorKind())
	}
	return id
}

// CloseTag is CloseElement for generic elements matched by tag name.
func (b *Builder) CloseTag(tags ...string) doctree.NodeID {
	return b.closeOut(b.nearest(func(id doctree.NodeID) bool {
		if b.tree.Kind(id) != doctree.KindElement {
			return false
		}
		for _, t := range tags {
			if b.tree.Tag(id) == t {
				return true
			}
		}
		return false
	}))
}

// CloseToElement makes the nearest enclosing node of one of kinds the cursor.
func (b *Builder) CloseToElement(kinds ...doctree.Kind) doctree.NodeID {
	return b.closeTo(b.nearest(b.ofKind(kinds)))
}

// CloseElementTop leaves the outermost enclosing node of one of kinds,
// unwinding several nested scopes at once.
func (b *Builder) CloseElementTop(kinds ...doctree.Kind) doctree.NodeID {
	return b.closeOut(b.outermost(b.ofKind(kinds)))
}

// CloseLevel leaves the nearest node of kind k whose level attribute is level.
func (b *Builder) CloseLevel(k doctree.Kind, level int) doctree.NodeID {
	return b.closeOut(b.nearest(b.ofLevel(k, level)))
}

// CloseToLevel makes the nearest node of kind k at level the cursor.
func (b *Builder) CloseToLevel(k doctree.Kind, level int) doctree.NodeID {
	return b.closeTo(b.nearest(b.ofLevel(k, level)))
}

// CloseSections leaves every section that a new heading of the given level
// ends: the outermost section whose level is at least level, or the
// document-title preamble section for any level above 1.
func (b *Builder) CloseSections(level int) doctree.NodeID {
	return b.closeOut(b.outermost(func(id doctree.NodeID) bool {
		if b.tree.Kind(id) != doctree.KindSection {
			return false
		}
		lv, err := strconv.Atoi(b.tree.Attr(id, "level"))
		if err != nil {
			return false
		}
		return lv >= level || (lv == 1 && level > 1)
	}))
}

// CloseBlockElement ends the current leaf block. Trailing whitespace is
// dropped from pending text, the parent of the nearest block is remembered
// and the cursor returns to the nearest section, or Body.
func (b *Builder) CloseBlockElement() {
	b.flush(true)
	if blk := b.nearest(func(id doctree.NodeID) bool { return b.tree.Kind(id).IsBlock() }); blk != doctree.None {
		b.lastBlockParent = b.tree.Parent(blk)
	}
	if sec := b.nearest(b.ofKind([]doctree.Kind{doctree.KindSection})); sec != doctree.None {
		b.cursor = sec
		return
	}
	b.cursor = b.tree.Body()
}

// ResumeBlockParent moves the cursor back to the parent of the last closed
// block, if that node is still part of the tree.
func (b *Builder) ResumeBlockParent() bool {
	if b.lastBlockParent == doctree.None || !b.tree.IsAttached(b.lastBlockParent) {
		return false
	}
	b.flush(false)
	b.cursor = b.lastBlockParent
	return true
}

// IsInside reports whether the cursor or an ancestor has one of kinds.
func (b *Builder) IsInside(kinds ...doctree.Kind) bool {
	return b.nearest(b.ofKind(kinds)) != doctree.None
}

// IsInsideLevel reports whether a node of kind k at level encloses the cursor.
func (b *Builder) IsInsideLevel(k doctree.Kind, level int) bool {
	return b.nearest(b.ofLevel(k, level)) != doctree.None
}

// Nearest returns the nearest enclosing node of one of kinds, or None.
func (b *Builder) Nearest(kinds ...doctree.Kind) doctree.NodeID {
	return b.nearest(b.ofKind(kinds))
}

// NearestLevel returns the nearest enclosing node of kind k at level, or None.
func (b *Builder) NearestLevel(k doctree.Kind, level int) doctree.NodeID {
	return b.nearest(b.ofLevel(k, level))
}

// OpenOrCloseElement closes k when inside one, otherwise opens it. It
// reports whether a node was opened.
func (b *Builder) OpenOrCloseElement(k doctree.Kind) bool {
	if b.CloseElement(k) != doctree.None {
		return false
	}
	b.OpenElement(k)
	return true
}

// AppendDocument merges the body children of an independently converted
// and rendered tree into the cursor.
func (b *Builder) AppendDocument(sub *doctree.Tree) {
	if sub == nil {
		return
	}
	b.flush(false)
	for _, c := range sub.Children(sub.Body()) {
		b.tree.AppendChild(b.cursor, b.tree.Import(sub, c))
	}
}

// NextSectionNumber advances the counter for a section level (1 for "==")
// and returns the dotted number, e.g. "2.1".
func (b *Builder) NextSectionNumber(level int) string {
	if level < 1 {
		return ""
	}
	for len(b.sectnums) < level {
		b.sectnums = append(b.sectnums, 0)
	}
	b.sectnums = b.sectnums[:level]
	b.sectnums[level-1]++
	parts := make([]string, level)
	for i, n := range b.sectnums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}
