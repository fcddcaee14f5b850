// Package render rewrites the semantic nodes of a built doctree into their
// final HTML shape. Every kind has exactly one rule; rules run bottom-up so a
// rule always sees its children in their final form.
package render

import (
	"log/slog"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/adocgest/internal/attrlist"
	"github.com/dgallion1/adocgest/internal/doctree"
	"github.com/dgallion1/adocgest/internal/variables"
)

// DefaultMaxPasses bounds the re-walk over nodes injected during rendering.
const DefaultMaxPasses = 4

// Renderer holds configuration shared by conversions. It has no per-document
// state and is safe for concurrent use.
type Renderer struct {
	log *slog.Logger
	md  goldmark.Markdown
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for Debug/Warn diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

func New(opts ...Option) *Renderer {
	r := &Renderer{
		log: slog.New(slog.DiscardHandler),
		md:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ruleCtx is what a rule sees: the node, its properties (never nil) and the
// conversion's variables.
type ruleCtx struct {
	t     *doctree.Tree
	vars  *variables.Store
	id    doctree.NodeID
	props *attrlist.Properties
}

type rule func(r *Renderer, c *ruleCtx)

var rules [doctree.NumKinds]rule

func init() {
	rules = [doctree.NumKinds]rule{
		doctree.KindElement:           renderElement,
		doctree.KindSection:           renderSection,
		doctree.KindHeading:           renderHeading,
		doctree.KindParagraph:         renderParagraph,
		doctree.KindP:                 renderP,
		doctree.KindLiteralBlock:      renderLiteral,
		doctree.KindListingBlock:      renderListing,
		doctree.KindPassthroughBlock:  renderPassthrough,
		doctree.KindInlinePassthrough: renderPassthrough,
		doctree.KindMarkdownBlock:     renderMarkdown,
		doctree.KindAdmonitionBlock:   renderAdmonition,
		doctree.KindSidebarBlock:      renderSidebar,
		doctree.KindExampleBlock:      renderExample,
		doctree.KindQuoteBlock:        renderQuote,
		doctree.KindVerseBlock:        renderVerse,
		doctree.KindOpenBlock:         renderOpen,
		doctree.KindImageBlock:        renderImageBlock,
		doctree.KindVideoBlock:        renderVideo,
		doctree.KindImage:             renderImage,
		doctree.KindTableBlock:        renderTable,
		doctree.KindTableCell:         renderTableCell,
		doctree.KindUnorderedList:     renderUnorderedList,
		doctree.KindOrderedList:       renderOrderedList,
		doctree.KindDescriptionList:   renderDescriptionList,
		doctree.KindDescriptionTerm:   renderDescriptionTerm,
		doctree.KindDescriptionDetail: renderDescriptionDetail,
		doctree.KindListItem:          renderListItem,
		doctree.KindCalloutList:       renderCalloutList,
		doctree.KindLink:              renderLink,
		doctree.KindAnchor:            renderAnchor,
		doctree.KindFootnote:          renderFootnote,
		doctree.KindMark:              renderMark,
		doctree.KindTitle:             renderTitle,
		doctree.KindTOC:               renderTOC,
	}
}

// Render runs every rule once over the tree in post-order. Nodes attached
// while the walk is in progress are left for Rewalk.
func (r *Renderer) Render(t *doctree.Tree, vars *variables.Store) {
	r.walk(t, vars, t.Body())
}

// Rewalk renders nodes that are attached but not yet rendered, repeating up
// to maxPasses times while new ones keep appearing. It returns the number of
// passes that rendered something.
func (r *Renderer) Rewalk(t *doctree.Tree, vars *variables.Store, maxPasses int) int {
	passes := 0
	for passes < maxPasses {
		if len(Pending(t)) == 0 {
			break
		}
		r.walk(t, vars, t.Body())
		passes++
	}
	if left := len(Pending(t)); left > 0 {
		r.log.Warn("unrendered nodes remain after re-walk", "count", left, "passes", passes)
	}
	return passes
}

// RenderNode renders a single detached or attached subtree.
func (r *Renderer) RenderNode(t *doctree.Tree, vars *variables.Store, id doctree.NodeID) {
	r.walk(t, vars, id)
}

// Pending returns the attached, unrendered nodes in document order.
func Pending(t *doctree.Tree) []doctree.NodeID {
	return t.FindAll(t.Body(), func(id doctree.NodeID) bool {
		return t.IsElement(id) && !t.Rendered(id)
	})
}

func (r *Renderer) walk(t *doctree.Tree, vars *variables.Store, id doctree.NodeID) {
	for _, c := range t.Children(id) {
		if t.IsElement(c) {
			r.walk(t, vars, c)
		}
	}
	if id == t.Body() || t.Rendered(id) {
		return
	}
	r.apply(t, vars, id)
}

func (r *Renderer) apply(t *doctree.Tree, vars *variables.Store, id doctree.NodeID) {
	k := t.Kind(id)
	fn := renderElement
	if k < doctree.NumKinds && rules[k] != nil {
		fn = rules[k]
	}
	props := t.TakeProps(id)
	if props == nil {
		props = attrlist.New()
	}
	t.SetRendered(id, true)
	fn(r, &ruleCtx{t: t, vars: vars, id: id, props: props})
}

// helpers shared by the rules

func newTag(t *doctree.Tree, tag string, classes ...string) doctree.NodeID {
	id := t.NewTag(tag)
	t.AddClass(id, classes...)
	return id
}

func appendText(t *doctree.Tree, parent doctree.NodeID, s string) doctree.NodeID {
	id := t.NewText(s)
	t.AppendChild(parent, id)
	return id
}

func prependText(t *doctree.Tree, parent doctree.NodeID, s string) {
	if first := t.FirstChild(parent); first != doctree.None && !t.IsElement(first) {
		t.SetText(first, s+t.Text(first))
		return
	}
	t.PrependChild(parent, t.NewText(s))
}

// moveExcept moves every child of from except skip into to.
func moveExcept(t *doctree.Tree, from, to, skip doctree.NodeID) {
	for _, c := range t.Children(from) {
		if c != skip {
			t.AppendChild(to, c)
		}
	}
}

// ensureContent gives an empty container an empty text child so it is
// serialized with an explicit end tag and is never mistaken for a missing node.
func ensureContent(t *doctree.Tree, id doctree.NodeID) {
	if t.ChildCount(id) == 0 {
		appendText(t, id, "")
	}
}

func atoi(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
