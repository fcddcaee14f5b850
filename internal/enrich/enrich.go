// Package enrich runs the whole-document pass that follows rendering:
// re-walking injected nodes, restructuring the preamble, building the table
// of contents, collating footnotes and removing duplicate ids.
package enrich

import (
	"log/slog"
	"strings"

	"github.com/dgallion1/adocgest/internal/doctree"
	"github.com/dgallion1/adocgest/internal/render"
	"github.com/dgallion1/adocgest/internal/variables"
)

// Enricher is stateless between documents.
type Enricher struct {
	r         *render.Renderer
	log       *slog.Logger
	maxPasses int
}

// Option configures an Enricher.
type Option func(*Enricher)

func WithLogger(l *slog.Logger) Option {
	return func(e *Enricher) { e.log = l }
}

// WithMaxPasses bounds the re-walk of nodes injected during rendering.
func WithMaxPasses(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.maxPasses = n
		}
	}
}

func New(r *render.Renderer, opts ...Option) *Enricher {
	e := &Enricher{
		r:         r,
		log:       slog.New(slog.DiscardHandler),
		maxPasses: render.DefaultMaxPasses,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Result summarizes what one Enrich call changed.
type Result struct {
	Passes       int
	TOCEntries   int
	Footnotes    int
	DuplicateIDs int
}

// Enrich must run exactly once, after render.Renderer.Render.
func (e *Enricher) Enrich(t *doctree.Tree, vars *variables.Store) Result {
	var res Result
	res.Passes = e.r.Rewalk(t, vars, e.maxPasses)
	e.restructurePreamble(t)
	res.TOCEntries = e.buildTOC(t, vars)
	res.Footnotes = e.appendFootnotes(t, vars)
	res.DuplicateIDs = StripDuplicateIDs(t)
	if res.DuplicateIDs > 0 {
		e.log.Debug("duplicate ids stripped", "count", res.DuplicateIDs)
	}
	return res
}

func findPreamble(t *doctree.Tree) doctree.NodeID {
	return t.Find(t.Body(), func(n doctree.NodeID) bool {
		return t.Kind(n) == doctree.KindSection && t.Attr(n, "id") == "preamble"
	})
}

// restructurePreamble removes an empty preamble and dissolves one that does
// not introduce a titled document with sections.
func (e *Enricher) restructurePreamble(t *doctree.Tree) {
	pre := findPreamble(t)
	if pre == doctree.None {
		return
	}
	titled := t.HasAttr(pre, render.DocumentTitleAttr)
	t.RemoveAttr(pre, render.DocumentTitleAttr)

	body := doctree.None
	for _, c := range t.ElementChildren(pre) {
		if t.HasClass(c, "sectionbody") {
			body = c
			break
		}
	}
	if body == doctree.None {
		return
	}
	if len(t.ElementChildren(body)) == 0 && strings.TrimSpace(t.TextContent(body)) == "" {
		t.Detach(pre)
		return
	}
	if !titled || !hasSubsections(t) {
		t.Unwrap(body)
		t.Unwrap(pre)
	}
}

func hasSubsections(t *doctree.Tree) bool {
	return t.Find(t.Body(), func(n doctree.NodeID) bool {
		switch t.Tag(n) {
		case "h2", "h3", "h4", "h5", "h6":
			return t.IsElement(n)
		}
		return false
	}) != doctree.None
}
