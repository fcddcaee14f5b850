// Package convert is the entry point of the engine: it loads AsciiDoc source,
// builds the document tree, renders and enriches it, and exposes the body HTML
// and the document attributes.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"

	"github.com/dgallion1/adocgest/internal/builder"
	"github.com/dgallion1/adocgest/internal/doctree"
	"github.com/dgallion1/adocgest/internal/enrich"
	"github.com/dgallion1/adocgest/internal/parser"
	"github.com/dgallion1/adocgest/internal/render"
	"github.com/dgallion1/adocgest/internal/variables"
)

// ErrCannotParse is returned when the source cannot be tokenized.
var ErrCannotParse = errors.New("cannot parse document")

// maxNesting bounds "a" style table cells inside "a" style table cells.
const maxNesting = 8

// Options apply to one conversion.
type Options struct {
	// Attributes are set before parsing. Document attribute entries do not
	// override them. A key ending in "!" unsets the attribute.
	Attributes map[string]string

	// Legacy enables the underlined section title syntax. Setting the
	// "legacy" attribute has the same effect.
	Legacy bool
}

// Converter is safe for concurrent use; every Convert call owns its own
// tree and variables.
type Converter struct {
	log      *slog.Logger
	renderer *render.Renderer
	enricher *enrich.Enricher
}

func New(log *slog.Logger) *Converter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	r := render.New(render.WithLogger(log))
	return &Converter{
		log:      log,
		renderer: r,
		enricher: enrich.New(r, enrich.WithLogger(log)),
	}
}

// Document is the result of one conversion.
type Document struct {
	tree   *doctree.Tree
	vars   *variables.Store
	result enrich.Result
}

// HTML returns the serialized contents of the document body.
func (d *Document) HTML() string { return d.tree.InnerHTML(d.tree.Body()) }

// Attributes returns the public document attributes.
func (d *Document) Attributes() map[string]string { return d.vars.Public() }

// Title returns the document title, or "" when there is none.
func (d *Document) Title() string { return d.vars.Get("doctitle") }

// Tree returns the rendered tree.
func (d *Document) Tree() *doctree.Tree { return d.tree }

// Stats reports what the enrichment pass changed.
func (d *Document) Stats() enrich.Result { return d.result }

// Convert converts src. The context is checked between stages only.
func (c *Converter) Convert(ctx context.Context, src string, opts Options) (*Document, error) {
	return c.convert(ctx, strings.NewReader(src), opts, 0)
}

// ConvertReader is Convert for a reader.
func (c *Converter) ConvertReader(ctx context.Context, r io.Reader, opts Options) (*Document, error) {
	return c.convert(ctx, r, opts, 0)
}

func (c *Converter) convert(ctx context.Context, r io.Reader, opts Options, depth int) (*Document, error) {
	vars := variables.New(opts.Attributes)
	protected := make(map[string]bool, len(opts.Attributes))
	for k := range opts.Attributes {
		protected[strings.TrimSuffix(k, "!")] = true
	}

	popts := parser.Options{
		Legacy:    opts.Legacy || vars.Has("legacy"),
		Protected: protected,
	}
	if depth < maxNesting {
		popts.Nested = func(src string) (*doctree.Tree, error) {
			sub, err := c.convert(ctx, strings.NewReader(src), Options{
				Attributes: maps.Clone(opts.Attributes),
			}, depth+1)
			if err != nil {
				return nil, err
			}
			return sub.tree, nil
		}
	}

	b := builder.New(vars, c.log)
	if err := parser.New(popts, c.log).Parse(r, b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCannotParse, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t := b.Tree()
	c.renderer.Render(t, vars)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := c.enricher.Enrich(t, vars)
	if depth == 0 {
		c.log.Debug("document converted",
			"nodes", t.Len(),
			"passes", res.Passes,
			"toc_entries", res.TOCEntries,
			"footnotes", res.Footnotes,
		)
	}
	return &Document{tree: t, vars: vars, result: res}, nil
}
