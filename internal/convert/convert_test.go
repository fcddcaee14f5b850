package convert

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/adocgest/internal/attrlist"
)

func convert(t *testing.T, src string, opts Options) *Document {
	t.Helper()
	doc, err := New(nil).Convert(context.Background(), src, opts)
	require.NoError(t, err)
	return doc
}

func TestConvertTitleAndSections(t *testing.T) {
	doc := convert(t, "= Guide\n\n== First Steps\n\nHello *world*.\n", Options{})

	html := doc.HTML()
	assert.Equal(t, "Guide", doc.Title())
	assert.Contains(t, html, `<h1>Guide</h1>`)
	assert.Contains(t, html, `<h2 id="_first_steps">First Steps</h2>`)
	assert.Contains(t, html, `<strong>world</strong>`)
}

func TestConvertCallerAttributesWin(t *testing.T) {
	doc := convert(t, ":product: Other\n:version: 2\n\n{product} v{version}\n", Options{
		Attributes: map[string]string{"product": "Widget"},
	})

	assert.Contains(t, doc.HTML(), "Widget v2")
	attrs := doc.Attributes()
	assert.Equal(t, "Widget", attrs["product"])
	assert.Equal(t, "2", attrs["version"])
	for k := range attrs {
		assert.False(t, strings.ContainsAny(k, ":%"), "internal key %q exposed", k)
	}
}

func TestConvertSyntaxError(t *testing.T) {
	_, err := New(nil).Convert(context.Background(), "[foo=\"bar]\nText\n", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCannotParse)
	assert.ErrorIs(t, err, attrlist.ErrSyntax)
}

func TestConvertDegenerateTableSpecs(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantCol int
		wantTD  int
	}{
		{"negative cols", "[cols=\"-1\"]\n|===\n|a |b\n|===\n", 2, 2},
		{"zero cols", "[cols=\"0\"]\n|===\n|a |b\n|===\n", 2, 2},
		{"huge cols", "[cols=\"1000000000\"]\n|===\n|a\n|===\n", attrlist.MaxColumns, 1},
		{"huge multiplier", "[cols=\"1000000000*\"]\n|===\n|a\n|===\n", attrlist.MaxColumns, 1},
		{"huge cell repeat", "[cols=\"1\"]\n|===\n999999999*|x\n|===\n", 1, attrlist.MaxColumns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := convert(t, tt.src, Options{}).HTML()
			assert.Equal(t, tt.wantCol, strings.Count(html, "<col")-strings.Count(html, "<colgroup"))
			assert.Equal(t, tt.wantTD, strings.Count(html, "<td"))
		})
	}
}

func TestConvertTableWidthsAndFooter(t *testing.T) {
	html := convert(t, "[%autowidth,cols=\"1,2\"]\n|===\n|a |b\n|===\n", Options{}).HTML()
	assert.Contains(t, html, `fit-content`)
	assert.Contains(t, html, `<col style="width: 1%;"/><col style="width: 2%;"/>`)

	html = convert(t, "[%footer,cols=\"2\"]\n|===\n|a |b\n|c |d\n|e\n|===\n", Options{}).HTML()
	foot := html[strings.Index(html, "<tfoot>"):]
	assert.Contains(t, foot, ">d</p>")
	assert.NotContains(t, foot, ">e</p>")
}

func TestConvertBadTitleOnListing(t *testing.T) {
	_, err := New(nil).Convert(context.Background(), ".See image:a.png[\"x]\n----\ncode\n----\n", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCannotParse)
	assert.ErrorIs(t, err, attrlist.ErrSyntax)
}

func TestConvertNestedCell(t *testing.T) {
	doc := convert(t, "|===\na|* one\n* two\n|===\n", Options{})

	html := doc.HTML()
	assert.Contains(t, html, `<li><p>one</p></li>`)
	assert.Contains(t, html, `<li><p>two</p></li>`)
}

func TestConvertFootnotes(t *testing.T) {
	doc := convert(t, "Text.footnote:[A note.]\n", Options{})

	html := doc.HTML()
	assert.Contains(t, html, `<div id="footnotes">`)
	assert.Contains(t, html, `id="_footnotedef_1"`)
	assert.Equal(t, 1, doc.Stats().Footnotes)
}

func TestConvertLegacyAttribute(t *testing.T) {
	src := "Section\n-------\n\ntext\n"

	doc := convert(t, src, Options{Attributes: map[string]string{"legacy": ""}})
	assert.Contains(t, doc.HTML(), `<h2 id="_section">Section</h2>`)

	doc = convert(t, src, Options{})
	assert.NotContains(t, doc.HTML(), "<h2")
}

func TestConvertCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Convert(ctx, "text\n", Options{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestConvertDeterministicAcrossGoroutines(t *testing.T) {
	src := "= Doc\n:toc:\n\n== A\n\n=== B\n\nSee <<_b>>.footnote:[x]\n\n== A\n\n|===\n|1 |2\n|===\n"
	c := New(nil)
	want, err := c.Convert(context.Background(), src, Options{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	got := make([]string, 8)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := c.Convert(context.Background(), src, Options{})
			if err == nil {
				got[i] = doc.HTML()
			}
		}()
	}
	wg.Wait()
	for _, h := range got {
		assert.Equal(t, want.HTML(), h)
	}
}
