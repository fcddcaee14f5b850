package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/adocgest/internal/attrlist"
	"github.com/dgallion1/adocgest/internal/doctree"
	"github.com/dgallion1/adocgest/internal/variables"
)

func TestBuilder_OpenCloseNearest(t *testing.T) {
	b := New(nil, nil)
	tr := b.Tree()
	ex := b.OpenElement(doctree.KindExampleBlock)
	para := b.OpenElement(doctree.KindParagraph)
	b.AppendText("hello")

	closed := b.CloseElement(doctree.KindParagraph)
	assert.Equal(t, para, closed)
	assert.Equal(t, ex, b.Cursor())
	assert.Equal(t, "hello", tr.TextContent(para))
}

func TestBuilder_CloseWithoutMatchIsNoop(t *testing.T) {
	b := New(nil, nil)
	p := b.OpenElement(doctree.KindParagraph)
	assert.Equal(t, doctree.None, b.CloseElement(doctree.KindTableBlock))
	assert.Equal(t, p, b.Cursor())
	assert.Equal(t, doctree.None, b.CloseToElement(doctree.KindSection))
	assert.Equal(t, p, b.Cursor())
}

func TestBuilder_CloseToElementKeepsMatch(t *testing.T) {
	b := New(nil, nil)
	sec := b.OpenElement(doctree.KindSection)
	b.OpenElement(doctree.KindSidebarBlock)
	b.OpenElement(doctree.KindParagraph)
	b.CloseToElement(doctree.KindSection)
	assert.Equal(t, sec, b.Cursor())
}

func TestBuilder_CloseElementTopUnwindsNestedLists(t *testing.T) {
	b := New(nil, nil)
	outer := b.OpenElement(doctree.KindUnorderedList)
	b.OpenElement(doctree.KindListItem)
	b.OpenElement(doctree.KindUnorderedList)
	b.OpenElement(doctree.KindListItem)

	assert.Equal(t, outer, b.CloseElementTop(doctree.KindUnorderedList))
	assert.Equal(t, b.Tree().Body(), b.Cursor())
}

func TestBuilder_LevelScopes(t *testing.T) {
	b := New(nil, nil)
	l1 := b.OpenElement(doctree.KindOrderedList)
	b.SetAttr("level", "1")
	b.OpenElement(doctree.KindListItem)
	b.OpenElement(doctree.KindOrderedList)
	b.SetAttr("level", "2")
	b.OpenElement(doctree.KindListItem)

	assert.True(t, b.IsInsideLevel(doctree.KindOrderedList, 2))
	assert.Equal(t, l1, b.NearestLevel(doctree.KindOrderedList, 1))
	assert.Equal(t, doctree.None, b.NearestLevel(doctree.KindOrderedList, 3))
	assert.Equal(t, l1, b.CloseToLevel(doctree.KindOrderedList, 1))
	assert.Equal(t, l1, b.Cursor())
}

func TestBuilder_CloseSections(t *testing.T) {
	b := New(nil, nil)
	pre := b.OpenElement(doctree.KindSection)
	b.SetAttr("level", "1")
	b.OpenElement(doctree.KindParagraph)
	b.CloseSections(2)
	assert.Equal(t, b.Tree().Body(), b.Cursor())

	s2 := b.OpenElement(doctree.KindSection)
	b.SetAttr("level", "2")
	s3 := b.OpenElement(doctree.KindSection)
	b.SetAttr("level", "3")
	b.CloseSections(3)
	assert.Equal(t, s2, b.Cursor())
	assert.NotEqual(t, pre, s3)
}

func TestBuilder_CloseBlockElement(t *testing.T) {
	b := New(nil, nil)
	tr := b.Tree()
	sec := b.OpenElement(doctree.KindSection)
	ex := b.OpenElement(doctree.KindExampleBlock)
	para := b.OpenElement(doctree.KindParagraph)
	b.AppendText("text  \n")
	b.CloseBlockElement()

	assert.Equal(t, sec, b.Cursor())
	assert.Equal(t, "text", tr.TextContent(para))
	require.True(t, b.ResumeBlockParent())
	assert.Equal(t, ex, b.Cursor())
}

func TestBuilder_ResumeBlockParentIgnoresDetached(t *testing.T) {
	b := New(nil, nil)
	ex := b.OpenElement(doctree.KindExampleBlock)
	b.OpenElement(doctree.KindParagraph)
	b.CloseBlockElement()
	b.Tree().Detach(ex)
	assert.False(t, b.ResumeBlockParent())
	assert.Equal(t, b.Tree().Body(), b.Cursor())
}

func TestBuilder_OpenOrCloseElement(t *testing.T) {
	b := New(nil, nil)
	assert.True(t, b.OpenOrCloseElement(doctree.KindOpenBlock))
	assert.True(t, b.IsInside(doctree.KindOpenBlock))
	assert.False(t, b.OpenOrCloseElement(doctree.KindOpenBlock))
	assert.False(t, b.IsInside(doctree.KindOpenBlock))
}

func TestBuilder_PropertiesPropagate(t *testing.T) {
	vars := variables.New(nil)
	b := New(vars, nil)
	p := attrlist.MustParse("#intro.lead")
	p.Set("reftext", "Intro & more")
	b.SetProperties(p)
	id := b.OpenElement(doctree.KindParagraph)

	tr := b.Tree()
	assert.Equal(t, "intro", tr.Attr(id, "id"))
	assert.Equal(t, []string{"lead"}, tr.Classes(id))
	assert.Same(t, p, tr.Props(id))
	assert.Equal(t, "Intro &amp; more", vars.Get(variables.AnchorPrefix+"intro"))
	assert.False(t, b.HasProperties())
}

func TestBuilder_TextFlushOnCursorMove(t *testing.T) {
	b := New(nil, nil)
	b.OpenElement(doctree.KindParagraph)
	b.AppendText("a ")
	b.OpenTag("strong")
	b.AppendText("b")
	b.CloseTag("strong")
	b.AppendText(" c")
	b.AppendText(" d")
	b.FlushText()
	b.AppendTag("br")
	b.CloseElement(doctree.KindParagraph)

	tr := b.Tree()
	assert.Equal(t, "<paragraph_block>a <strong>b</strong> c d<br/></paragraph_block>", tr.InnerHTML(tr.Body()))
}

func TestBuilder_AppendDocument(t *testing.T) {
	sub := New(nil, nil)
	sub.OpenTag("p")
	sub.AppendText("nested")
	sub.CloseTag("p")

	b := New(nil, nil)
	cell := b.OpenElement(doctree.KindTableCell)
	b.AppendDocument(sub.Tree())
	tr := b.Tree()
	assert.Equal(t, "<p>nested</p>", tr.InnerHTML(cell))
}

func TestBuilder_NextSectionNumber(t *testing.T) {
	b := New(nil, nil)
	assert.Equal(t, "1", b.NextSectionNumber(1))
	assert.Equal(t, "1.1", b.NextSectionNumber(2))
	assert.Equal(t, "1.2", b.NextSectionNumber(2))
	assert.Equal(t, "2", b.NextSectionNumber(1))
	assert.Equal(t, "2.1", b.NextSectionNumber(2))
}
