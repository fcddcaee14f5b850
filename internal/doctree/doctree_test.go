package doctree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_SurgeryAndSerialization(t *testing.T) {
	tr := New()
	div := tr.NewTag("div")
	tr.AddClass(div, "paragraph")
	tr.SetAttr(div, "data-x", "1")
	tr.SetAttr(div, "id", "p1")
	p := tr.NewTag("p")
	tr.AppendChild(div, p)
	tr.AppendChild(p, tr.NewText("a < b"))
	tr.AppendChild(tr.Body(), div)

	assert.Equal(t, `<div id="p1" class="paragraph" data-x="1"><p>a &lt; b</p></div>`, tr.InnerHTML(tr.Body()))
	assert.Equal(t, "a < b", tr.TextContent(div))
	assert.True(t, tr.IsAttached(p))

	tr.Unwrap(div)
	assert.Equal(t, `<p>a &lt; b</p>`, tr.InnerHTML(tr.Body()))
	assert.False(t, tr.IsAttached(div))
}

func TestTree_InsertAndMove(t *testing.T) {
	tr := New()
	a, b, c := tr.NewTag("a"), tr.NewTag("b"), tr.NewTag("i")
	tr.AppendChild(tr.Body(), b)
	tr.InsertBefore(b, a)
	tr.InsertAfter(b, c)
	assert.Equal(t, []NodeID{a, b, c}, tr.Children(tr.Body()))
	assert.Equal(t, a, tr.PrevElementSibling(b))
	assert.Equal(t, c, tr.NextSibling(b))

	box := tr.NewTag("div")
	tr.MoveChildrenAfter(tr.Body(), 1, box)
	tr.AppendChild(tr.Body(), box)
	assert.Equal(t, []NodeID{a, box}, tr.Children(tr.Body()))
	assert.Equal(t, []NodeID{b, c}, tr.Children(box))

	tr.ReplaceWith(a, tr.NewText("x"))
	assert.Equal(t, `x<div><b></b><i></i></div>`, tr.InnerHTML(tr.Body()))
}

func TestTree_ClassesOrder(t *testing.T) {
	tr := New()
	n := tr.NewTag("div")
	tr.AddClass(n, "lead", "lead")
	tr.LeadClasses(n, "paragraph")
	assert.Equal(t, []string{"paragraph", "lead"}, tr.Classes(n))
	tr.RemoveClass(n, "lead")
	assert.False(t, tr.HasClass(n, "lead"))
}

func TestTree_ParseHTMLAndClone(t *testing.T) {
	tr := New()
	nodes, err := tr.ParseHTML(`<p class="x y">hi <b>there</b></p><!-- c -->tail`)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.False(t, tr.Rendered(nodes[0]))
	assert.Equal(t, []string{"x", "y"}, tr.Classes(nodes[0]))

	for _, n := range nodes {
		tr.AppendChild(tr.Body(), n)
	}
	cp := tr.Clone(nodes[0])
	assert.False(t, tr.IsAttached(cp))
	assert.Equal(t, tr.OuterHTML(nodes[0]), tr.OuterHTML(cp))
	assert.Equal(t, `<p class="x y">hi <b>there</b></p>tail`, tr.InnerHTML(tr.Body()))
}

func TestTree_ImportFromOtherTree(t *testing.T) {
	src := New()
	em := src.NewTag("em")
	src.AppendChild(em, src.NewText("sub"))
	src.AppendChild(src.Body(), em)

	dst := New()
	cp := dst.Import(src, em)
	dst.AppendChild(dst.Body(), cp)
	assert.Equal(t, "<em>sub</em>", dst.InnerHTML(dst.Body()))
}

func TestTree_AncestorsAndFind(t *testing.T) {
	tr := New()
	sec := tr.NewElement(KindSection)
	list := tr.NewElement(KindOrderedList)
	item := tr.NewElement(KindListItem)
	tr.AppendChild(tr.Body(), sec)
	tr.AppendChild(sec, list)
	tr.AppendChild(list, item)
	tr.SetAttr(item, "id", "target")

	assert.Equal(t, []NodeID{list, sec}, tr.Ancestors(item))
	assert.Equal(t, item, tr.FindByID("target"))
	assert.Equal(t, list, tr.ChildOfKind(sec, KindOrderedList))
	assert.Equal(t, "ol", tr.Tag(list))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "PARAGRAPH_BLOCK", KindParagraph.String())
	assert.True(t, KindTableBlock.IsBlock())
	assert.False(t, KindSection.IsBlock())
	assert.True(t, KindCalloutList.IsList())
	for k := Kind(0); k < NumKinds; k++ {
		assert.NotEqual(t, "UNKNOWN", k.String(), "kind %d", k)
	}
}
