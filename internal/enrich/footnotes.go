package enrich

import (
	"strconv"

	"github.com/dgallion1/adocgest/internal/doctree"
	"github.com/dgallion1/adocgest/internal/variables"
)

// appendFootnotes collates the registered footnote bodies into div#footnotes
// at the end of the document and returns how many were written.
func (e *Enricher) appendFootnotes(t *doctree.Tree, vars *variables.Store) int {
	count := vars.Int(variables.FootnoteCount, 0)
	if count <= 0 {
		return 0
	}
	block := t.NewTag("div")
	t.SetAttr(block, "id", "footnotes")
	t.AppendChild(block, t.NewTag("hr"))

	for i := 1; i <= count; i++ {
		n := strconv.Itoa(i)
		div := t.NewTag("div")
		t.SetAttr(div, "id", "_footnotedef_"+n)
		t.AddClass(div, "footnote")
		a := t.NewTag("a")
		t.SetAttr(a, "href", "#_footnoteref_"+n)
		t.AppendChild(a, t.NewText(n))
		t.AppendChild(div, a)
		t.AppendChild(div, t.NewText(". "))

		body := vars.Get(variables.FootnotePrefix + n)
		nodes, err := t.ParseHTML(body)
		if err != nil {
			e.log.Debug("footnote body kept as text", "footnote", i, "error", err)
			nodes = []doctree.NodeID{t.NewText(body)}
		}
		for _, c := range nodes {
			t.AppendChild(div, c)
		}
		t.AppendChild(block, div)
	}
	t.AppendChild(t.Body(), block)
	e.r.RenderNode(t, vars, block)
	return count
}
