package render

import (
	"bytes"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dgallion1/adocgest/internal/doctree"
)

func renderParagraph(_ *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	t.SetTag(id, "div")
	t.LeadClasses(id, "paragraph")
	title := t.ChildOfKind(id, doctree.KindTitle)
	p := newTag(t, "p")
	moveExcept(t, id, p, title)
	t.AppendChild(id, p)
}

func renderP(_ *Renderer, c *ruleCtx) {
	c.t.SetTag(c.id, "p")
}

// wrapBlock turns id into div.<class> holding an optional leading title and
// a div.content wrapping everything else. It returns the content div.
func wrapBlock(t *doctree.Tree, id doctree.NodeID, class string) doctree.NodeID {
	t.SetTag(id, "div")
	t.LeadClasses(id, class)
	title := t.ChildOfKind(id, doctree.KindTitle)
	content := newTag(t, "div", "content")
	moveExcept(t, id, content, title)
	t.AppendChild(id, content)
	return content
}

func renderLiteral(_ *Renderer, c *ruleCtx) {
	t := c.t
	class := "literalblock"
	if c.props.Argument(0) == "listing" {
		class = "listingblock"
	}
	content := wrapBlock(t, c.id, class)
	pre := newTag(t, "pre")
	t.MoveChildren(content, pre)
	t.AppendChild(content, pre)
	if c.props.HasOption("nowrap") {
		t.AddClass(pre, "nowrap")
	}
}

func renderListing(r *Renderer, c *ruleCtx) {
	t := c.t
	content := wrapBlock(t, c.id, "listingblock")
	pre := newTag(t, "pre")
	if c.props.HasOption("nowrap") {
		t.AddClass(pre, "nowrap")
	}
	if c.props.Argument(0) != "source" {
		t.MoveChildren(content, pre)
		t.AppendChild(content, pre)
		return
	}

	lang := c.props.Argument(1)
	if lang == "" {
		lang = c.vars.Get("source-language")
	}
	t.AddClass(pre, "highlight")
	code := newTag(t, "code")
	if lang != "" {
		t.AddClass(code, "language-"+lang)
		t.SetAttr(code, "data-lang", lang)
	}
	t.MoveChildren(content, code)
	if c.vars.Get("source-highlighter") == "chroma" && lang != "" {
		if highlight(t, code, lang) {
			t.AddClass(pre, "chroma")
		}
	}
	t.AppendChild(pre, code)
	t.AppendChild(content, pre)
}

func renderAdmonition(_ *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	kind := strings.ToLower(t.Attr(id, "type"))
	if kind == "" {
		kind = strings.ToLower(c.props.Argument(0))
	}
	t.RemoveAttr(id, "type")
	t.SetTag(id, "div")
	t.LeadClasses(id, "admonitionblock", kind)

	label := c.vars.GetOr(kind+"-caption", cases.Title(language.English).String(kind))
	table := newTag(t, "table")
	tbody := newTag(t, "tbody")
	tr := newTag(t, "tr")
	icon := newTag(t, "td", "icon")
	titleDiv := newTag(t, "div", "title")
	appendText(t, titleDiv, label)
	t.AppendChild(icon, titleDiv)
	content := newTag(t, "td", "content")
	t.MoveChildren(id, content)
	t.AppendChild(tr, icon)
	t.AppendChild(tr, content)
	t.AppendChild(tbody, tr)
	t.AppendChild(table, tbody)
	t.AppendChild(id, table)
}

func renderSidebar(_ *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	t.SetTag(id, "div")
	t.LeadClasses(id, "sidebarblock")
	content := newTag(t, "div", "content")
	t.MoveChildren(id, content)
	t.AppendChild(id, content)
}

func renderExample(_ *Renderer, c *ruleCtx) {
	wrapBlock(c.t, c.id, "exampleblock")
}

func renderOpen(_ *Renderer, c *ruleCtx) {
	wrapBlock(c.t, c.id, "openblock")
}

func renderQuote(_ *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	t.SetTag(id, "div")
	t.LeadClasses(id, "quoteblock")
	title := t.ChildOfKind(id, doctree.KindTitle)
	bq := newTag(t, "blockquote")
	moveExcept(t, id, bq, title)
	t.AppendChild(id, bq)
	attribution(t, id, c.props.Argument(1), c.props.Argument(2))
}

func renderVerse(_ *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	t.SetTag(id, "div")
	t.LeadClasses(id, "verseblock")
	title := t.ChildOfKind(id, doctree.KindTitle)
	pre := newTag(t, "pre", "content")
	moveExcept(t, id, pre, title)
	t.AppendChild(id, pre)
	attribution(t, id, c.props.Argument(1), c.props.Argument(2))
}

func attribution(t *doctree.Tree, parent doctree.NodeID, author, cite string) {
	if author == "" && cite == "" {
		return
	}
	div := newTag(t, "div", "attribution")
	if author != "" {
		appendText(t, div, "— "+author)
	}
	if cite != "" {
		if author != "" {
			t.AppendChild(div, t.NewTag("br"))
		}
		ct := newTag(t, "cite")
		appendText(t, ct, cite)
		t.AppendChild(div, ct)
	}
	t.AppendChild(parent, div)
}

// renderPassthrough replaces the node with its raw text parsed as HTML. The
// parsed elements are unrendered and picked up by the re-walk.
func renderPassthrough(r *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	raw := t.TextContent(id)
	nodes, err := t.ParseHTML(raw)
	if err != nil {
		r.log.Warn("pass-through content kept as text", "error", err)
		t.ReplaceWith(id, t.NewText(raw))
		return
	}
	t.ReplaceWith(id, nodes...)
}

func renderMarkdown(r *Renderer, c *ruleCtx) {
	t := c.t
	title := t.ChildOfKind(c.id, doctree.KindTitle)
	var sb strings.Builder
	for _, ch := range t.Children(c.id) {
		if ch != title {
			sb.WriteString(t.TextContent(ch))
			t.Detach(ch)
		}
	}
	src := sb.String()
	content := wrapBlock(t, c.id, "openblock")
	t.AddClass(c.id, "markdown")

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		r.log.Warn("markdown block kept as text", "error", err)
		appendText(t, content, src)
		return
	}
	nodes, err := t.ParseHTML(buf.String())
	if err != nil {
		appendText(t, content, src)
		return
	}
	for _, n := range nodes {
		t.AppendChild(content, n)
	}
}
