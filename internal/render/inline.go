package render

import (
	"path"
	"strconv"
	"strings"

	"github.com/dgallion1/adocgest/internal/doctree"
	"github.com/dgallion1/adocgest/internal/variables"
)

// Link properties set by the parser.
const (
	LinkToID         = "to-id"
	LinkToIDContents = "to-id-contents"
)

func renderLink(r *Renderer, c *ruleCtx) {
	t, id, props := c.t, c.id, c.props
	t.SetTag(id, "a")

	if target, ok := props.Lookup(LinkToID); ok {
		renderXref(r, c, target)
		return
	}

	href := t.Attr(id, "href")
	window := props.Get("window")
	if strings.HasSuffix(t.TextContent(id), "^") && window == "" {
		window = "_blank"
		trimTrailingCaret(t, id)
	}
	if window != "" {
		t.SetAttr(id, "target", window)
		t.SetAttr(id, "rel", "noopener")
	}
	if len(t.ElementChildren(id)) == 0 && strings.TrimSpace(t.TextContent(id)) == "" {
		t.RemoveChildren(id)
		appendText(t, id, href)
		t.AddClass(id, "bare")
	}
}

func trimTrailingCaret(t *doctree.Tree, id doctree.NodeID) {
	last := t.LastChild(id)
	if last == doctree.None || t.IsElement(last) {
		return
	}
	t.SetText(last, strings.TrimSuffix(t.Text(last), "^"))
}

// renderXref resolves a cross reference. Link text comes from explicit
// children, the to-id-contents property, the registered anchor text, the
// target's own text, or finally the bracketed id.
func renderXref(r *Renderer, c *ruleCtx, target string) {
	t, id, vars := c.t, c.id, c.vars

	if doc, frag, ok := strings.Cut(target, "#"); ok && doc != "" {
		href := strings.TrimSuffix(doc, ".adoc") + ".html#" + frag
		t.SetAttr(id, "href", href)
		if t.ChildCount(id) == 0 {
			appendText(t, id, strings.TrimSuffix(doc, ".adoc")+".html")
		}
		return
	}
	target = strings.TrimPrefix(target, "#")
	t.SetAttr(id, "href", "#"+target)

	if t.ChildCount(id) > 0 {
		return
	}
	if contents, ok := c.props.Lookup(LinkToIDContents); ok {
		appendText(t, id, contents)
		return
	}

	num, numbered := vars.Lookup(variables.SectnumPrefix + target)
	style := vars.Get("xrefstyle")
	if numbered && style == "short" {
		appendText(t, id, num)
		return
	}

	if anchor, ok := vars.Lookup(variables.AnchorPrefix + target); ok {
		nodes, err := t.ParseHTML(anchor)
		if err != nil {
			r.log.Debug("anchor text kept as plain text", "id", target, "error", err)
			nodes = []doctree.NodeID{t.NewText(anchor)}
		}
		if numbered && style == "full" {
			appendText(t, id, num+", “")
			for _, n := range nodes {
				t.AppendChild(id, n)
			}
			appendText(t, id, "”")
			return
		}
		for _, n := range nodes {
			t.AppendChild(id, n)
		}
		return
	}

	if text := targetText(t, target); text != "" {
		appendText(t, id, text)
		return
	}
	appendText(t, id, "["+target+"]")
}

// targetText returns the visible text of the element carrying id. For a
// section that is its heading text.
func targetText(t *doctree.Tree, id string) string {
	n := t.FindByID(id)
	if n == doctree.None {
		return ""
	}
	if t.Kind(n) == doctree.KindSection {
		if h := t.ChildOfKind(n, doctree.KindHeading); h != doctree.None {
			n = h
		}
	}
	if t.Kind(n) == doctree.KindAnchor && t.ChildCount(n) == 0 {
		return ""
	}
	return strings.TrimSpace(t.TextContent(n))
}

func renderAnchor(_ *Renderer, c *ruleCtx) {
	c.t.SetTag(c.id, "a")
}

func renderFootnote(_ *Renderer, c *ruleCtx) {
	t, id, vars := c.t, c.id, c.vars
	name := c.props.Argument(0)
	t.SetTag(id, "sup")

	if name != "" && strings.TrimSpace(t.TextContent(id)) == "" {
		if ref, ok := vars.Lookup(variables.FootnoteRefPrefix + name); ok {
			t.RemoveChildren(id)
			t.AddClass(id, "footnoteref")
			appendText(t, id, "[")
			a := newTag(t, "a", "footnote")
			t.SetAttr(a, "href", "#_footnotedef_"+ref)
			t.SetAttr(a, "title", "View footnote.")
			appendText(t, a, ref)
			t.AppendChild(id, a)
			appendText(t, id, "]")
			return
		}
	}

	n := vars.Int(variables.FootnoteCount, 0) + 1
	vars.SetInt(variables.FootnoteCount, n)
	num := strconv.Itoa(n)
	vars.Set(variables.FootnotePrefix+num, strings.TrimSpace(t.InnerHTML(id)))
	if name != "" {
		vars.Set(variables.FootnoteRefPrefix+name, num)
		t.SetAttr(id, "id", "_footnote_"+name)
	}

	t.RemoveChildren(id)
	t.AddClass(id, "footnote")
	appendText(t, id, "[")
	a := newTag(t, "a", "footnote")
	t.SetAttr(a, "id", "_footnoteref_"+num)
	t.SetAttr(a, "href", "#_footnotedef_"+num)
	t.SetAttr(a, "title", "View footnote.")
	appendText(t, a, num)
	t.AppendChild(id, a)
	appendText(t, id, "]")
}

func renderMark(_ *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	if len(t.Classes(id)) > 0 || t.HasAttr(id, "id") {
		t.SetTag(id, "span")
		return
	}
	t.SetTag(id, "mark")
}

// renderElement handles generic tags, mostly markup injected for the second
// pass.
func renderElement(_ *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	t.RemoveAttr(id, "level")
	if t.Tag(id) == "mark" && (len(t.Classes(id)) > 0 || t.HasAttr(id, "id")) {
		t.SetTag(id, "span")
	}
}

// imageSource prefixes imagesdir unless src is already a URL, absolute or
// a data URI.
func imageSource(vars *variables.Store, src string) string {
	dir := vars.Get("imagesdir")
	if dir == "" {
		return src
	}
	for _, p := range []string{"http://", "https://", "data:", "/"} {
		if strings.HasPrefix(src, p) {
			return src
		}
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir + src
}

func imageAlt(src string) string {
	base := path.Base(src)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.NewReplacer("-", " ", "_", " ").Replace(base)
}

func renderImage(_ *Renderer, c *ruleCtx) {
	t, id, props, vars := c.t, c.id, c.props, c.vars
	src := t.Attr(id, "src")
	t.RemoveChildren(id)
	t.SetTag(id, "img")
	t.SetAttr(id, "src", imageSource(vars, src))

	alt := props.Argument(0)
	if v, ok := props.Lookup("alt"); ok {
		alt = v
	}
	if alt == "" {
		alt = imageAlt(src)
	}
	t.SetAttr(id, "alt", alt)

	width, height := props.Argument(1), props.Argument(2)
	if w := props.Get("width"); w != "" {
		width = w
	}
	if h := props.Get("height"); h != "" {
		height = h
	}
	if isNumeric(width) {
		t.SetAttr(id, "width", width)
	}
	if isNumeric(height) {
		t.SetAttr(id, "height", height)
	}
	if title, ok := props.Lookup("title"); ok {
		t.SetAttr(id, "title", title)
	}

	outer := id
	if link := props.Get("link"); link != "" {
		a := newTag(t, "a", "image")
		t.SetAttr(a, "href", link)
		t.InsertBefore(id, a)
		t.AppendChild(a, id)
		outer = a
	}

	parent := t.Parent(outer)
	if parent != doctree.None && t.Kind(parent) == doctree.KindImageBlock {
		return
	}
	span := newTag(t, "span", "image")
	t.InsertBefore(outer, span)
	t.AppendChild(span, outer)
	for _, cls := range t.Classes(id) {
		t.AddClass(span, cls)
	}
	t.SetClasses(id, nil)
}

func renderImageBlock(_ *Renderer, c *ruleCtx) {
	t, id := c.t, c.id
	t.SetTag(id, "div")
	t.LeadClasses(id, "imageblock")
	title := t.ChildOfKind(id, doctree.KindTitle)
	content := newTag(t, "div", "content")
	moveExcept(t, id, content, title)
	t.AppendChild(id, content)
	if title != doctree.None {
		t.AppendChild(id, title)
	}
}

func renderVideo(_ *Renderer, c *ruleCtx) {
	t, id, props := c.t, c.id, c.props
	src := t.Attr(id, "src")
	t.RemoveAttr(id, "src")
	t.SetTag(id, "div")
	t.LeadClasses(id, "videoblock")
	title := t.ChildOfKind(id, doctree.KindTitle)
	for _, ch := range t.Children(id) {
		if ch != title {
			t.Detach(ch)
		}
	}

	start, end := props.Get("start"), props.Get("end")
	var video doctree.NodeID
	switch props.Argument(0) {
	case "vimeo":
		video = t.NewTag("iframe")
		u := "https://player.vimeo.com/video/" + src
		if start != "" {
			u += "#at=" + start
		}
		t.SetAttr(video, "src", u)
		t.SetAttr(video, "frameborder", "0")
		t.SetAttr(video, "allowfullscreen", "")
	case "youtube":
		video = t.NewTag("iframe")
		u := "https://www.youtube.com/embed/" + src + "?rel=0"
		if start != "" {
			u += "&start=" + start
		}
		if end != "" {
			u += "&end=" + end
		}
		t.SetAttr(video, "src", u)
		t.SetAttr(video, "frameborder", "0")
		t.SetAttr(video, "allowfullscreen", "")
	default:
		video = t.NewTag("video")
		u := src
		switch {
		case start != "" && end != "":
			u += "#t=" + start + "," + end
		case start != "":
			u += "#t=" + start
		case end != "":
			u += "#t=0," + end
		}
		t.SetAttr(video, "src", u)
		t.SetAttr(video, "controls", "")
		appendText(t, video, "Your browser does not support the video tag.")
	}
	if w := props.Get("width"); w != "" {
		t.SetAttr(video, "width", w)
	}
	if h := props.Get("height"); h != "" {
		t.SetAttr(video, "height", h)
	}
	for _, opt := range props.Options {
		t.SetAttr(video, opt, "")
	}

	content := newTag(t, "div", "content")
	t.AppendChild(content, video)
	t.AppendChild(id, content)
	if title != doctree.None {
		t.AppendChild(id, title)
	}
}
