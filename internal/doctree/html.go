package doctree

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// InnerHTML serializes the children of id.
func (t *Tree) InnerHTML(id NodeID) string {
	var b strings.Builder
	for _, c := range t.n(id).children {
		if err := html.Render(&b, t.htmlNode(c)); err != nil {
			// Only void elements with children fail; emit what was written.
			continue
		}
	}
	return b.String()
}

// OuterHTML serializes id itself.
func (t *Tree) OuterHTML(id NodeID) string {
	var b strings.Builder
	_ = html.Render(&b, t.htmlNode(id))
	return b.String()
}

func (t *Tree) htmlNode(id NodeID) *html.Node {
	nd := t.n(id)
	if nd.kind == KindText {
		return &html.Node{Type: html.TextNode, Data: nd.text}
	}
	tag := t.Tag(id)
	hn := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	if v, ok := t.LookupAttr(id, "id"); ok {
		hn.Attr = append(hn.Attr, html.Attribute{Key: "id", Val: v})
	}
	if len(nd.classes) > 0 {
		hn.Attr = append(hn.Attr, html.Attribute{Key: "class", Val: strings.Join(nd.classes, " ")})
	}
	for _, a := range nd.attrs {
		if a.Key == "id" {
			continue
		}
		hn.Attr = append(hn.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, c := range nd.children {
		hn.AppendChild(t.htmlNode(c))
	}
	return hn
}

// ParseHTML parses an HTML fragment in body context and returns the new,
// detached top-level nodes. Every created element is left unrendered.
// Comments and doctypes are dropped.
func (t *Tree) ParseHTML(fragment string) ([]NodeID, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}
	var out []NodeID
	for _, hn := range nodes {
		if id, ok := t.fromHTML(hn); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (t *Tree) fromHTML(hn *html.Node) (NodeID, bool) {
	switch hn.Type {
	case html.TextNode:
		return t.NewText(hn.Data), true
	case html.ElementNode:
		id := t.NewTag(hn.Data)
		t.SetRendered(id, false)
		for _, a := range hn.Attr {
			if a.Namespace != "" {
				continue
			}
			if a.Key == "class" {
				t.AddClass(id, strings.Fields(a.Val)...)
				continue
			}
			t.SetAttr(id, a.Key, a.Val)
		}
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if cid, ok := t.fromHTML(c); ok {
				t.AppendChild(id, cid)
			}
		}
		return id, true
	}
	return None, false
}
