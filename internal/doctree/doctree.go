// Package doctree is the arena-backed document tree shared by the builder,
// renderer and enricher. Nodes are addressed by NodeID; a detached node stays
// in the arena but is no longer reachable from Body.
package doctree

import (
	"slices"
	"strings"

	"github.com/dgallion1/adocgest/internal/attrlist"
)

// NodeID indexes a node in its Tree.
type NodeID int32

// None is the absent node.
const None NodeID = -1

// Attr is one HTML attribute. Classes are kept separately.
type Attr struct {
	Key string
	Val string
}

type node struct {
	kind     Kind
	tag      string
	text     string
	attrs    []Attr
	classes  []string
	parent   NodeID
	children []NodeID
	props    *attrlist.Properties
	rendered bool
}

// Tree owns every node of one document. It is not safe for concurrent use.
type Tree struct {
	nodes []node
}

// New returns a tree holding only Body.
func New() *Tree {
	t := &Tree{nodes: make([]node, 0, 64)}
	t.nodes = append(t.nodes, node{kind: KindBody, tag: "body", parent: None, rendered: true})
	return t
}

// Body returns the root.
func (t *Tree) Body() NodeID { return 0 }

// Len returns the arena size, detached nodes included.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) n(id NodeID) *node { return &t.nodes[id] }

func (t *Tree) add(nd node) NodeID {
	nd.parent = None
	t.nodes = append(t.nodes, nd)
	return NodeID(len(t.nodes) - 1)
}

// NewElement creates a detached, unrendered node of a semantic kind.
func (t *Tree) NewElement(kind Kind) NodeID {
	return t.add(node{kind: kind})
}

// NewTag creates a detached generic element. It is marked rendered; callers
// that inject markup for a second pass clear the flag.
func (t *Tree) NewTag(tag string) NodeID {
	return t.add(node{kind: KindElement, tag: tag, rendered: true})
}

// NewText creates a detached text node.
func (t *Tree) NewText(s string) NodeID {
	return t.add(node{kind: KindText, text: s, rendered: true})
}

// Kind returns the semantic kind of id.
func (t *Tree) Kind(id NodeID) Kind { return t.n(id).kind }

// Tag returns the output tag, or the lower-cased kind name before rendering.
func (t *Tree) Tag(id NodeID) string {
	nd := t.n(id)
	if nd.tag == "" && nd.kind != KindText {
		return strings.ToLower(nd.kind.String())
	}
	return nd.tag
}

// SetTag sets the output element name.
func (t *Tree) SetTag(id NodeID, tag string) { t.n(id).tag = tag }

// IsElement reports whether id is not a text node.
func (t *Tree) IsElement(id NodeID) bool { return t.n(id).kind != KindText }

// Text returns the content of a text node.
func (t *Tree) Text(id NodeID) string { return t.n(id).text }

// SetText replaces the content of a text node.
func (t *Tree) SetText(id NodeID, s string) { t.n(id).text = s }

// TextContent concatenates all descendant text.
func (t *Tree) TextContent(id NodeID) string {
	var b strings.Builder
	t.textInto(&b, id)
	return b.String()
}

func (t *Tree) textInto(b *strings.Builder, id NodeID) {
	nd := t.n(id)
	if nd.kind == KindText {
		b.WriteString(nd.text)
		return
	}
	for _, c := range nd.children {
		t.textInto(b, c)
	}
}

// Rendered reports whether the render rule for id has run.
func (t *Tree) Rendered(id NodeID) bool { return t.n(id).rendered }

// SetRendered marks id as rendered or pending.
func (t *Tree) SetRendered(id NodeID, v bool) { t.n(id).rendered = v }

// Props returns the retained properties, or nil once consumed.
func (t *Tree) Props(id NodeID) *attrlist.Properties { return t.n(id).props }

// SetProps attaches properties for the render rule to consume.
func (t *Tree) SetProps(id NodeID, p *attrlist.Properties) { t.n(id).props = p }

// TakeProps returns the retained properties and drops them from the node.
func (t *Tree) TakeProps(id NodeID) *attrlist.Properties {
	nd := t.n(id)
	p := nd.props
	nd.props = nil
	return p
}

// Attributes

// Attr returns the attribute value, or "" when unset.
func (t *Tree) Attr(id NodeID, key string) string {
	v, _ := t.LookupAttr(id, key)
	return v
}

// LookupAttr returns the attribute value and whether it is set.
func (t *Tree) LookupAttr(id NodeID, key string) (string, bool) {
	for _, a := range t.n(id).attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether key is set on id.
func (t *Tree) HasAttr(id NodeID, key string) bool {
	_, ok := t.LookupAttr(id, key)
	return ok
}

// SetAttr sets key, keeping its position when it already exists.
func (t *Tree) SetAttr(id NodeID, key, val string) {
	nd := t.n(id)
	for i := range nd.attrs {
		if nd.attrs[i].Key == key {
			nd.attrs[i].Val = val
			return
		}
	}
	nd.attrs = append(nd.attrs, Attr{Key: key, Val: val})
}

// RemoveAttr deletes key from id.
func (t *Tree) RemoveAttr(id NodeID, key string) {
	nd := t.n(id)
	nd.attrs = slices.DeleteFunc(nd.attrs, func(a Attr) bool { return a.Key == key })
}

// Attrs returns a copy of the attribute list.
func (t *Tree) Attrs(id NodeID) []Attr { return slices.Clone(t.n(id).attrs) }

// Classes

// Classes returns a copy of the class list.
func (t *Tree) Classes(id NodeID) []string { return slices.Clone(t.n(id).classes) }

// HasClass reports whether id carries cls.
func (t *Tree) HasClass(id NodeID, cls string) bool {
	return slices.Contains(t.n(id).classes, cls)
}

// AddClass appends classes not already present.
func (t *Tree) AddClass(id NodeID, classes ...string) {
	nd := t.n(id)
	for _, c := range classes {
		if c != "" && !slices.Contains(nd.classes, c) {
			nd.classes = append(nd.classes, c)
		}
	}
}

// RemoveClass deletes cls from id.
func (t *Tree) RemoveClass(id NodeID, cls string) {
	nd := t.n(id)
	nd.classes = slices.DeleteFunc(nd.classes, func(c string) bool { return c == cls })
}

// LeadClasses puts classes first, in order, followed by the remaining
// existing classes.
func (t *Tree) LeadClasses(id NodeID, classes ...string) {
	nd := t.n(id)
	out := make([]string, 0, len(classes)+len(nd.classes))
	for _, c := range classes {
		if c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	for _, c := range nd.classes {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	nd.classes = out
}

// SetClasses replaces the class list.
func (t *Tree) SetClasses(id NodeID, classes []string) {
	t.n(id).classes = slices.Clone(classes)
}
