package doctree

import "slices"

// Parent returns the parent of id, or None when detached.
func (t *Tree) Parent(id NodeID) NodeID { return t.n(id).parent }

// Children returns a copy of the child list, safe to iterate while mutating.
func (t *Tree) Children(id NodeID) []NodeID { return slices.Clone(t.n(id).children) }

// ChildCount returns the number of children, text included.
func (t *Tree) ChildCount(id NodeID) int { return len(t.n(id).children) }

// FirstChild returns the first child, or None.
func (t *Tree) FirstChild(id NodeID) NodeID {
	if c := t.n(id).children; len(c) > 0 {
		return c[0]
	}
	return None
}

// LastChild returns the last child, or None.
func (t *Tree) LastChild(id NodeID) NodeID {
	if c := t.n(id).children; len(c) > 0 {
		return c[len(c)-1]
	}
	return None
}

// ElementChildren returns the non-text children.
func (t *Tree) ElementChildren(id NodeID) []NodeID {
	var out []NodeID
	for _, c := range t.n(id).children {
		if t.IsElement(c) {
			out = append(out, c)
		}
	}
	return out
}

// FirstElementChild returns the first non-text child, or None.
func (t *Tree) FirstElementChild(id NodeID) NodeID {
	for _, c := range t.n(id).children {
		if t.IsElement(c) {
			return c
		}
	}
	return None
}

// ChildOfKind returns the first direct child of kind k.
func (t *Tree) ChildOfKind(id NodeID, k Kind) NodeID {
	for _, c := range t.n(id).children {
		if t.n(c).kind == k {
			return c
		}
	}
	return None
}

// ChildrenOfKind returns the direct children of kind k.
func (t *Tree) ChildrenOfKind(id NodeID, k Kind) []NodeID {
	var out []NodeID
	for _, c := range t.n(id).children {
		if t.n(c).kind == k {
			out = append(out, c)
		}
	}
	return out
}

// Index returns the position of id within its parent, or -1.
func (t *Tree) Index(id NodeID) int {
	p := t.n(id).parent
	if p == None {
		return -1
	}
	return slices.Index(t.n(p).children, id)
}

// PrevSibling returns the node before id under the same parent, or None.
func (t *Tree) PrevSibling(id NodeID) NodeID {
	if i := t.Index(id); i > 0 {
		return t.n(t.n(id).parent).children[i-1]
	}
	return None
}

// NextSibling returns the node after id under the same parent, or None.
func (t *Tree) NextSibling(id NodeID) NodeID {
	i := t.Index(id)
	if i < 0 {
		return None
	}
	siblings := t.n(t.n(id).parent).children
	if i+1 < len(siblings) {
		return siblings[i+1]
	}
	return None
}

// PrevElementSibling skips text nodes.
func (t *Tree) PrevElementSibling(id NodeID) NodeID {
	for s := t.PrevSibling(id); s != None; s = t.PrevSibling(s) {
		if t.IsElement(s) {
			return s
		}
	}
	return None
}

// Detach unlinks id from its parent. The node and its subtree stay intact.
func (t *Tree) Detach(id NodeID) {
	p := t.n(id).parent
	if p == None {
		return
	}
	pn := t.n(p)
	pn.children = slices.DeleteFunc(pn.children, func(c NodeID) bool { return c == id })
	t.n(id).parent = None
}

// AppendChild moves child to the end of parent's children.
func (t *Tree) AppendChild(parent, child NodeID) {
	t.Detach(child)
	pn := t.n(parent)
	pn.children = append(pn.children, child)
	t.n(child).parent = parent
}

// PrependChild moves child to the front of parent's children.
func (t *Tree) PrependChild(parent, child NodeID) {
	t.insertAt(parent, 0, child)
}

func (t *Tree) insertAt(parent NodeID, i int, child NodeID) {
	t.Detach(child)
	pn := t.n(parent)
	if i > len(pn.children) {
		i = len(pn.children)
	}
	pn.children = slices.Insert(pn.children, i, child)
	t.n(child).parent = parent
}

// InsertBefore places n immediately before ref.
func (t *Tree) InsertBefore(ref, n NodeID) {
	if ref == n {
		return
	}
	t.Detach(n)
	p := t.n(ref).parent
	if p == None {
		return
	}
	t.insertAt(p, t.Index(ref), n)
}

// InsertAfter places n immediately after ref.
func (t *Tree) InsertAfter(ref, n NodeID) {
	if ref == n {
		return
	}
	t.Detach(n)
	p := t.n(ref).parent
	if p == None {
		return
	}
	t.insertAt(p, t.Index(ref)+1, n)
}

// MoveChildren appends every child of from to to.
func (t *Tree) MoveChildren(from, to NodeID) {
	for _, c := range t.Children(from) {
		t.AppendChild(to, c)
	}
}

// MoveChildrenAfter appends the children of from starting at index start.
func (t *Tree) MoveChildrenAfter(from NodeID, start int, to NodeID) {
	children := t.Children(from)
	if start >= len(children) {
		return
	}
	for _, c := range children[start:] {
		t.AppendChild(to, c)
	}
}

// RemoveChildren detaches every child of id.
func (t *Tree) RemoveChildren(id NodeID) {
	for _, c := range t.Children(id) {
		t.Detach(c)
	}
}

// Unwrap lifts the children of id into its parent at its position and
// detaches id.
func (t *Tree) Unwrap(id NodeID) {
	if t.n(id).parent == None {
		return
	}
	for _, c := range t.Children(id) {
		t.InsertBefore(id, c)
	}
	t.Detach(id)
}

// ReplaceWith puts nodes where id was and detaches id.
func (t *Tree) ReplaceWith(id NodeID, nodes ...NodeID) {
	if t.n(id).parent == None {
		return
	}
	for _, c := range nodes {
		t.InsertBefore(id, c)
	}
	t.Detach(id)
}

// IsAttached reports whether id is reachable from Body.
func (t *Tree) IsAttached(id NodeID) bool {
	if id < 0 || int(id) >= len(t.nodes) {
		return false
	}
	for cur := id; cur != None; cur = t.n(cur).parent {
		if cur == t.Body() {
			return true
		}
	}
	return false
}

// Ancestors returns the parent chain of id, nearest first, stopping before Body.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for cur := t.n(id).parent; cur != None && cur != t.Body(); cur = t.n(cur).parent {
		out = append(out, cur)
	}
	return out
}

// Descendants returns every node below id in document (pre-)order.
func (t *Tree) Descendants(id NodeID) []NodeID {
	var out []NodeID
	var walk func(NodeID)
	walk = func(n NodeID) {
		for _, c := range t.n(n).children {
			out = append(out, c)
			walk(c)
		}
	}
	walk(id)
	return out
}

// Find returns the first descendant of root in document order matching fn.
func (t *Tree) Find(root NodeID, fn func(NodeID) bool) NodeID {
	for _, d := range t.Descendants(root) {
		if fn(d) {
			return d
		}
	}
	return None
}

// FindAll returns every descendant of root matching fn, in document order.
func (t *Tree) FindAll(root NodeID, fn func(NodeID) bool) []NodeID {
	var out []NodeID
	for _, d := range t.Descendants(root) {
		if fn(d) {
			out = append(out, d)
		}
	}
	return out
}

// FindByID returns the attached element whose id attribute is id.
func (t *Tree) FindByID(id string) NodeID {
	if id == "" {
		return None
	}
	return t.Find(t.Body(), func(n NodeID) bool {
		return t.IsElement(n) && t.Attr(n, "id") == id
	})
}

// Clone deep-copies id into a detached subtree of the same tree.
func (t *Tree) Clone(id NodeID) NodeID {
	return t.Import(t, id)
}

// Import deep-copies node id of src (which may be t) into t, detached.
func (t *Tree) Import(src *Tree, id NodeID) NodeID {
	sn := src.n(id)
	nd := node{
		kind:     sn.kind,
		tag:      sn.tag,
		text:     sn.text,
		attrs:    slices.Clone(sn.attrs),
		classes:  slices.Clone(sn.classes),
		props:    sn.props.Clone(),
		rendered: sn.rendered,
	}
	if nd.kind == KindBody {
		nd.kind, nd.tag = KindElement, "div"
	}
	children := slices.Clone(sn.children)
	cp := t.add(nd)
	for _, c := range children {
		t.AppendChild(cp, t.Import(src, c))
	}
	return cp
}
