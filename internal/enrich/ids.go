package enrich

import "github.com/dgallion1/adocgest/internal/doctree"

// StripDuplicateIDs removes the id attribute from every element whose id was
// already used earlier in document order. It returns the number removed and
// is idempotent.
func StripDuplicateIDs(t *doctree.Tree) int {
	seen := make(map[string]bool)
	stripped := 0
	for _, n := range t.Descendants(t.Body()) {
		if !t.IsElement(n) {
			continue
		}
		id, ok := t.LookupAttr(n, "id")
		if !ok {
			continue
		}
		if seen[id] {
			t.RemoveAttr(n, "id")
			stripped++
			continue
		}
		seen[id] = true
	}
	return stripped
}
