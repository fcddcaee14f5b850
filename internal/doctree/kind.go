package doctree

// Kind identifies what a node is. Semantic kinds are produced by the builder
// and rewritten into plain HTML by exactly one render rule each; Element is a
// generic HTML tag, Text a text node, Body the synthetic root.
type Kind uint8

const (
	KindBody Kind = iota
	KindText
	KindElement

	KindSection
	KindHeading
	KindParagraph
	KindP
	KindLiteralBlock
	KindListingBlock
	KindPassthroughBlock
	KindInlinePassthrough
	KindMarkdownBlock
	KindAdmonitionBlock
	KindSidebarBlock
	KindExampleBlock
	KindQuoteBlock
	KindVerseBlock
	KindOpenBlock
	KindImageBlock
	KindVideoBlock
	KindImage
	KindTableBlock
	KindTableCell
	KindUnorderedList
	KindOrderedList
	KindDescriptionList
	KindDescriptionTerm
	KindDescriptionDetail
	KindListItem
	KindCalloutList
	KindLink
	KindAnchor
	KindFootnote
	KindMark
	KindTitle
	KindTOC

	// NumKinds is the number of kinds; render rule tables are sized by it.
	NumKinds
)

var kindNames = [NumKinds]string{
	KindBody:              "BODY",
	KindText:              "TEXT",
	KindElement:           "ELEMENT",
	KindSection:           "SECTION",
	KindHeading:           "HEADER",
	KindParagraph:         "PARAGRAPH_BLOCK",
	KindP:                 "P",
	KindLiteralBlock:      "LITERAL_BLOCK",
	KindListingBlock:      "LISTING_BLOCK",
	KindPassthroughBlock:  "PASSTHROUGH_BLOCK",
	KindInlinePassthrough: "PASSTHROUGH",
	KindMarkdownBlock:     "MARKDOWN_BLOCK",
	KindAdmonitionBlock:   "ADMONITION_BLOCK",
	KindSidebarBlock:      "SIDEBAR_BLOCK",
	KindExampleBlock:      "EXAMPLE_BLOCK",
	KindQuoteBlock:        "QUOTE_BLOCK",
	KindVerseBlock:        "VERSE_BLOCK",
	KindOpenBlock:         "OPEN_BLOCK",
	KindImageBlock:        "IMAGE_BLOCK",
	KindVideoBlock:        "VIDEO_BLOCK",
	KindImage:             "IMAGE",
	KindTableBlock:        "TABLE_BLOCK",
	KindTableCell:         "TABLE_CELL",
	KindUnorderedList:     "UL",
	KindOrderedList:       "OL",
	KindDescriptionList:   "DL",
	KindDescriptionTerm:   "DT",
	KindDescriptionDetail: "DD",
	KindListItem:          "LIST_ITEM",
	KindCalloutList:       "COL",
	KindLink:              "LINK",
	KindAnchor:            "ANCHOR",
	KindFootnote:          "FOOTNOTE",
	KindMark:              "MARK",
	KindTitle:             "TITLE",
	KindTOC:               "TOC",
}

func (k Kind) String() string {
	if k < NumKinds && kindNames[k] != "" {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// IsSemantic reports whether k needs a render rule other than the generic one.
func (k Kind) IsSemantic() bool {
	return k >= KindSection && k < NumKinds
}

// IsBlock reports whether k is a leaf-level block: the kinds whose closing
// ends a block scope in the builder.
func (k Kind) IsBlock() bool {
	switch k {
	case KindParagraph, KindLiteralBlock, KindListingBlock, KindPassthroughBlock,
		KindMarkdownBlock, KindAdmonitionBlock, KindSidebarBlock, KindExampleBlock,
		KindQuoteBlock, KindVerseBlock, KindOpenBlock, KindImageBlock,
		KindVideoBlock, KindTableBlock:
		return true
	}
	return false
}

// IsList reports whether k is one of the list container kinds.
func (k Kind) IsList() bool {
	switch k {
	case KindUnorderedList, KindOrderedList, KindDescriptionList, KindCalloutList:
		return true
	}
	return false
}
