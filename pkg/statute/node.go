// Package statute builds a normalized, addressable hierarchy from a single
// Act's XML document: stable node identifiers, parent/child links, canonical
// legal citations, and associated text. Downstream consumers (retrieval
// indexing, citation lookup) depend on the tree being structurally sound and
// citation-consistent.
package statute

// Kind classifies a node's structural role within the Act hierarchy.
type Kind string

// The fixed set of node kinds, from root to deepest nesting level.
const (
	KindAct          Kind = "act"
	KindPart         Kind = "part"
	KindHeading      Kind = "heading"
	KindSection      Kind = "section"
	KindSubsection   Kind = "subsection"
	KindParagraph    Kind = "paragraph"
	KindSubparagraph Kind = "subparagraph"
)

// Kinds lists every node kind in hierarchy order.
var Kinds = []Kind{
	KindAct, KindPart, KindHeading, KindSection,
	KindSubsection, KindParagraph, KindSubparagraph,
}

// Metadata holds role-specific facts about a node. It is a closed set of
// typed fields rather than an open bag; only the fields relevant to a node's
// kind are populated, the rest stay empty and are omitted from JSON.
type Metadata struct {
	// Act root fields.
	ShortTitle         string `json:"short_title,omitempty"`
	LongTitle          string `json:"long_title,omitempty"`
	ConsolidatedNumber string `json:"consolidated_number,omitempty"`

	// Part fields.
	PartNumber string `json:"part_number,omitempty"`

	// Heading fields.
	Level string `json:"level,omitempty"`

	// Section fields. HasSubsections is a pointer so it serializes for
	// every section, true or false, but never for other kinds.
	Part           string `json:"part,omitempty"`
	HasSubsections *bool  `json:"has_subsections,omitempty"`

	// Containing labels for subsection, paragraph, and subparagraph nodes.
	Section    string `json:"section,omitempty"`
	Subsection string `json:"subsection,omitempty"`
	Paragraph  string `json:"paragraph,omitempty"`
}

// Node is one entry in the statute hierarchy.
//
// ID is globally unique within one Act's tree and immutable once assigned.
// ParentID is empty only for the single act root; Children holds child IDs in
// document order of first appearance. Citation is fully determined by the
// chain of labels from root to node and is never mutated after creation.
type Node struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"kind"`
	ParentID string   `json:"parent_id"`
	Children []string `json:"children"`
	ActName  string   `json:"act_name"`
	Label    string   `json:"label"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Citation string   `json:"citation"`
	Metadata Metadata `json:"metadata"`
}

// IsRoot reports whether the node is the act root.
func (node *Node) IsRoot() bool {
	return node.ParentID == ""
}

// boolPtr returns a pointer to the given bool, for Metadata.HasSubsections.
func boolPtr(value bool) *bool {
	return &value
}
