package statute

import (
	"fmt"

	"github.com/samber/lo"
)

// Hierarchy is the container for one Act's complete statute tree: an id→node
// map plus the act-level identity. It is the sole mutator of its nodes. The
// tree is populated monotonically during a single document walk (no
// deletions, no re-parenting) and treated as immutable afterward.
type Hierarchy struct {
	ActCode string
	ActName string
	RootID  string

	nodes map[string]*Node
	// order records insertion order so query results and serialization are
	// deterministic; map iteration alone is not.
	order []string
}

// Stats summarizes a hierarchy: total node count plus count per kind.
type Stats struct {
	TotalNodes    int `json:"total_nodes"`
	Parts         int `json:"parts"`
	Sections      int `json:"sections"`
	Subsections   int `json:"subsections"`
	Paragraphs    int `json:"paragraphs"`
	Subparagraphs int `json:"subparagraphs"`
}

// NewHierarchy creates an empty hierarchy for the given act.
func NewHierarchy(actCode string, actName string) *Hierarchy {
	return &Hierarchy{
		ActCode: actCode,
		ActName: actName,
		RootID:  RootID(actCode),
		nodes:   make(map[string]*Node),
	}
}

// Attach inserts a node into the hierarchy and links it to its parent's
// children list. The two effects are performed together so a node is never
// visible to queries in only one of the two states.
//
// The node's ID must not already exist. A node with an empty ParentID is the
// act root and may only be attached to an empty hierarchy; every other node's
// parent must already be present.
func (hierarchy *Hierarchy) Attach(node *Node) error {
	if node.ID == "" {
		return fmt.Errorf("node has no identifier")
	}
	if _, exists := hierarchy.nodes[node.ID]; exists {
		return fmt.Errorf("duplicate node identifier %q", node.ID)
	}

	if node.ParentID == "" {
		if len(hierarchy.nodes) > 0 {
			return fmt.Errorf("root node %q attached to non-empty hierarchy", node.ID)
		}
	} else if _, exists := hierarchy.nodes[node.ParentID]; !exists {
		return fmt.Errorf("parent %q of node %q not found", node.ParentID, node.ID)
	}

	if node.Children == nil {
		node.Children = make([]string, 0)
	}

	hierarchy.nodes[node.ID] = node
	hierarchy.order = append(hierarchy.order, node.ID)
	if node.ParentID != "" {
		parent := hierarchy.nodes[node.ParentID]
		parent.Children = append(parent.Children, node.ID)
	}
	return nil
}

// Node returns the node with the given id, or nil if absent.
func (hierarchy *Hierarchy) Node(id string) *Node {
	return hierarchy.nodes[id]
}

// Len returns the total number of nodes.
func (hierarchy *Hierarchy) Len() int {
	return len(hierarchy.nodes)
}

// Contains reports whether a node with the given id exists.
func (hierarchy *Hierarchy) Contains(id string) bool {
	_, exists := hierarchy.nodes[id]
	return exists
}

// UniqueID disambiguates a candidate identifier against the nodes already in
// the hierarchy by appending "_1", "_2", … until the result is unused. The
// candidate itself is returned when it is already free.
func (hierarchy *Hierarchy) UniqueID(candidate string) string {
	if !hierarchy.Contains(candidate) {
		return candidate
	}
	for counter := 1; ; counter++ {
		probe := fmt.Sprintf("%s_%d", candidate, counter)
		if !hierarchy.Contains(probe) {
			return probe
		}
	}
}

// Path returns the hierarchy path from the root to the given node as a label
// sequence, e.g. ["CBCA", "PART X", "122", "(1)"]. For each node the label is
// preferred, then the title, then the kind. An unknown id yields nil.
func (hierarchy *Hierarchy) Path(id string) []string {
	var path []string
	for currentID := id; currentID != ""; {
		node := hierarchy.nodes[currentID]
		if node == nil {
			break
		}
		path = append(path, nodeDisplay(node))
		currentID = node.ParentID
	}
	return lo.Reverse(path)
}

// nodeDisplay picks the display string for a path segment: label, then
// title, then kind, first non-empty wins.
func nodeDisplay(node *Node) string {
	if node.Label != "" {
		return node.Label
	}
	if node.Title != "" {
		return node.Title
	}
	return string(node.Kind)
}

// Children resolves a node's child ids to nodes, preserving order. Ids that
// fail to resolve are silently omitted; under the attachment invariants this
// should not occur.
func (hierarchy *Hierarchy) Children(id string) []*Node {
	node := hierarchy.nodes[id]
	if node == nil {
		return nil
	}
	return lo.FilterMap(node.Children, func(childID string, _ int) (*Node, bool) {
		child, exists := hierarchy.nodes[childID]
		return child, exists
	})
}

// NodesOfKind returns all nodes of the given kind in insertion order.
func (hierarchy *Hierarchy) NodesOfKind(kind Kind) []*Node {
	return lo.FilterMap(hierarchy.order, func(id string, _ int) (*Node, bool) {
		node := hierarchy.nodes[id]
		return node, node.Kind == kind
	})
}

// Sections returns all section nodes in document order.
func (hierarchy *Hierarchy) Sections() []*Node {
	return hierarchy.NodesOfKind(KindSection)
}

// Nodes returns the underlying id→node map. Callers must treat it as
// read-only once the walk has completed.
func (hierarchy *Hierarchy) Nodes() map[string]*Node {
	return hierarchy.nodes
}

// IDs returns all node ids in insertion order.
func (hierarchy *Hierarchy) IDs() []string {
	return append([]string(nil), hierarchy.order...)
}

// Stats computes summary statistics on demand. The tree is only read after
// the walk completes, so nothing is cached.
func (hierarchy *Hierarchy) Stats() Stats {
	counts := lo.CountValuesBy(hierarchy.order, func(id string) Kind {
		return hierarchy.nodes[id].Kind
	})
	return Stats{
		TotalNodes:    len(hierarchy.nodes),
		Parts:         counts[KindPart],
		Sections:      counts[KindSection],
		Subsections:   counts[KindSubsection],
		Paragraphs:    counts[KindParagraph],
		Subparagraphs: counts[KindSubparagraph],
	}
}
