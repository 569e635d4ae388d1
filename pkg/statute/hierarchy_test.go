package statute

import (
	"testing"
)

// buildTestHierarchy assembles a small tree by hand:
// root → PART I → heading → s.1 (with subsection (1)).
func buildTestHierarchy(t *testing.T) *Hierarchy {
	t.Helper()
	hierarchy := NewHierarchy("cbca", "Canada Business Corporations Act")

	nodes := []*Node{
		{ID: "cbca_root", Kind: KindAct, Label: "CBCA", Citation: "CBCA"},
		{ID: "cbca_part_i", Kind: KindPart, ParentID: "cbca_root", Label: "PART I", Citation: "CBCA PART I"},
		{ID: "cbca_part_i_heading_interpret", Kind: KindHeading, ParentID: "cbca_part_i", Title: "Interpretation"},
		{ID: "cbca_s1", Kind: KindSection, ParentID: "cbca_part_i_heading_interpret", Label: "1", Citation: "CBCA s. 1"},
		{ID: "cbca_s1_1", Kind: KindSubsection, ParentID: "cbca_s1", Label: "(1)", Citation: "CBCA s. 1(1)"},
	}
	for _, node := range nodes {
		if err := hierarchy.Attach(node); err != nil {
			t.Fatalf("failed to attach %s: %v", node.ID, err)
		}
	}
	return hierarchy
}

func TestAttachRejectsDuplicateID(t *testing.T) {
	hierarchy := buildTestHierarchy(t)

	err := hierarchy.Attach(&Node{ID: "cbca_s1", Kind: KindSection, ParentID: "cbca_part_i"})
	if err == nil {
		t.Fatal("expected error attaching duplicate id")
	}
	if hierarchy.Len() != 5 {
		t.Errorf("expected node count unchanged at 5, got %d", hierarchy.Len())
	}
}

func TestAttachRejectsUnknownParent(t *testing.T) {
	hierarchy := buildTestHierarchy(t)

	err := hierarchy.Attach(&Node{ID: "cbca_s99", Kind: KindSection, ParentID: "cbca_part_ix"})
	if err == nil {
		t.Fatal("expected error attaching node with unknown parent")
	}
}

func TestAttachRejectsSecondRoot(t *testing.T) {
	hierarchy := buildTestHierarchy(t)

	err := hierarchy.Attach(&Node{ID: "other_root", Kind: KindAct})
	if err == nil {
		t.Fatal("expected error attaching a second root")
	}
}

func TestParentChildConsistency(t *testing.T) {
	hierarchy := buildTestHierarchy(t)

	for _, id := range hierarchy.IDs() {
		node := hierarchy.Node(id)

		if node.ParentID != "" {
			parent := hierarchy.Node(node.ParentID)
			if parent == nil {
				t.Fatalf("node %s has missing parent %s", id, node.ParentID)
			}
			occurrences := 0
			for _, childID := range parent.Children {
				if childID == id {
					occurrences++
				}
			}
			if occurrences != 1 {
				t.Errorf("parent %s lists child %s %d times, expected exactly once",
					parent.ID, id, occurrences)
			}
		}

		for _, childID := range node.Children {
			child := hierarchy.Node(childID)
			if child == nil {
				t.Fatalf("node %s lists missing child %s", id, childID)
			}
			if child.ParentID != id {
				t.Errorf("child %s has parent %s, expected %s", childID, child.ParentID, id)
			}
		}
	}
}

func TestPath(t *testing.T) {
	hierarchy := buildTestHierarchy(t)

	path := hierarchy.Path("cbca_s1_1")
	want := []string{"CBCA", "PART I", "Interpretation", "1", "(1)"}
	if len(path) != len(want) {
		t.Fatalf("expected path %v, got %v", want, path)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("path[%d] = %q, expected %q", i, path[i], want[i])
		}
	}

	if path := hierarchy.Path("no_such_node"); path != nil {
		t.Errorf("expected nil path for unknown id, got %v", path)
	}
}

func TestPathPrefersLabelThenTitleThenKind(t *testing.T) {
	hierarchy := buildTestHierarchy(t)

	// The heading has no label, so its title is used; the root uses its label.
	path := hierarchy.Path("cbca_part_i_heading_interpret")
	if path[len(path)-1] != "Interpretation" {
		t.Errorf("expected title segment 'Interpretation', got %q", path[len(path)-1])
	}

	unlabeled := &Node{ID: "cbca_blank", Kind: KindHeading, ParentID: "cbca_part_i"}
	if err := hierarchy.Attach(unlabeled); err != nil {
		t.Fatalf("failed to attach: %v", err)
	}
	path = hierarchy.Path("cbca_blank")
	if path[len(path)-1] != "heading" {
		t.Errorf("expected kind fallback 'heading', got %q", path[len(path)-1])
	}
}

func TestChildrenResolvesInOrder(t *testing.T) {
	hierarchy := buildTestHierarchy(t)

	for _, extra := range []string{"(2)", "(3)"} {
		node := &Node{
			ID:       "cbca_s1_" + stripParens(extra),
			Kind:     KindSubsection,
			ParentID: "cbca_s1",
			Label:    extra,
		}
		if err := hierarchy.Attach(node); err != nil {
			t.Fatalf("failed to attach: %v", err)
		}
	}

	children := hierarchy.Children("cbca_s1")
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}
	labels := []string{children[0].Label, children[1].Label, children[2].Label}
	if labels[0] != "(1)" || labels[1] != "(2)" || labels[2] != "(3)" {
		t.Errorf("children out of order: %v", labels)
	}

	if children := hierarchy.Children("no_such_node"); children != nil {
		t.Errorf("expected nil children for unknown id, got %v", children)
	}
}

func TestUniqueIDProbing(t *testing.T) {
	hierarchy := buildTestHierarchy(t)

	candidate := "cbca_part_i_heading_interpret"
	first := hierarchy.UniqueID(candidate)
	if first != candidate+"_1" {
		t.Errorf("expected first probe %q, got %q", candidate+"_1", first)
	}

	if err := hierarchy.Attach(&Node{ID: first, Kind: KindHeading, ParentID: "cbca_part_i"}); err != nil {
		t.Fatalf("failed to attach: %v", err)
	}
	second := hierarchy.UniqueID(candidate)
	if second != candidate+"_2" {
		t.Errorf("expected second probe %q, got %q", candidate+"_2", second)
	}

	if free := hierarchy.UniqueID("cbca_never_used"); free != "cbca_never_used" {
		t.Errorf("expected free candidate returned unchanged, got %q", free)
	}
}

func TestNodesOfKindAndStats(t *testing.T) {
	hierarchy := buildTestHierarchy(t)

	sections := hierarchy.Sections()
	if len(sections) != 1 || sections[0].ID != "cbca_s1" {
		t.Fatalf("unexpected sections: %v", sections)
	}
	if headings := hierarchy.NodesOfKind(KindHeading); len(headings) != 1 {
		t.Errorf("expected 1 heading, got %d", len(headings))
	}

	stats := hierarchy.Stats()
	if stats.TotalNodes != 5 {
		t.Errorf("expected 5 total nodes, got %d", stats.TotalNodes)
	}
	if stats.Parts != 1 || stats.Sections != 1 || stats.Subsections != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.Paragraphs != 0 || stats.Subparagraphs != 0 {
		t.Errorf("expected zero paragraph counts, got %+v", stats)
	}
}
