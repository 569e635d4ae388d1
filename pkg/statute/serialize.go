package statute

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Document is the stable JSON form of a completed hierarchy. The key set and
// field names are part of the external interface and must not change across
// versions; downstream indexing depends on them.
type Document struct {
	ActCode string           `json:"act_code"`
	ActName string           `json:"act_name"`
	RootID  string           `json:"root_id"`
	Nodes   map[string]*Node `json:"nodes"`
	Stats   Stats            `json:"stats"`
}

// Marshal renders the hierarchy as an indented JSON document. Object keys are
// emitted in sorted order, so identical trees marshal to identical bytes.
func Marshal(hierarchy *Hierarchy) ([]byte, error) {
	if hierarchy == nil {
		return nil, fmt.Errorf("hierarchy is nil")
	}

	document := Document{
		ActCode: hierarchy.ActCode,
		ActName: hierarchy.ActName,
		RootID:  hierarchy.RootID,
		Nodes:   hierarchy.Nodes(),
		Stats:   hierarchy.Stats(),
	}
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal hierarchy: %w", err)
	}
	return data, nil
}

// WriteFile marshals the hierarchy and writes it to the given path, creating
// parent directories as needed.
func WriteFile(hierarchy *Hierarchy, path string) error {
	data, err := Marshal(hierarchy)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write hierarchy to %s: %w", path, err)
	}
	return nil
}

// Load reconstructs a hierarchy from its JSON document form. Insertion order
// is recovered by a preorder walk from the root following children lists,
// which by construction reflect document order.
func Load(data []byte) (*Hierarchy, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty hierarchy document")
	}

	var document Document
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hierarchy document: %w", err)
	}
	if _, exists := document.Nodes[document.RootID]; !exists {
		return nil, fmt.Errorf("hierarchy document has no root node %q", document.RootID)
	}

	hierarchy := &Hierarchy{
		ActCode: document.ActCode,
		ActName: document.ActName,
		RootID:  document.RootID,
		nodes:   make(map[string]*Node, len(document.Nodes)),
	}

	// Preorder traversal; a stack keeps it allocation-light and children are
	// pushed in reverse so they pop in document order.
	stack := []string{document.RootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, exists := document.Nodes[id]
		if !exists {
			return nil, fmt.Errorf("hierarchy document references missing node %q", id)
		}
		if _, seen := hierarchy.nodes[id]; seen {
			return nil, fmt.Errorf("hierarchy document reaches node %q twice", id)
		}
		hierarchy.nodes[id] = node
		hierarchy.order = append(hierarchy.order, id)

		for index := len(node.Children) - 1; index >= 0; index-- {
			stack = append(stack, node.Children[index])
		}
	}

	if len(hierarchy.nodes) != len(document.Nodes) {
		return nil, fmt.Errorf("hierarchy document has %d nodes unreachable from root",
			len(document.Nodes)-len(hierarchy.nodes))
	}
	return hierarchy, nil
}

// LoadFile reads and reconstructs a hierarchy from a JSON file.
func LoadFile(path string) (*Hierarchy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hierarchy file %s: %w", path, err)
	}
	return Load(data)
}
