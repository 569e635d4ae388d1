// Package actxml provides the XML layer for the Act-markup dialect:
// document loading, namespace-tolerant element lookup, and text flattening.
//
// Act documents published across consolidation revisions are inconsistently
// namespaced (some qualify structural elements, some do not), so every lookup
// here is tolerant: a namespace-qualified attempt first, then a retry that
// matches on local name alone. Absence is represented as nil, never an error.
package actxml

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Parse parses an XML document from the reader into a DOM that preserves
// document order, including interleaved sibling elements of different names.
func Parse(reader io.Reader) (*xmlquery.Node, error) {
	document, err := xmlquery.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return document, nil
}

// ParseFile parses the XML document at the given path.
func ParseFile(path string) (*xmlquery.Node, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	return Parse(file)
}

// LocalTag returns an element's tag name stripped of any namespace qualifier.
// Both "{uri}Name" style qualified names and plain names are handled.
func LocalTag(node *xmlquery.Node) string {
	if node == nil {
		return ""
	}
	tag := node.Data
	if idx := strings.LastIndex(tag, "}"); idx >= 0 {
		return tag[idx+1:]
	}
	return tag
}

// FindTolerant searches the container's descendants (document order) for the
// first element with the given local name. When namespaceURI is non-empty, a
// namespace-qualified pass runs first; if it finds nothing, the search is
// retried matching local name alone. Returns nil when no element matches.
func FindTolerant(container *xmlquery.Node, name string, namespaceURI string) *xmlquery.Node {
	if container == nil {
		return nil
	}
	if namespaceURI != "" {
		if match := findDescendant(container, name, namespaceURI); match != nil {
			return match
		}
	}
	return findDescendant(container, name, "")
}

// findDescendant walks the subtree depth-first looking for an element whose
// local name matches. A non-empty namespaceURI restricts the match.
func findDescendant(container *xmlquery.Node, name string, namespaceURI string) *xmlquery.Node {
	for child := container.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && LocalTag(child) == name {
			if namespaceURI == "" || child.NamespaceURI == namespaceURI {
				return child
			}
		}
		if match := findDescendant(child, name, namespaceURI); match != nil {
			return match
		}
	}
	return nil
}

// Child returns the first direct child element with the given local name,
// regardless of namespace, or nil if there is none.
func Child(node *xmlquery.Node, name string) *xmlquery.Node {
	if node == nil {
		return nil
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && LocalTag(child) == name {
			return child
		}
	}
	return nil
}

// Children returns all direct child elements with the given local name, in
// document order.
func Children(node *xmlquery.Node, name string) []*xmlquery.Node {
	if node == nil {
		return nil
	}
	var matches []*xmlquery.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && LocalTag(child) == name {
			matches = append(matches, child)
		}
	}
	return matches
}

// Elements returns all direct child elements of the node, in document order.
func Elements(node *xmlquery.Node) []*xmlquery.Node {
	if node == nil {
		return nil
	}
	var elements []*xmlquery.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			elements = append(elements, child)
		}
	}
	return elements
}

// Attr returns the value of the named attribute, or "" if absent.
func Attr(node *xmlquery.Node, name string) string {
	if node == nil {
		return ""
	}
	return node.SelectAttr(name)
}

// Query evaluates an XPath expression against the node and returns all
// matching nodes. The expression is validated before evaluation.
func Query(node *xmlquery.Node, expr string) ([]*xmlquery.Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid XPath expression %q: %w", expr, err)
	}
	nodes, err := xmlquery.QueryAll(node, expr)
	if err != nil {
		return nil, fmt.Errorf("XPath query %q failed: %w", expr, err)
	}
	return nodes, nil
}

// FlattenText returns the element's flattened text content: its own text plus
// all descendant text in document order, with every whitespace run collapsed
// to a single space and the result trimmed. Nested inline markup (emphasis,
// cross-reference spans) carries no structural meaning and is stripped.
// Returns "" for a nil element.
func FlattenText(node *xmlquery.Node) string {
	if node == nil {
		return ""
	}
	return strings.Join(strings.Fields(node.InnerText()), " ")
}
