package statute

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/coolbeans/statutree/pkg/actxml"
)

// ErrNoBody indicates the document's top-level Body container could not be
// located. This is the only fatal parse condition: without a body no
// structural output is possible, so the walk aborts before creating anything
// beyond the root. All lower-level absences degrade to skip-node or empty
// string and never abort.
var ErrNoBody = errors.New("no Body element found in document")

// partMarker introduces a part-level heading label ("PART IV").
const partMarker = "PART"

// Config holds the per-act parameters for a Parser.
type Config struct {
	// ActCode is the lowercase short code used in identifiers ("cbca").
	ActCode string

	// ActName is the full act name ("Canada Business Corporations Act").
	ActName string

	// ConsolidatedNumber is the act's consolidation number ("C-44"),
	// recorded in the root node's metadata.
	ConsolidatedNumber string

	// NamespaceURI is the namespace tried first for tolerant element
	// lookups. Lookups fall back to unprefixed matching when it misses.
	NamespaceURI string

	// Logger receives diagnostics for skipped or ignored elements.
	// If nil, diagnostics are discarded.
	Logger *slog.Logger
}

// DefaultConfig returns the Config for the shipped instantiation, the
// Canada Business Corporations Act.
func DefaultConfig() Config {
	return Config{
		ActCode:            "cbca",
		ActName:            "Canada Business Corporations Act",
		ConsolidatedNumber: "C-44",
		NamespaceURI:       "http://justice.gc.ca/lims",
	}
}

// Parser is the hierarchical walker: a single left-to-right pass over the
// document body that classifies elements by role, derives identifiers and
// citations, and populates a Hierarchy.
//
// The walk carries a small amount of transient context — the most recently
// seen part and sub-heading, which act as the attachment point for subsequent
// sections. A Parser is not safe for concurrent use; create one per document
// (independent instances may run concurrently).
type Parser struct {
	config Config
	logger *slog.Logger

	hierarchy        *Hierarchy
	currentPartID    string
	currentPartLabel string
	currentHeadingID string
}

// New creates a Parser with the given configuration.
func New(config Config) *Parser {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{config: config, logger: logger}
}

// ParseFile parses the Act XML document at the given path.
func (parser *Parser) ParseFile(path string) (*Hierarchy, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open statute file %s: %w", path, err)
	}
	defer file.Close()
	return parser.Parse(file)
}

// Parse walks the Act XML document and returns the completed hierarchy.
// On a fatal condition (unparseable XML, missing Body container) no partial
// tree is returned.
func (parser *Parser) Parse(reader io.Reader) (*Hierarchy, error) {
	document, err := actxml.Parse(reader)
	if err != nil {
		return nil, err
	}

	parser.hierarchy = NewHierarchy(parser.config.ActCode, parser.config.ActName)
	parser.currentPartID = ""
	parser.currentPartLabel = ""
	parser.currentHeadingID = ""

	if err := parser.createRootNode(document); err != nil {
		return nil, err
	}

	body := actxml.FindTolerant(document, "Body", parser.config.NamespaceURI)
	if body == nil {
		return nil, fmt.Errorf("cannot parse %s: %w", parser.config.ActCode, ErrNoBody)
	}

	for _, element := range actxml.Elements(body) {
		switch actxml.LocalTag(element) {
		case "Heading":
			parser.processHeading(element)
		case "Section":
			parser.processSection(element)
		default:
			// Unrecognized top-level markup is ignored for forward
			// compatibility with future dialect revisions.
			parser.logger.Debug("ignoring unrecognized body element",
				"tag", actxml.LocalTag(element))
		}
	}

	return parser.hierarchy, nil
}

// createRootNode builds the act root from the Identification section.
// A missing Identification, ShortTitle, or LongTitle degrades to defaults.
func (parser *Parser) createRootNode(document *xmlquery.Node) error {
	var shortTitle, longTitle string
	if ident := actxml.FindTolerant(document, "Identification", parser.config.NamespaceURI); ident != nil {
		shortTitle = actxml.FlattenText(actxml.FindTolerant(ident, "ShortTitle", parser.config.NamespaceURI))
		longTitle = actxml.FlattenText(actxml.FindTolerant(ident, "LongTitle", parser.config.NamespaceURI))
	}

	title := shortTitle
	if title == "" {
		title = parser.config.ActName
	}

	root := &Node{
		ID:       parser.hierarchy.RootID,
		Kind:     KindAct,
		ActName:  parser.config.ActName,
		Label:    RootCitation(parser.config.ActCode),
		Title:    title,
		Text:     longTitle,
		Citation: RootCitation(parser.config.ActCode),
		Metadata: Metadata{
			ShortTitle:         shortTitle,
			LongTitle:          longTitle,
			ConsolidatedNumber: parser.config.ConsolidatedNumber,
		},
	}
	return parser.hierarchy.Attach(root)
}

// processHeading handles a Heading element: a level-1 heading whose label
// begins with the part marker opens a new part; a level-2 heading (or a
// level-1 heading not recognized as a part) becomes a sub-heading under the
// active part.
func (parser *Parser) processHeading(heading *xmlquery.Node) {
	level := actxml.Attr(heading, "level")
	label := actxml.FlattenText(actxml.Child(heading, "Label"))
	title := actxml.FlattenText(actxml.Child(heading, "TitleText"))

	switch {
	case level == "1" && strings.HasPrefix(label, partMarker):
		parser.createPartNode(label, title)
	case level == "2" || level == "1":
		parser.createHeadingNode(label, title, level)
	default:
		parser.logger.Debug("ignoring heading at unhandled nesting level",
			"level", level, "label", label)
	}
}

// createPartNode emits a part node attached to the root and makes it the
// current attachment point. A new part resets any prior sub-heading.
func (parser *Parser) createPartNode(label string, title string) {
	id, citation := PartIdentity(parser.config.ActCode, label)

	node := &Node{
		ID:       id,
		Kind:     KindPart,
		ParentID: parser.hierarchy.RootID,
		ActName:  parser.config.ActName,
		Label:    label,
		Title:    title,
		Citation: citation,
		Metadata: Metadata{PartNumber: PartToken(label)},
	}
	if err := parser.hierarchy.Attach(node); err != nil {
		parser.logger.Warn("skipping part", "label", label, "error", err)
		return
	}

	parser.currentPartID = id
	parser.currentPartLabel = label
	parser.currentHeadingID = ""
}

// createHeadingNode emits a sub-heading node under the current part and makes
// it the attachment point for subsequent sections. Headings seen before any
// part are dropped. Colliding title slugs are disambiguated with a numeric
// suffix.
func (parser *Parser) createHeadingNode(label string, title string, level string) {
	if parser.currentPartID == "" {
		parser.logger.Debug("dropping sub-heading outside any part", "title", title)
		return
	}

	id := parser.hierarchy.UniqueID(HeadingCandidateID(parser.currentPartID, title))

	node := &Node{
		ID:       id,
		Kind:     KindHeading,
		ParentID: parser.currentPartID,
		ActName:  parser.config.ActName,
		Label:    label,
		Title:    title,
		Citation: HeadingCitation(parser.config.ActCode, parser.currentPartLabel, title),
		Metadata: Metadata{Level: level},
	}
	if err := parser.hierarchy.Attach(node); err != nil {
		parser.logger.Warn("skipping heading", "title", title, "error", err)
		return
	}

	parser.currentHeadingID = id
}

// processSection handles a Section element and recurses into its subsections
// or, when it has none, its direct paragraphs. A section without a Label is
// skipped with its whole subtree.
func (parser *Parser) processSection(section *xmlquery.Node) {
	labelElement := actxml.Child(section, "Label")
	if labelElement == nil {
		parser.logger.Debug("skipping section without label")
		return
	}

	sectionNumber := actxml.FlattenText(labelElement)
	marginalNote := actxml.FlattenText(actxml.Child(section, "MarginalNote"))
	directText := actxml.FlattenText(actxml.Child(section, "Text"))

	// Attachment point: active sub-heading, else active part, else root.
	parentID := parser.currentHeadingID
	if parentID == "" {
		parentID = parser.currentPartID
	}
	if parentID == "" {
		parentID = parser.hierarchy.RootID
	}

	id, citation := SectionIdentity(parser.config.ActCode, sectionNumber)
	subsections := actxml.Children(section, "Subsection")

	node := &Node{
		ID:       id,
		Kind:     KindSection,
		ParentID: parentID,
		ActName:  parser.config.ActName,
		Label:    sectionNumber,
		Title:    marginalNote,
		Text:     directText,
		Citation: citation,
		Metadata: Metadata{
			Part:           parser.currentPartLabel,
			HasSubsections: boolPtr(len(subsections) > 0),
		},
	}
	if err := parser.hierarchy.Attach(node); err != nil {
		parser.logger.Warn("skipping section", "number", sectionNumber, "error", err)
		return
	}

	for _, subsection := range subsections {
		parser.processSubsection(subsection, id, sectionNumber)
	}
	if len(subsections) == 0 {
		for _, paragraph := range actxml.Children(section, "Paragraph") {
			parser.processParagraph(paragraph, id, sectionNumber, "")
		}
	}
}

// processSubsection handles a Subsection element and recurses into its
// paragraphs.
func (parser *Parser) processSubsection(subsection *xmlquery.Node, parentID string, sectionNumber string) {
	labelElement := actxml.Child(subsection, "Label")
	if labelElement == nil {
		parser.logger.Debug("skipping subsection without label", "section", sectionNumber)
		return
	}

	label := actxml.FlattenText(labelElement)
	marginalNote := actxml.FlattenText(actxml.Child(subsection, "MarginalNote"))
	text := actxml.FlattenText(actxml.Child(subsection, "Text"))

	id, citation := SubsectionIdentity(parser.config.ActCode, sectionNumber, label)

	node := &Node{
		ID:       id,
		Kind:     KindSubsection,
		ParentID: parentID,
		ActName:  parser.config.ActName,
		Label:    label,
		Title:    marginalNote,
		Text:     text,
		Citation: citation,
		Metadata: Metadata{Section: sectionNumber},
	}
	if err := parser.hierarchy.Attach(node); err != nil {
		parser.logger.Warn("skipping subsection", "section", sectionNumber, "label", label, "error", err)
		return
	}

	for _, paragraph := range actxml.Children(subsection, "Paragraph") {
		parser.processParagraph(paragraph, id, sectionNumber, label)
	}
}

// processParagraph handles a Paragraph element and recurses into its
// subparagraphs. subsectionLabel is empty for paragraphs attached directly
// to a section.
func (parser *Parser) processParagraph(paragraph *xmlquery.Node, parentID string, sectionNumber string, subsectionLabel string) {
	labelElement := actxml.Child(paragraph, "Label")
	if labelElement == nil {
		parser.logger.Debug("skipping paragraph without label", "section", sectionNumber)
		return
	}

	label := actxml.FlattenText(labelElement)
	text := actxml.FlattenText(actxml.Child(paragraph, "Text"))

	id, citation := ParagraphIdentity(parser.config.ActCode, sectionNumber, subsectionLabel, label)

	node := &Node{
		ID:       id,
		Kind:     KindParagraph,
		ParentID: parentID,
		ActName:  parser.config.ActName,
		Label:    label,
		Text:     text,
		Citation: citation,
		Metadata: Metadata{Section: sectionNumber, Subsection: subsectionLabel},
	}
	if err := parser.hierarchy.Attach(node); err != nil {
		parser.logger.Warn("skipping paragraph", "section", sectionNumber, "label", label, "error", err)
		return
	}

	for _, subparagraph := range actxml.Children(paragraph, "Subparagraph") {
		parser.processSubparagraph(subparagraph, id, sectionNumber, subsectionLabel, label)
	}
}

// processSubparagraph handles a Subparagraph element, the deepest nesting
// level of the dialect.
func (parser *Parser) processSubparagraph(subparagraph *xmlquery.Node, parentID string, sectionNumber string, subsectionLabel string, paragraphLabel string) {
	labelElement := actxml.Child(subparagraph, "Label")
	if labelElement == nil {
		parser.logger.Debug("skipping subparagraph without label", "section", sectionNumber)
		return
	}

	label := actxml.FlattenText(labelElement)
	text := actxml.FlattenText(actxml.Child(subparagraph, "Text"))

	id, citation := SubparagraphIdentity(parser.config.ActCode, sectionNumber, subsectionLabel, paragraphLabel, label)

	node := &Node{
		ID:       id,
		Kind:     KindSubparagraph,
		ParentID: parentID,
		ActName:  parser.config.ActName,
		Label:    label,
		Text:     text,
		Citation: citation,
		Metadata: Metadata{
			Section:    sectionNumber,
			Subsection: subsectionLabel,
			Paragraph:  paragraphLabel,
		},
	}
	if err := parser.hierarchy.Attach(node); err != nil {
		parser.logger.Warn("skipping subparagraph", "section", sectionNumber, "label", label, "error", err)
	}
}
