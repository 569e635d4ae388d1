package statute

import (
	"regexp"
	"strings"
)

// partLabelPattern extracts the Roman-numeral token from a part label such as
// "PART IV". Labels that do not match fall back to the literal remainder.
var partLabelPattern = regexp.MustCompile(`^PART\s+([IVXLC]+)`)

// slugPattern matches every run of characters that is not a lowercase letter
// or digit, for slug derivation.
var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugMaxLength bounds the length of a heading title slug.
const slugMaxLength = 30

// RootID returns the identifier of the act root node.
func RootID(actCode string) string {
	return actCode + "_root"
}

// RootCitation returns the citation of the act root node, the uppercased
// act code (e.g. "CBCA").
func RootCitation(actCode string) string {
	return strings.ToUpper(actCode)
}

// PartToken extracts the part number token from a part label. "PART IV"
// yields "IV"; a label without a Roman-numeral token yields the label with
// the "PART " marker stripped.
func PartToken(label string) string {
	if match := partLabelPattern.FindStringSubmatch(label); match != nil {
		return match[1]
	}
	return strings.ReplaceAll(label, "PART ", "")
}

// PartIdentity returns the identifier and citation for a part with the given
// full label (e.g. "PART IV" → "{act}_part_iv", "CBCA PART IV").
func PartIdentity(actCode string, label string) (id string, citation string) {
	token := PartToken(label)
	id = actCode + "_part_" + strings.ToLower(token)
	citation = RootCitation(actCode) + " " + label
	return id, citation
}

// Slug derives a normalized identifier fragment from a heading title:
// lowercased, every run of non-alphanumeric characters replaced with a single
// underscore, truncated to 30 characters.
func Slug(title string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(title), "_")
	if len(slug) > slugMaxLength {
		slug = slug[:slugMaxLength]
	}
	return slug
}

// HeadingCandidateID returns the candidate identifier for a sub-heading under
// a part. Collisions between headings with identical title slugs are resolved
// by Hierarchy.UniqueID at insertion time.
func HeadingCandidateID(partID string, title string) string {
	return partID + "_heading_" + Slug(title)
}

// HeadingCitation returns the citation for a sub-heading under a part.
func HeadingCitation(actCode string, partLabel string, title string) string {
	return RootCitation(actCode) + " " + partLabel + " - " + title
}

// SectionIdentity returns the identifier and citation for a section
// ("122" → "{act}_s122", "CBCA s. 122").
func SectionIdentity(actCode string, sectionNumber string) (id string, citation string) {
	id = actCode + "_s" + sectionNumber
	citation = RootCitation(actCode) + " s. " + sectionNumber
	return id, citation
}

// SubsectionIdentity returns the identifier and citation for a subsection.
// The identifier uses the label with surrounding parentheses stripped; the
// citation keeps them ("(1)" → "{act}_s122_1", "CBCA s. 122(1)").
func SubsectionIdentity(actCode string, sectionNumber string, label string) (id string, citation string) {
	sectionID, sectionCitation := SectionIdentity(actCode, sectionNumber)
	id = sectionID + "_" + stripParens(label)
	citation = sectionCitation + label
	return id, citation
}

// ParagraphIdentity returns the identifier and citation for a paragraph.
// subsectionLabel is empty when the paragraph hangs directly off a section,
// in which case the subsection segment is skipped in both strings.
func ParagraphIdentity(actCode string, sectionNumber string, subsectionLabel string, label string) (id string, citation string) {
	if subsectionLabel != "" {
		base, baseCitation := SubsectionIdentity(actCode, sectionNumber, subsectionLabel)
		return base + "_" + stripParens(label), baseCitation + label
	}
	sectionID, sectionCitation := SectionIdentity(actCode, sectionNumber)
	return sectionID + "_" + stripParens(label), sectionCitation + label
}

// SubparagraphIdentity returns the identifier and citation for a
// subparagraph, chaining section, optional subsection, paragraph, and
// subparagraph labels.
func SubparagraphIdentity(actCode string, sectionNumber string, subsectionLabel string, paragraphLabel string, label string) (id string, citation string) {
	base, baseCitation := ParagraphIdentity(actCode, sectionNumber, subsectionLabel, paragraphLabel)
	return base + "_" + stripParens(label), baseCitation + label
}

// stripParens removes surrounding parentheses from a label: "(1)" → "1".
func stripParens(label string) string {
	return strings.Trim(label, "()")
}
