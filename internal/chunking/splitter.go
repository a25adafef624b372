package chunking

import (
	"regexp"
	"strings"
)

// Section is a contiguous markdown region introduced by a heading line.
type Section struct {
	Heading string
	Body    string
}

// Synthetic headings for content that has no heading of its own.
const (
	headingDocumentStart = "Document Start"
	headingDocument      = "Document"
)

var headingLine = regexp.MustCompile(`^#{1,6}\s+`)

// SplitByHeadings partitions markdown into heading-delimited sections. Lines
// before the first heading accumulate under a synthetic "Document Start"
// heading; a document without any heading becomes a single "Document"
// section. The result is never empty for non-empty input.
func SplitByHeadings(markdown string) []Section {
	lines := strings.Split(markdown, "\n")

	var sections []Section
	currentHeading := headingDocumentStart
	var buffer []string

	for _, line := range lines {
		if headingLine.MatchString(line) {
			if len(buffer) > 0 {
				sections = append(sections, Section{
					Heading: currentHeading,
					Body:    strings.TrimSpace(strings.Join(buffer, "\n")),
				})
			}
			currentHeading = strings.TrimSpace(line)
			buffer = nil
			continue
		}
		buffer = append(buffer, line)
	}
	if len(buffer) > 0 {
		sections = append(sections, Section{
			Heading: currentHeading,
			Body:    strings.TrimSpace(strings.Join(buffer, "\n")),
		})
	}

	if len(sections) == 0 {
		return []Section{{Heading: headingDocument, Body: markdown}}
	}
	return sections
}
