package document

import (
	"fmt"
	"strings"

	"github.com/starford/newsdesk/internal/apperr"
)

// Span locates a section inside a document's text. Offsets are byte offsets
// into the text the span was computed from.
type Span struct {
	HeadingStart int // first byte of the heading line
	BodyStart    int // first byte after the heading line (and any leading blank lines)
	BodyEnd      int // exclusive; the terminating blank line or heading is not included
}

// Body returns the section body within text.
func (s Span) Body(text string) string {
	return text[s.BodyStart:s.BodyEnd]
}

// line is one line of a document. end excludes the newline; next is the
// offset of the following line (len(text) for the last line).
type line struct {
	start, end, next int
}

func (l line) text(doc string) string { return doc[l.start:l.end] }

func (l line) blank(doc string) bool { return strings.TrimSpace(l.text(doc)) == "" }

func splitLines(text string) []line {
	var out []line
	for pos := 0; pos < len(text); {
		i := strings.IndexByte(text[pos:], '\n')
		if i < 0 {
			out = append(out, line{start: pos, end: len(text), next: len(text)})
			break
		}
		out = append(out, line{start: pos, end: pos + i, next: pos + i + 1})
		pos += i + 1
	}
	return out
}

// Locate finds the named section in text. The canonical heading is tried
// first and the legacy form only when no canonical heading exists. It returns
// apperr.ErrSectionNotFound when no heading matches and
// apperr.ErrDuplicateSection when the chosen heading form appears more than
// once.
func (r *Registry) Locate(text, name string) (Span, error) {
	sec, err := r.Lookup(name)
	if err != nil {
		return Span{}, err
	}
	lines := splitLines(text)
	h, err := findHeading(text, lines, sec)
	if err != nil {
		return Span{}, err
	}
	return r.spanAt(text, lines, h), nil
}

// findHeading returns the index of sec's heading line.
func findHeading(text string, lines []line, sec Section) (int, error) {
	for _, form := range sec.Headings {
		found := -1
		for i, l := range lines {
			if strings.TrimRight(l.text(text), " \t\r") != form {
				continue
			}
			if found >= 0 {
				return -1, fmt.Errorf("%w: %q", apperr.ErrDuplicateSection, sec.Name)
			}
			found = i
		}
		if found >= 0 {
			return found, nil
		}
	}
	return -1, apperr.ErrSectionNotFound
}

// spanAt computes the body span of the section whose heading is lines[h].
func (r *Registry) spanAt(text string, lines []line, h int) Span {
	span := Span{HeadingStart: lines[h].start, BodyStart: lines[h].next}

	first := h + 1
	// Blank lines between the heading and a content line belong to the
	// heading block.
	j := first
	for j < len(lines) && lines[j].blank(text) {
		j++
	}
	if j < len(lines) && j > first && !r.isHeading(lines[j].text(text)) {
		first = j
		span.BodyStart = lines[j].start
	}

	span.BodyEnd = len(text)
	for _, l := range lines[first:] {
		if l.blank(text) || r.isHeading(l.text(text)) {
			span.BodyEnd = l.start
			break
		}
	}
	return span
}

// titleLine returns the index of the document's first H1 line, or -1.
func titleLine(text string, lines []line) int {
	for i, l := range lines {
		if strings.HasPrefix(l.text(text), "# ") {
			return i
		}
	}
	return -1
}
