package document

import (
	"errors"
	"sort"
	"strings"

	"github.com/starford/newsdesk/internal/apperr"
)

// Node is one known section found in a document.
type Node struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Heading string `json:"heading"`
	Legacy  bool   `json:"legacy"` // matched a non-canonical heading form
	Body    string `json:"body"`
	Span    Span   `json:"-"`
}

// Outline is a read-only view of a document: its title and the known sections
// it contains, in document order.
type Outline struct {
	Title    string   `json:"title"`
	Sections []Node   `json:"sections"`
	Missing  []string `json:"missing,omitempty"` // registered sections not present
}

// Section returns the node for name (or slug), if present.
func (o *Outline) Section(name string) (Node, bool) {
	for _, n := range o.Sections {
		if strings.EqualFold(n.Name, name) || strings.EqualFold(n.Slug, name) {
			return n, true
		}
	}
	return Node{}, false
}

// Parse builds the outline of text. Sections are listed in document order.
func (r *Registry) Parse(text string) (*Outline, error) {
	lines := splitLines(text)
	out := &Outline{}
	if i := titleLine(text, lines); i >= 0 {
		out.Title = strings.TrimSpace(strings.TrimPrefix(lines[i].text(text), "# "))
	}

	for _, sec := range r.sections {
		h, err := findHeading(text, lines, sec)
		if errors.Is(err, apperr.ErrSectionNotFound) {
			out.Missing = append(out.Missing, sec.Name)
			continue
		}
		if err != nil {
			return nil, err
		}
		raw := strings.TrimRight(lines[h].text(text), " \t\r")
		span := r.spanAt(text, lines, h)
		out.Sections = append(out.Sections, Node{
			Name:    sec.Name,
			Slug:    sec.Slug,
			Heading: raw,
			Legacy:  raw != sec.Heading(),
			Body:    span.Body(text),
			Span:    span,
		})
	}
	sort.SliceStable(out.Sections, func(i, j int) bool {
		return out.Sections[i].Span.HeadingStart < out.Sections[j].Span.HeadingStart
	})
	return out, nil
}
