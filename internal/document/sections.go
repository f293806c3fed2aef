// Package document implements the section-patching engine for the newsletter
// markdown document: locating named sections, rendering record lists into
// section bodies, splicing them into the file and bootstrapping new files.
//
// The engine is synchronous and keeps no state between calls. Every patch
// re-reads the file from disk.
package document

import (
	"strings"

	"github.com/starford/newsdesk/internal/apperr"
	"github.com/starford/newsdesk/internal/models"
)

// MergePolicy controls how a patch combines rendered records with the
// section's existing body.
type MergePolicy string

// Merge policies. PolicyInherit defers to the section's registered policy.
const (
	PolicyInherit MergePolicy = ""
	PolicyReplace MergePolicy = "replace"
	PolicyPrepend MergePolicy = "prepend"
)

// AnchorTitle names the document's H1 title line as a placement anchor.
const AnchorTitle = "#title"

// Anchor is one candidate insertion point for a section that is missing from
// the document.
type Anchor struct {
	Section string // registry name of the anchor section, or AnchorTitle
	Before  bool   // insert before the anchor's heading instead of after its body
}

// Section describes one known section of the document.
type Section struct {
	Name string // registry name, e.g. "Upcoming Releases"
	Slug string // short identifier for CLI/HTTP use, e.g. "upcoming"

	// Headings lists the accepted heading lines, canonical form first. The
	// first entry is used when a section has to be created.
	Headings []string

	Kind      models.Kind
	Policy    MergePolicy
	Normalize bool

	// Anchors are tried in order when the section is missing. If none
	// resolves, the section is appended at the end of the document.
	Anchors []Anchor
}

// Heading returns the canonical heading line.
func (s Section) Heading() string {
	return s.Headings[0]
}

func (s Section) matches(line string) bool {
	line = strings.TrimRight(line, " \t\r")
	for _, h := range s.Headings {
		if line == h {
			return true
		}
	}
	return false
}

// Registry is the ordered set of sections a document may contain. Its order is
// the canonical section order used by the bootstrap template.
type Registry struct {
	sections []Section
}

// NewRegistry builds a registry from sections in canonical order.
func NewRegistry(sections ...Section) *Registry {
	return &Registry{sections: sections}
}

// Section names.
const (
	SectionNews     = "News"
	SectionReleases = "Releases"
	SectionUpcoming = "Upcoming Releases"
	SectionVideos   = "Videos"
	SectionDemos    = "Demos"
)

func headings(label string) []string {
	return []string{"## " + label + ":", label + ":"}
}

// DefaultRegistry returns the newsletter's sections in canonical order.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Section{
			Name:     SectionNews,
			Slug:     "news",
			Headings: headings("News"),
			Kind:     models.KindNews,
			Policy:   PolicyReplace,
			Anchors:  []Anchor{{Section: AnchorTitle}},
		},
		Section{
			Name:      SectionReleases,
			Slug:      "releases",
			Headings:  headings("Recent Enterprise Releases"),
			Kind:      models.KindReleases,
			Policy:    PolicyPrepend,
			Normalize: true,
			Anchors:   []Anchor{{Section: SectionNews}, {Section: AnchorTitle}},
		},
		Section{
			Name:     SectionUpcoming,
			Slug:     "upcoming",
			Headings: headings("Releases coming soon"),
			Kind:     models.KindUpcoming,
			Policy:   PolicyReplace,
			Anchors:  []Anchor{{Section: SectionReleases}, {Section: SectionNews}},
		},
		Section{
			Name:     SectionVideos,
			Slug:     "videos",
			Headings: headings("Videos"),
			Kind:     models.KindVideos,
			Policy:   PolicyReplace,
			Anchors:  []Anchor{{Section: SectionDemos, Before: true}, {Section: SectionUpcoming}},
		},
		Section{
			Name:     SectionDemos,
			Slug:     "demos",
			Headings: headings("Demos"),
			Kind:     models.KindDemos,
			Policy:   PolicyReplace,
			Anchors:  []Anchor{{Section: SectionVideos}, {Section: SectionUpcoming}},
		},
	)
}

// Sections returns the registered sections in canonical order.
func (r *Registry) Sections() []Section {
	out := make([]Section, len(r.sections))
	copy(out, r.sections)
	return out
}

// Lookup finds a section by name or slug, ignoring case.
func (r *Registry) Lookup(name string) (Section, error) {
	name = strings.TrimSpace(name)
	for _, s := range r.sections {
		if strings.EqualFold(s.Name, name) || strings.EqualFold(s.Slug, name) {
			return s, nil
		}
	}
	return Section{}, apperr.ErrUnknownSection
}

// isHeading reports whether line starts a new region: any ATX heading or any
// registered heading form.
func (r *Registry) isHeading(line string) bool {
	if strings.HasPrefix(line, "#") {
		return true
	}
	for _, s := range r.sections {
		if s.matches(line) {
			return true
		}
	}
	return false
}
