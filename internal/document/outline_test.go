package document

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/starford/newsdesk/internal/apperr"
)

func TestParse(t *testing.T) {
	text := "# October 19\n\n## News:\n- [A](a)\n\nVideos:\n- [V](v) - C\n\n## Demos:\n"

	out, err := DefaultRegistry().Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if out.Title != "October 19" {
		t.Errorf("Title = %q", out.Title)
	}

	want := []Node{
		{Name: SectionNews, Slug: "news", Heading: "## News:", Body: "- [A](a)\n"},
		{Name: SectionVideos, Slug: "videos", Heading: "Videos:", Legacy: true, Body: "- [V](v) - C\n"},
		{Name: SectionDemos, Slug: "demos", Heading: "## Demos:", Body: ""},
	}
	if diff := cmp.Diff(want, out.Sections, cmpopts.IgnoreFields(Node{}, "Span")); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{SectionReleases, SectionUpcoming}, out.Missing); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}

	if n, ok := out.Section("videos"); !ok || n.Name != SectionVideos {
		t.Errorf("Section(videos) = %+v, %v", n, ok)
	}
}

func TestParse_Duplicate(t *testing.T) {
	_, err := DefaultRegistry().Parse("## Demos:\n- a\n\n## Demos:\n- b\n")
	if !errors.Is(err, apperr.ErrDuplicateSection) {
		t.Errorf("err = %v, want ErrDuplicateSection", err)
	}
}

func TestParse_CanonicalBeatsLegacy(t *testing.T) {
	out, err := DefaultRegistry().Parse("Demos:\n- old\n\n## News:\n- n\n\n## Demos:\n- a\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []Node{
		{Name: SectionNews, Slug: "news", Heading: "## News:", Body: "- n\n"},
		{Name: SectionDemos, Slug: "demos", Heading: "## Demos:", Body: "- a\n"},
	}
	if diff := cmp.Diff(want, out.Sections, cmpopts.IgnoreFields(Node{}, "Span")); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}
