package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/newsdesk/internal/apperr"
)

func TestLocate(t *testing.T) {
	reg := DefaultRegistry()

	cases := []struct {
		name    string
		text    string
		section string
		want    string
	}{
		{
			name:    "canonical heading ended by blank line",
			text:    "# T\n\n## News:\n- [a](b)\n\n## Recent Enterprise Releases:\n",
			section: SectionNews,
			want:    "- [a](b)\n",
		},
		{
			name:    "ended by next heading",
			text:    "## News:\n- a\n## Videos:\n- v\n",
			section: SectionNews,
			want:    "- a\n",
		},
		{
			name:    "legacy heading",
			text:    "News:\n- x\n\nDemos:\n- d\n",
			section: SectionNews,
			want:    "- x\n",
		},
		{
			name:    "legacy label ends previous section",
			text:    "News:\n- x\nDemos:\n- d\n",
			section: SectionNews,
			want:    "- x\n",
		},
		{
			name:    "body runs to end of text",
			text:    "## Demos:\n- first\n- last",
			section: SectionDemos,
			want:    "- first\n- last",
		},
		{
			name:    "trailing whitespace after colon",
			text:    "## News:   \n- a\n",
			section: SectionNews,
			want:    "- a\n",
		},
		{
			name:    "blank lines before content belong to heading",
			text:    "## News:\n\n- a\n- b\n\n## Videos:\n",
			section: SectionNews,
			want:    "- a\n- b\n",
		},
		{
			name:    "empty body",
			text:    "## News:\n\n## Videos:\n",
			section: SectionNews,
			want:    "",
		},
		{
			name:    "lookup by slug",
			text:    "## Releases coming soon:\n- Reactor (Jan 2)\n",
			section: "upcoming",
			want:    "- Reactor (Jan 2)\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			span, err := reg.Locate(tc.text, tc.section)
			if err != nil {
				t.Fatalf("Locate: %v", err)
			}
			if got := span.Body(tc.text); got != tc.want {
				t.Errorf("body = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLocate_EmptyBodyOffsets(t *testing.T) {
	text := "## News:\n\n## Videos:\n"
	span, err := DefaultRegistry().Locate(text, SectionNews)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if span.HeadingStart != 0 || span.BodyStart != 9 || span.BodyEnd != 9 {
		t.Errorf("span = %+v, want heading 0, body 9..9", span)
	}
}

func TestLocate_EndOfTextBoundary(t *testing.T) {
	text := "## News:\n- a\n\n## Demos:\n- [x](y) - z"
	span, err := DefaultRegistry().Locate(text, SectionDemos)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if span.BodyEnd != len(text) {
		t.Errorf("BodyEnd = %d, want %d", span.BodyEnd, len(text))
	}
}

func TestLocate_NotFound(t *testing.T) {
	reg := DefaultRegistry()
	for _, text := range []string{"", "# Title\n", "## news:\n- a\n", "### News:\n- a\n"} {
		if _, err := reg.Locate(text, SectionNews); !errors.Is(err, apperr.ErrSectionNotFound) {
			t.Errorf("Locate(%q) err = %v, want ErrSectionNotFound", text, err)
		}
	}
}

func TestLocate_Duplicate(t *testing.T) {
	reg := DefaultRegistry()
	for _, text := range []string{
		"## News:\n- a\n\n## News:\n- b\n",
		"News:\n- a\n\nNews:\n- b\n",
		"News:\n- old\n\n## News:\n- a\n\n## News:\n- b\n",
	} {
		if _, err := reg.Locate(text, SectionNews); !errors.Is(err, apperr.ErrDuplicateSection) {
			t.Errorf("Locate(%q) err = %v, want ErrDuplicateSection", text, err)
		}
	}
}

func TestLocate_CanonicalBeatsLegacy(t *testing.T) {
	text := "News:\n- old\n\n## News:\n- canon\n"
	span, err := DefaultRegistry().Locate(text, SectionNews)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if got := span.Body(text); got != "- canon\n" {
		t.Errorf("body = %q, want %q", got, "- canon\n")
	}
	if span.HeadingStart != strings.Index(text, "## News:") {
		t.Errorf("HeadingStart = %d", span.HeadingStart)
	}
}

func TestLocate_UnknownSection(t *testing.T) {
	if _, err := DefaultRegistry().Locate("## Sports:\n", "Sports"); !errors.Is(err, apperr.ErrUnknownSection) {
		t.Errorf("err = %v, want ErrUnknownSection", err)
	}
}
