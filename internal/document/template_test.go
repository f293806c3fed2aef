package document

import (
	"testing"
	"time"
)

func TestTemplate(t *testing.T) {
	got := DefaultRegistry().Template(time.Date(2025, time.October, 19, 9, 30, 0, 0, time.UTC))
	want := "# October 19\n\n" +
		"## News:\n\n" +
		"## Recent Enterprise Releases:\n\n" +
		"## Releases coming soon:\n\n" +
		"## Videos:\n\n" +
		"## Demos:\n\n"
	if got != want {
		t.Errorf("Template = %q, want %q", got, want)
	}
}

func TestTemplate_EveryRegisteredSectionLocates(t *testing.T) {
	reg := DefaultRegistry()
	text := reg.Template(time.Now())
	prev := -1
	for _, sec := range reg.Sections() {
		span, err := reg.Locate(text, sec.Name)
		if err != nil {
			t.Fatalf("Locate(%s): %v", sec.Name, err)
		}
		if span.BodyStart != span.BodyEnd {
			t.Errorf("%s body = %q, want empty", sec.Name, span.Body(text))
		}
		if span.HeadingStart <= prev {
			t.Errorf("%s out of canonical order", sec.Name)
		}
		prev = span.HeadingStart
	}
}
