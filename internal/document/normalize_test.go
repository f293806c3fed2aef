package document

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"a\n\n\n\nb":          "a\n\nb",
		"a\n\nb":              "a\n\nb",
		"a\nb":                "a\nb",
		"a\n\n\nb\n\n\n\n\nc": "a\n\nb\n\nc",
		"":                    "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
