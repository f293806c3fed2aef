package document

import "regexp"

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// Normalize collapses every run of three or more newlines to exactly two.
func Normalize(text string) string {
	return blankRunRe.ReplaceAllString(text, "\n\n")
}
