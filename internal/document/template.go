package document

import (
	"strings"
	"time"
)

// Template returns the content of a brand-new document: an H1 date title
// followed by every registered section heading, in canonical order, each with
// an empty body.
func (r *Registry) Template(today time.Time) string {
	var b strings.Builder
	b.WriteString("# " + today.Format(LongDateLayout) + "\n\n")
	for _, s := range r.sections {
		b.WriteString(s.Heading() + "\n\n")
	}
	return b.String()
}
