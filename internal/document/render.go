package document

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/newsdesk/internal/models"
)

// Date label layouts.
const (
	LongDateLayout  = "January 2"
	ShortDateLayout = "Jan 2"
)

// DefaultUpcomingProjects is rendered into the Upcoming Releases section when
// no upcoming release is known.
var DefaultUpcomingProjects = []string{
	"Micrometer",
	"Micrometer Tracing",
	"Reactor",
	"Reactor Core",
	"Reactor Netty",
	"Reactor Pool",
	"Spring Framework",
	"Spring LDAP",
	"Spring Data",
}

const defaultDemoDescription = "Demo repository"

// Rendered is the output of a render call.
type Rendered struct {
	Body     string
	Count    int // records written to Body
	Skipped  int // incomplete records dropped
	Defaults bool
}

// Renderer turns record lists into section bodies.
type Renderer struct {
	upcomingDefaults []string
	logger           *slog.Logger
}

// NewRenderer creates a renderer. An empty defaults list falls back to
// DefaultUpcomingProjects.
func NewRenderer(upcomingDefaults []string, logger *slog.Logger) *Renderer {
	if len(upcomingDefaults) == 0 {
		upcomingDefaults = DefaultUpcomingProjects
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{upcomingDefaults: upcomingDefaults, logger: logger}
}

// Render renders recs according to recs.Kind. Every line ends with a newline.
// Records missing a required field are skipped, never fatal.
func (r *Renderer) Render(recs models.Records) Rendered {
	var b strings.Builder
	var out Rendered

	switch recs.Kind {
	case models.KindNews:
		for _, n := range recs.News {
			if n.Title == "" || n.Link == "" {
				r.skip(&out, recs.Kind, n.Title)
				continue
			}
			fmt.Fprintf(&b, "- [%s](%s)\n", n.Title, n.Link)
			out.Count++
		}

	case models.KindVideos:
		for _, v := range recs.Videos {
			if v.Title == "" || v.Link == "" {
				r.skip(&out, recs.Kind, v.Title)
				continue
			}
			fmt.Fprintf(&b, "- [%s](%s)", v.Title, v.Link)
			if v.Channel != "" {
				b.WriteString(" - " + v.Channel)
			}
			b.WriteByte('\n')
			out.Count++
		}

	case models.KindDemos:
		for _, d := range recs.Demos {
			if d.Name == "" || d.URL == "" {
				r.skip(&out, recs.Kind, d.Name)
				continue
			}
			desc := d.Description
			if desc == "" {
				desc = defaultDemoDescription
			}
			fmt.Fprintf(&b, "- [%s](%s) - %s\n", d.Name, d.URL, desc)
			out.Count++
		}

	case models.KindReleases:
		r.renderHistory(&b, &out, recs.Releases)

	case models.KindUpcoming:
		for _, e := range recs.Releases {
			summary := releaseSummary(e)
			if e.Date.IsZero() || summary == "" {
				r.skip(&out, recs.Kind, summary)
				continue
			}
			fmt.Fprintf(&b, "- %s (%s)\n", summary, e.Date.Format(ShortDateLayout))
			out.Count++
		}
		if out.Count == 0 {
			for _, name := range r.upcomingDefaults {
				fmt.Fprintf(&b, "- %s\n", name)
			}
			out.Defaults = true
		}
	}

	out.Body = b.String()
	return out
}

// renderHistory groups releases under their long date label. Groups appear in
// first-occurrence order of the label; input order is otherwise preserved.
func (r *Renderer) renderHistory(b *strings.Builder, out *Rendered, events []models.ReleaseEvent) {
	var labels []string
	groups := make(map[string][]string)
	for _, e := range events {
		summary := releaseSummary(e)
		if e.Date.IsZero() || summary == "" {
			r.skip(out, models.KindReleases, summary)
			continue
		}
		label := e.Date.Format(LongDateLayout)
		if _, ok := groups[label]; !ok {
			labels = append(labels, label)
		}
		groups[label] = append(groups[label], summary)
		out.Count++
	}
	for _, label := range labels {
		fmt.Fprintf(b, "- %s\n", label)
		for _, s := range groups[label] {
			fmt.Fprintf(b, "  - %s\n", s)
		}
	}
}

func (r *Renderer) skip(out *Rendered, kind models.Kind, label string) {
	out.Skipped++
	r.logger.Debug("render: skipped incomplete record",
		slog.String("kind", string(kind)),
		slog.String("record", label))
}

func releaseSummary(e models.ReleaseEvent) string {
	if e.Summary != "" {
		return e.Summary
	}
	return strings.TrimSpace(e.Project + " " + e.Version)
}
