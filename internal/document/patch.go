package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/newsdesk/internal/apperr"
	"github.com/starford/newsdesk/internal/models"
	"github.com/starford/newsdesk/internal/storage"
)

// IOError reports a failure to read or write the document. It is the only
// error a patch returns for a well-formed request.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("document: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NormalizeMode overrides the section's registered normalize flag.
type NormalizeMode int

// Normalize modes.
const (
	NormalizeInherit NormalizeMode = iota
	NormalizeAlways
	NormalizeNever
)

// Request is a single section update.
type Request struct {
	Filename  string
	Section   string
	Records   models.Records
	Policy    MergePolicy
	Normalize NormalizeMode
}

// Result describes what a patch did.
type Result struct {
	Path         string      `json:"path"`
	Section      string      `json:"section"`
	Policy       MergePolicy `json:"policy"`
	Bootstrapped bool        `json:"bootstrapped"` // the file was created from the template
	Created      bool        `json:"created"`      // the section was inserted by fallback placement
	Changed      bool        `json:"changed"`      // the file content changed
	Body         string      `json:"body"`         // rendered body for this patch
	Rendered     int         `json:"rendered"`
	Skipped      int         `json:"skipped"`
	Checksum     string      `json:"checksum"` // SHA-256 of the document after the patch
}

// Patcher owns the read-modify-write cycle of one document per call.
//
// There is no locking: concurrent patchers on the same file race and the last
// writer wins. Callers that need several section updates must run them
// sequentially.
type Patcher struct {
	store    storage.Provider
	registry *Registry
	renderer *Renderer
	logger   *slog.Logger
	now      func() time.Time
}

// PatcherOption configures a Patcher.
type PatcherOption func(*Patcher)

// WithRegistry sets the section registry.
func WithRegistry(r *Registry) PatcherOption {
	return func(p *Patcher) { p.registry = r }
}

// WithRenderer sets the record renderer.
func WithRenderer(r *Renderer) PatcherOption {
	return func(p *Patcher) { p.renderer = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) PatcherOption {
	return func(p *Patcher) { p.logger = l }
}

// WithClock sets the clock used for the bootstrap template date.
func WithClock(now func() time.Time) PatcherOption {
	return func(p *Patcher) { p.now = now }
}

// NewPatcher creates a patcher over store.
func NewPatcher(store storage.Provider, opts ...PatcherOption) *Patcher {
	p := &Patcher{
		store:    store,
		registry: DefaultRegistry(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.renderer == nil {
		p.renderer = NewRenderer(nil, p.logger)
	}
	return p
}

// Registry returns the patcher's section registry.
func (p *Patcher) Registry() *Registry {
	return p.registry
}

// Renderer returns the patcher's renderer.
func (p *Patcher) Renderer() *Renderer {
	return p.renderer
}

// Bootstrap writes the template to filename, replacing any existing content.
func (p *Patcher) Bootstrap(_ context.Context, filename string) error {
	if err := p.store.Write(filename, []byte(p.registry.Template(p.now()))); err != nil {
		return &IOError{Op: "create", Path: filename, Err: err}
	}
	p.logger.Info("document created", slog.String("path", filename))
	return nil
}

// Load reads the document, creating it from the template when it does not
// exist. The returned text always ends with a newline unless it is empty.
func (p *Patcher) Load(ctx context.Context, filename string) (text string, bootstrapped bool, err error) {
	exists, err := p.store.Exists(filename)
	if err != nil {
		return "", false, &IOError{Op: "stat", Path: filename, Err: err}
	}
	if !exists {
		if err := p.Bootstrap(ctx, filename); err != nil {
			return "", false, err
		}
		bootstrapped = true
	}
	data, err := p.store.Read(filename)
	if err != nil {
		return "", bootstrapped, &IOError{Op: "read", Path: filename, Err: err}
	}
	text = string(data)
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text, bootstrapped, nil
}

// Patch renders req.Records into the requested section and writes the
// document back. Records without a kind take the section's kind; records of
// another section's kind are rejected before the document is read.
func (p *Patcher) Patch(ctx context.Context, req Request) (*Result, error) {
	sec, err := p.registry.Lookup(req.Section)
	if err != nil {
		return nil, fmt.Errorf("document: %w: %q", err, req.Section)
	}
	policy := req.Policy
	if policy == PolicyInherit {
		policy = sec.Policy
	}
	normalize := sec.Normalize
	switch req.Normalize {
	case NormalizeAlways:
		normalize = true
	case NormalizeNever:
		normalize = false
	}

	recs := req.Records
	switch recs.Kind {
	case "":
		recs.Kind = sec.Kind
	case sec.Kind:
	default:
		return nil, fmt.Errorf("document: %w: %s records for %q", apperr.ErrRecordKind, recs.Kind, sec.Name)
	}

	original, bootstrapped, err := p.Load(ctx, req.Filename)
	if err != nil {
		return nil, err
	}

	rendered := p.renderer.Render(recs)
	res := &Result{
		Path:         req.Filename,
		Section:      sec.Name,
		Policy:       policy,
		Bootstrapped: bootstrapped,
		Body:         rendered.Body,
		Rendered:     rendered.Count,
		Skipped:      rendered.Skipped,
	}

	var updated string
	span, err := p.registry.Locate(original, sec.Name)
	switch {
	case err == nil:
		body := rendered.Body
		if policy == PolicyPrepend {
			body += span.Body(original)
		}
		updated = original[:span.BodyStart] + body + original[span.BodyEnd:]
	case errors.Is(err, apperr.ErrSectionNotFound):
		updated, err = p.registry.place(original, sec, rendered.Body)
		if err != nil {
			return nil, err
		}
		res.Created = true
	default:
		return nil, err
	}

	if normalize {
		updated = Normalize(updated)
	}
	res.Checksum = Checksum(updated)

	if updated == original {
		p.logger.Debug("document unchanged",
			slog.String("path", req.Filename),
			slog.String("section", sec.Name))
		return res, nil
	}
	if err := p.store.Write(req.Filename, []byte(updated)); err != nil {
		return nil, &IOError{Op: "write", Path: req.Filename, Err: err}
	}
	res.Changed = true

	p.logger.Info("section patched",
		slog.String("path", req.Filename),
		slog.String("section", sec.Name),
		slog.String("policy", string(policy)),
		slog.Int("rendered", rendered.Count),
		slog.Int("skipped", rendered.Skipped),
		slog.Bool("created", res.Created))
	return res, nil
}

// place inserts a freshly headed section into text using the section's anchor
// list, falling back to the end of the document.
func (r *Registry) place(text string, sec Section, body string) (string, error) {
	block := sec.Heading() + "\n" + body
	lines := splitLines(text)

	for _, a := range sec.Anchors {
		if a.Section == AnchorTitle {
			if i := titleLine(text, lines); i >= 0 {
				return insertAfter(text, lines[i].next, block), nil
			}
			continue
		}
		span, err := r.Locate(text, a.Section)
		if errors.Is(err, apperr.ErrSectionNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}
		if a.Before {
			return insertBefore(text, span.HeadingStart, block), nil
		}
		return insertAfter(text, span.BodyEnd, block), nil
	}

	if text == "" {
		return block, nil
	}
	if !strings.HasSuffix(text, "\n\n") {
		text += "\n"
	}
	return text + block, nil
}

func insertAfter(text string, pos int, block string) string {
	prefix, rest := text[:pos], text[pos:]
	if prefix != "" && !strings.HasSuffix(prefix, "\n") {
		prefix += "\n"
	}
	if rest != "" && !strings.HasPrefix(rest, "\n") {
		block += "\n"
	}
	return prefix + "\n" + block + rest
}

func insertBefore(text string, pos int, block string) string {
	prefix, rest := text[:pos], text[pos:]
	if prefix != "" && !strings.HasSuffix(prefix, "\n\n") {
		prefix += "\n"
	}
	return prefix + block + "\n" + rest
}

// Checksum returns the hex-encoded SHA-256 digest of a document.
func Checksum(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
