package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"

	"github.com/starford/newsdesk/internal/newsletter"
)

// Handler serves one newsletter document.
type Handler struct {
	svc  *newsletter.Service
	file string
	md   goldmark.Markdown
}

// NewHandler creates a handler for file.
func NewHandler(svc *newsletter.Service, file string) *Handler {
	return &Handler{svc: svc, file: file, md: newMarkdown()}
}

// GetDocument handles GET /document and returns the raw markdown.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	text, err := h.svc.Show(r.Context(), h.file)
	if err != nil {
		writeError(w, "show document", err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = io.WriteString(w, text)
}

// GetDocumentHTML handles GET /document/html.
func (h *Handler) GetDocumentHTML(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	text, err := h.svc.Show(ctx, h.file)
	if err != nil {
		writeError(w, "show document", err)
		return
	}
	title := h.file
	if outline, err := h.svc.Registry().Parse(text); err == nil && outline.Title != "" {
		title = outline.Title
	}
	page, err := renderHTML(h.md, title, []byte(text))
	if err != nil {
		writeError(w, "render document", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// CreateDocument handles POST /document and writes a fresh template.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Create(origin(r), h.file); err != nil {
		writeError(w, "create document", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"path": h.file})
}

// ListSections handles GET /sections.
func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	outline, err := h.svc.Sections(r.Context(), h.file)
	if err != nil {
		writeError(w, "list sections", err)
		return
	}
	writeJSON(w, http.StatusOK, outline)
}

// RefreshSection handles POST /sections/{name}/refresh.
func (h *Handler) RefreshSection(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Refresh(origin(r), h.file, chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, "refresh section", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UpdateAll handles POST /sections/refresh. Partial failures are reported per
// section with 207 Multi-Status.
func (h *Handler) UpdateAll(w http.ResponseWriter, r *http.Request) {
	outcomes, err := h.svc.UpdateAll(origin(r), h.file)
	status := http.StatusOK
	if err != nil {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, map[string]any{"sections": outcomes})
}

type addReleaseRequest struct {
	Date    string `json:"date"`
	Summary string `json:"summary"`
}

// AddRelease handles POST /releases.
func (h *Handler) AddRelease(w http.ResponseWriter, r *http.Request) {
	var req addReleaseRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	res, err := h.svc.AddRelease(origin(r), h.file, req.Date, req.Summary)
	if err != nil {
		writeError(w, "add release", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PreviewNews handles GET /news/preview?limit=N.
func (h *Handler) PreviewNews(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	body, err := h.svc.PreviewNews(r.Context(), limit)
	if err != nil {
		writeError(w, "preview news", err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = io.WriteString(w, body)
}

// History handles GET /history?limit=N.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.svc.History(r.Context(), h.file, limit)
	if err != nil {
		writeError(w, "history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"patches": entries})
}

func origin(r *http.Request) context.Context {
	return newsletter.WithOrigin(r.Context(), newsletter.OriginHTTP)
}
