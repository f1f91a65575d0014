package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/generator"
	"github.com/hpungsan/passforge/internal/ops"
	"github.com/hpungsan/passforge/internal/preset"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "generate", "presets", "help"
	Secure  bool
}

// IndexPageData is the template data for the generator form.
type IndexPageData struct {
	PageData
	Options    generator.Options
	Presets    []preset.Preset
	MinLength  int
	MaxLength  int
	MaxBatch   int
	PresetsOff bool
}

// ResultPageData is the template data for generated passwords.
type ResultPageData struct {
	PageData
	Result *ops.GenerateOutput
	Preset string
}

// AnalyzePageData is the template data for a password analysis.
type AnalyzePageData struct {
	PageData
	Analysis *ops.Analysis
}

// PresetsPageData is the template data for the preset list page.
type PresetsPageData struct {
	PageData
	Items      []preset.Preset
	Pagination ops.Pagination
}

// HelpPageData is the template data for the help page.
type HelpPageData struct {
	PageData
	RenderedHTML template.HTML
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    *slog.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}

	funcMap := template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"prevOffset": prevOffset,
		"formatTime": formatTime,
		"ago":        ago,
		"bits":       func(f float64) string { return fmt.Sprintf("%.1f", f) },
		"commaInt":   func(n int) string { return humanize.Comma(int64(n)) },
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"index":   "index.html",
		"result":  "result.html",
		"analyze": "analyze.html",
		"presets": "presets.html",
		"help":    "help.html",
		"error":   "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		logger:    logger,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For HTMX requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("template not found", "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.logger.Error("template execution error", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	pErr, message := r.publicError(req, err)

	// HTMX request: return HTML fragment
	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(pErr.Status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	if wantsJSON(req) {
		writeJSONError(w, pErr, message)
		return
	}

	r.renderPageStatus(w, req, pErr.Status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", pErr.Status),
			Version: r.version,
			Secure:  true,
		},
		StatusCode: pErr.Status,
		Message:    message,
	})
}

// renderJSONError renders an error as JSON regardless of the Accept header.
func (r *Renderer) renderJSONError(w http.ResponseWriter, req *http.Request, err error) {
	pErr, message := r.publicError(req, err)
	writeJSONError(w, pErr, message)
}

// publicError classifies err and returns the message safe to show a client.
// Internal messages are replaced so storage paths never reach the client.
func (r *Renderer) publicError(req *http.Request, err error) (*errors.PassError, string) {
	var pErr *errors.PassError
	if !stderrors.As(err, &pErr) {
		pErr = errors.NewInternal(err)
	}
	if pErr.Code == errors.ErrInternal {
		r.logger.Error("request failed", "path", req.URL.Path, "error", err)
		return pErr, "an internal error occurred"
	}
	return pErr, pErr.Message
}

func writeJSONError(w http.ResponseWriter, pErr *errors.PassError, message string) {
	renderJSON(w, pErr.Status, map[string]any{
		"error": map[string]any{
			"code":    string(pErr.Code),
			"message": message,
			"status":  pErr.Status,
		},
	})
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md []byte) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert(md, &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(string(md)))
	}
	return template.HTML(buf.String())
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}

// ago formats a Unix timestamp relative to now, e.g. "3 minutes ago".
func ago(unix int64) string {
	return humanize.Time(time.Unix(unix, 0))
}

// prevOffset returns the offset of the previous page, never below zero.
func prevOffset(offset, limit int) int {
	return max(offset-limit, 0)
}
