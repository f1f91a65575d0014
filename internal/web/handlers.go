package web

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/generator"
	"github.com/hpungsan/passforge/internal/ops"
)

// maxFormBytes bounds request bodies; the largest legitimate form is a
// password plus a handful of toggles.
const maxFormBytes = 64 << 10

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	deps     ops.Deps
	renderer *Renderer
	help     template.HTML
}

func (h *Handlers) page(title, nav string) PageData {
	secure := h.deps.Generator == nil || h.deps.Generator.Secure()
	return PageData{
		Title:   title,
		Version: h.renderer.version,
		Nav:     nav,
		Secure:  secure,
	}
}

// HandleIndex renders the generator form.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	data := IndexPageData{
		PageData:   h.page("Generate", "generate"),
		Options:    h.deps.Config.GeneratorDefaults(),
		MinLength:  generator.MinLength,
		MaxLength:  generator.MaxLength,
		MaxBatch:   generator.MaxBatch,
		PresetsOff: h.deps.DB == nil,
	}

	if h.deps.DB != nil {
		result, err := ops.ListPresets(r.Context(), h.deps.DB, ops.ListPresetsInput{Limit: ops.MaxListLimit})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Presets = result.Items
	}

	h.renderer.renderPage(w, r, "index", data)
}

// HandleGenerate handles POST /generate.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	opts, err := formOptions(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	presetName := strings.TrimSpace(r.FormValue("preset"))
	if presetName != "" {
		opts = nil
	}

	count, err := formInt(r, "count", 1)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.Generate(r.Context(), h.deps, ops.GenerateInput{
		Options: opts,
		Preset:  presetName,
		Count:   &count,
		Analyze: formBool(r, "analyze"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "result", ResultPageData{
		PageData: h.page("Passwords", "generate"),
		Result:   result,
		Preset:   presetName,
	})
}

// HandleAnalyze handles POST /analyze.
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if _, ok := r.PostForm["password"]; !ok {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("password is required"))
		return
	}

	opts, err := formOptions(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	analysis, err := ops.Analyze(r.Context(), h.deps, ops.AnalyzeInput{
		Password: r.PostForm.Get("password"),
		Options:  opts,
		Preset:   strings.TrimSpace(r.FormValue("preset")),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, analysis)
		return
	}

	h.renderer.renderPage(w, r, "analyze", AnalyzePageData{
		PageData: h.page("Analysis", "generate"),
		Analysis: analysis,
	})
}

// HandleStatus handles GET /status. Always JSON.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Status(r.Context(), h.deps)
	if err != nil {
		h.renderer.renderJSONError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandlePresets handles GET /presets.
func (h *Handlers) HandlePresets(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListPresets(r.Context(), h.deps.DB, ops.ListPresetsInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "presets", PresetsPageData{
		PageData:   h.page("Presets", "presets"),
		Items:      result.Items,
		Pagination: result.Pagination,
	})
}

// HandlePresetSave handles POST /presets.
func (h *Handlers) HandlePresetSave(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	opts, err := formOptions(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if opts == nil {
		defaults := h.deps.Config.GeneratorDefaults()
		opts = &defaults
	}

	mode := ops.SaveModeError
	if formBool(r, "replace") {
		mode = ops.SaveModeReplace
	}

	result, err := ops.SavePreset(r.Context(), h.deps.DB, ops.SavePresetInput{
		Name:    r.FormValue("name"),
		Options: *opts,
		Mode:    mode,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.logger.Info("preset saved", "id", result.ID, "replaced", result.Replaced)

	if wantsJSON(r) {
		status := http.StatusCreated
		if result.Replaced {
			status = http.StatusOK
		}
		renderJSON(w, status, result)
		return
	}

	http.Redirect(w, r, "/presets", http.StatusSeeOther)
}

// HandlePresetDelete handles DELETE /presets/{name}.
func (h *Handlers) HandlePresetDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.DeletePreset(r.Context(), h.deps.DB, ops.DeletePresetInput{
		Name: r.PathValue("name"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX swaps the row out with an empty body
	if r.Header.Get("HX-Request") == "true" {
		w.WriteHeader(http.StatusOK)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// HandleHelp handles GET /help.
func (h *Handlers) HandleHelp(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "help", HelpPageData{
		PageData:     h.page("Help", "help"),
		RenderedHTML: h.help,
	})
}

// parseForm parses the request body, bounded to maxFormBytes.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return errors.NewInvalidRequest("invalid form body")
	}
	return nil
}

// formOptions builds generator options from form fields. It returns nil when
// the form carries no length field, leaving resolution to presets or
// configured defaults. Checkboxes are absent when unchecked, so every toggle
// not present is false.
func formOptions(r *http.Request) (*generator.Options, error) {
	if r.FormValue("length") == "" {
		return nil, nil
	}
	length, err := formInt(r, "length", 0)
	if err != nil {
		return nil, err
	}
	return &generator.Options{
		Length:           length,
		Lowercase:        formBool(r, "lowercase"),
		Uppercase:        formBool(r, "uppercase"),
		Numbers:          formBool(r, "numbers"),
		Symbols:          formBool(r, "symbols"),
		ExcludeSimilar:   formBool(r, "exclude_similar"),
		ExcludeAmbiguous: formBool(r, "exclude_ambiguous"),
		EnsureAllTypes:   formBool(r, "ensure_all_types"),
	}, nil
}

// formInt parses an integer form field. Unlike query parameters, a malformed
// value is an error rather than a silent default.
func formInt(r *http.Request, name string, defaultVal int) (int, error) {
	s := strings.TrimSpace(r.FormValue(name))
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.NewInvalidRequest(name + " must be an integer")
	}
	return v, nil
}

// formBool reports whether a checkbox-style form field is set.
func formBool(r *http.Request, name string) bool {
	switch r.FormValue(name) {
	case "on", "true", "1":
		return true
	}
	return false
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
