package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/aryannaik/quiz-filter/internal/catalog"
	"github.com/aryannaik/quiz-filter/internal/logger"
	"github.com/aryannaik/quiz-filter/internal/markup"
	"github.com/aryannaik/quiz-filter/internal/search"
)

const (
	maxUploadBytes = 32 << 20
	uploadField    = "files"
)

type Handlers struct {
	searcher   *search.Searcher
	catalog    *catalog.Catalog
	exportName string
	log        *logger.Logger
}

func NewHandlers(searcher *search.Searcher, c *catalog.Catalog, exportName string, log *logger.Logger) *Handlers {
	return &Handlers{
		searcher:   searcher,
		catalog:    c,
		exportName: exportName,
		log:        log,
	}
}

type unitFailure struct {
	Unit  string `json:"unit"`
	Error string `json:"error"`
}

type importResponse struct {
	Added    int                 `json:"added"`
	Skipped  int                 `json:"skipped"`
	Units    []catalog.UnitStats `json:"units"`
	Failures []unitFailure       `json:"failures"`
	Total    int                 `json:"total"`
}

func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	sources, err := readSources(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if len(sources) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no files uploaded"})
		return
	}

	result, err := h.catalog.ImportSources(r.Context(), sources)
	if err != nil {
		h.log.Error("import failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "import failed"})
		return
	}

	resp := importResponse{
		Added:    result.Added,
		Skipped:  result.Skipped,
		Units:    result.Units,
		Failures: make([]unitFailure, 0, len(result.Failures)),
		Total:    h.catalog.Count(),
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, unitFailure{Unit: f.Unit, Error: f.Err.Error()})
	}
	if resp.Units == nil {
		resp.Units = []catalog.UnitStats{}
	}

	h.log.Info("imported units", "units", len(sources), "added", result.Added, "skipped", result.Skipped, "failed", len(result.Failures))
	writeJSON(w, http.StatusOK, resp)
}

// readSources accepts either a multipart upload with one or more files
// or a raw XML request body.
func readSources(w http.ResponseWriter, r *http.Request) ([]markup.Source, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		var sources []markup.Source
		for _, fh := range r.MultipartForm.File[uploadField] {
			f, err := fh.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
			}
			sources = append(sources, markup.Source{Name: fh.Filename, Data: data})
		}
		return sources, nil
	}

	// Anything else is the document itself, whatever Content-Type the
	// client sent.
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.xml"
	}
	return []markup.Source{{Name: name, Data: data}}, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

func (h *Handlers) HandleRecords(w http.ResponseWriter, r *http.Request) {
	visibleOnly := r.URL.Query().Get("visible") == "1"
	limit := parseLimit(r, 0)

	results := h.searcher.List(visibleOnly, limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   h.catalog.Query(),
		"results": results,
		"total":   len(results),
	})
}

func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r.URL.Query().Get("id"))
	if !ok {
		return
	}

	detail, err := h.searcher.Detail(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handlers) HandleFilter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	query := r.URL.Query().Get("q")
	results := h.searcher.Filter(query, parseLimit(r, 0))

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
		"total":   len(results),
	})
}

type selectRequest struct {
	ID       string `json:"id"`
	Visible  bool   `json:"visible"`
	Selected bool   `json:"selected"`
}

func (h *Handlers) HandleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Visible {
		n := h.catalog.SelectVisible(req.Selected)
		writeJSON(w, http.StatusOK, map[string]any{"updated": n})
		return
	}

	id, ok := parseID(w, req.ID)
	if !ok {
		return
	}
	if err := h.catalog.SetSelected(id, req.Selected); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": 1})
}

func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var removed int
	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "unselected":
		removed = h.catalog.ClearUnselected()
	case "all":
		removed = h.catalog.ClearAll()
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown mode %q", mode)})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"removed": removed,
		"total":   h.catalog.Count(),
	})
}

func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.catalog.Export().Marshal()
	if err != nil {
		h.log.Error("export failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.exportName))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

type statusResponse struct {
	catalog.Stats
	Query string `json:"query"`
}

func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Stats: h.catalog.Stats(),
		Query: h.catalog.Query(),
	})
}

func parseLimit(r *http.Request, def int) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func parseID(w http.ResponseWriter, s string) (uuid.UUID, bool) {
	if s == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing record id"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
