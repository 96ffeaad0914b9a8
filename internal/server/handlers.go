package server

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sha1n/docshelf/internal/domain"
	"github.com/sha1n/docshelf/internal/search"
	"github.com/sha1n/docshelf/internal/web"
)

// viewerConfig is the JSON served at /config.
type viewerConfig struct {
	AppTitle      string `json:"appTitle"`
	ThemeColor    string `json:"themeColor"`
	ContentFolder string `json:"contentFolder"`
	SearchEnabled bool   `json:"searchEnabled"`
}

var dispositionEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// handleList serves the freshly indexed tree.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	tree, err := s.library.Tree()
	if err != nil {
		LoggerFrom(r.Context(), s.logger).Error("Failed to index content folder", "error", err)
		writeJSONError(w, http.StatusInternalServerError, msgListFailed, err)
		return
	}

	data, err := domain.MarshalListing(tree)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, msgListFailed, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

// handleFile streams one file from the content folder.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	// The mux already decoded the query once; the resolver decodes again.
	requested := r.URL.Query().Get("path")

	doc, err := s.library.Open(requested)
	if err != nil {
		switch statusFor(err) {
		case http.StatusBadRequest:
			LoggerFrom(r.Context(), s.logger).Warn("Rejected file path", "path", requested, "error", err)
			writeText(w, http.StatusBadRequest, msgInvalidPath)
		case http.StatusNotFound:
			writeText(w, http.StatusNotFound, msgNotFound)
		default:
			writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		return
	}

	f, err := os.Open(doc.FullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeText(w, http.StatusNotFound, msgNotFound)
			return
		}
		LoggerFrom(r.Context(), s.logger).Error("Failed to open file", "path", doc.Path, "error", err)
		writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", doc.MediaType)
	if doc.IsPDF() {
		w.Header().Set("Content-Disposition", `inline; filename="`+dispositionEscaper.Replace(doc.Name)+`"`)
	}
	http.ServeContent(w, r, doc.Name, doc.ModTime, f)
}

// handleView serves a minimal page that frames /file.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := web.RenderView(&buf, r.URL.Query().Get("path")); err != nil {
		LoggerFrom(r.Context(), s.logger).Error("Failed to render view", "error", err)
		writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleConfig serves the viewer configuration.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	settings := s.library.Settings()
	writeJSON(w, http.StatusOK, viewerConfig{
		AppTitle:      settings.Viewer.AppTitle,
		ThemeColor:    settings.Viewer.ThemeColor,
		ContentFolder: filepath.Base(s.library.Root()),
		SearchEnabled: s.library.SearchEnabled(),
	})
}

// handleSearch runs a full-text query: /search?q=&type=&limit=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	q := search.Query{
		Text:   params.Get("q"),
		Format: params.Get("type"),
	}
	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a non-negative integer", nil)
			return
		}
		q.Limit = limit
	}

	results, err := s.library.Search(r.Context(), q)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			LoggerFrom(r.Context(), s.logger).Error("Search failed", "query", q.Text, "error", err)
		}
		writeJSONError(w, status, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}
