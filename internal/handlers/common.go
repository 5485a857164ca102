// Package handlers serves the web application: HTML pages for browsers and
// JSON for API clients, backed by the REST gateway and the draft store.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/proposal-desk/httpx"
	"github.com/diewo77/proposal-desk/internal/document"
	"github.com/diewo77/proposal-desk/internal/gateway"
	"github.com/diewo77/proposal-desk/internal/logging"
	"github.com/diewo77/proposal-desk/internal/metrics"
	"github.com/diewo77/proposal-desk/internal/render/htmlrender"
	"github.com/diewo77/proposal-desk/internal/render/pdfrender"
	"github.com/diewo77/proposal-desk/internal/render/xlsxrender"
	"github.com/diewo77/proposal-desk/validation"
	"github.com/diewo77/proposal-desk/view"
)

// Document formats served by the download endpoints.
const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func badID(w http.ResponseWriter, r *http.Request) {
	httpx.JSONError(w, http.StatusBadRequest, "invalid_id", r.PathValue("id"))
}

// fail logs err once and answers with the matching status. Backend errors
// keep their 404; other backend statuses become 502.
func fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	log := logging.FromContext(r.Context())
	status := http.StatusInternalServerError
	var se *gateway.StatusError
	switch {
	case gateway.IsNotFound(err):
		status = http.StatusNotFound
	case errors.As(err, &se):
		status = http.StatusBadGateway
	}
	log.Error(msg, zap.Int("status", status), zap.Error(err))
	if httpx.WantsJSON(r) {
		var details any
		if se != nil && se.Body != "" && json.Valid([]byte(se.Body)) {
			details = json.RawMessage(se.Body)
		}
		httpx.JSONError(w, status, msg, details)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	page(w, r, "error.html", map[string]any{"Status": status, "Message": msg})
}

// invalid answers 422 with the violations as JSON, or re-renders name with
// them for browsers.
func invalid(w http.ResponseWriter, r *http.Request, v validation.Violations, name string, data map[string]any) {
	if httpx.WantsJSON(r) || name == "" {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["Errors"] = v
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnprocessableEntity)
	page(w, r, name, data)
}

// page renders a view and logs a template failure.
func page(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if err := view.Render(w, r, name, data); err != nil {
		logging.FromContext(r.Context()).Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "template render error", http.StatusInternalServerError)
	}
}

// decodeJSON reads a JSON body into v and answers 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// documentWriter renders documents in every supported format.
type documentWriter struct {
	metrics *metrics.Metrics
	now     func() time.Time
}

func formatOf(r *http.Request, def string) string {
	if f := strings.ToLower(r.URL.Query().Get("format")); f != "" {
		return f
	}
	return def
}

// write renders doc into a buffer first so a failed render never sends a
// partial file.
func (d documentWriter) write(w http.ResponseWriter, r *http.Request, doc document.Document, format string) {
	var (
		buf         bytes.Buffer
		err         error
		contentType string
		disposition string
	)
	base := strings.TrimSuffix(doc.FileName, ".pdf")
	switch format {
	case FormatHTML:
		err = htmlrender.Render(&buf, doc)
		contentType = "text/html; charset=utf-8"
	case FormatPDF:
		err = pdfrender.Render(&buf, doc)
		contentType = "application/pdf"
		disposition = fmt.Sprintf("attachment; filename=%q", base+".pdf")
	case FormatXLSX:
		err = xlsxrender.Render(&buf, doc)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		disposition = fmt.Sprintf("attachment; filename=%q", base+".xlsx")
	default:
		httpx.JSONError(w, http.StatusBadRequest, "unsupported_format", format)
		return
	}
	if err != nil {
		fail(w, r, "failed_to_render_document", err)
		return
	}
	d.metrics.DocumentRendered(string(doc.Kind), format)
	w.Header().Set("Content-Type", contentType)
	if disposition != "" {
		w.Header().Set("Content-Disposition", disposition)
	}
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}
