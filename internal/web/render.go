package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/moodyapp/moody/internal/errors"
)

// writeJSON renders a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// errorBody is the wire shape of an error response.
type errorBody struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Status  int              `json:"status"`
	Details map[string]any   `json:"details,omitempty"`
}

// writeError maps an error onto its HTTP status and JSON body.
// Internal error details are not exposed to avoid leaking paths or SQL.
func writeError(w http.ResponseWriter, err error) {
	mErr, ok := err.(*errors.MoodyError)
	if !ok {
		mErr = errors.NewInternal(nil)
	}

	body := errorBody{
		Code:    mErr.Code,
		Message: mErr.Message,
		Status:  mErr.Status,
	}
	if mErr.Code == errors.ErrInternal {
		body.Message = "an internal error occurred"
	} else {
		body.Details = mErr.Details
	}

	writeJSON(w, mErr.Status, map[string]any{"error": body})
}

// renderMarkdown converts markdown text to HTML using goldmark.
// Used for free-text notes so the consuming UI can show formatted text.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		// Fall back to empty rather than failing the whole response
		return template.HTML("")
	}
	return template.HTML(buf.String())
}
