package httpapi

import (
	"encoding/json"
	"net/http"
)

// Renderer turns a view name and a data bag into a response body. Handlers
// never touch markup; swapping the renderer swaps the presentation.
type Renderer interface {
	Render(w http.ResponseWriter, status int, view string, data map[string]any) error
}

// JSONRenderer emits the view name and data bag as a JSON document. It is
// the default renderer; an HTML template renderer satisfies the same
// interface.
type JSONRenderer struct{}

func (JSONRenderer) Render(w http.ResponseWriter, status int, view string, data map[string]any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(map[string]any{"view": view, "data": data})
}

// writeJSON is for the endpoints that answer data, not views.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // headers already sent
}
