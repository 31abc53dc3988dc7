package api

import (
	"encoding/json"
	"net/http"

	"github.com/conduit-lang/enumbler/internal/enumble"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ModelResponse describes one enumbled model
type ModelResponse struct {
	Name        string          `json:"name"`
	Table       string          `json:"table"`
	LabelColumn string          `json:"label_column"`
	Columns     []string        `json:"columns,omitempty"`
	Count       int             `json:"count"`
	Entries     []EntryResponse `json:"entries,omitempty"`
}

// EntryResponse is the JSON form of an entry
type EntryResponse struct {
	ID         int            `json:"id"`
	Name       string         `json:"name"`
	Label      string         `json:"label"`
	GraphQL    string         `json:"graphql"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// ResolveResponse is the result of resolving a list of keys. IDs keeps one
// slot per distinct key, null where the key did not resolve.
type ResolveResponse struct {
	Model   string          `json:"model"`
	Entries []EntryResponse `json:"entries"`
	IDs     []*int          `json:"ids"`
}

func newModelResponse(reg *enumble.Registry, withEntries bool) ModelResponse {
	m := reg.Model()
	resp := ModelResponse{
		Name:        m.Name,
		Table:       m.Table,
		LabelColumn: m.LabelColumn,
		Columns:     m.Columns,
		Count:       reg.Len(),
	}
	if withEntries {
		resp.Entries = newEntryResponses(reg.All())
	}
	return resp
}

func newEntryResponse(e *enumble.Entry) EntryResponse {
	resp := EntryResponse{
		ID:      e.ID(),
		Name:    e.Name().String(),
		Label:   e.Label(),
		GraphQL: e.GraphQLEnum(),
	}
	if cols := e.ExtraColumns(); len(cols) > 0 {
		resp.Attributes = make(map[string]any, len(cols))
		for _, c := range cols {
			resp.Attributes[c], _ = e.Attribute(c)
		}
	}
	return resp
}

func newEntryResponses(entries []*enumble.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, newEntryResponse(e))
	}
	return out
}

// renderJSON writes v with the given status
func renderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// renderError writes a standard error response
func renderError(w http.ResponseWriter, status int, err error, code string) {
	renderJSON(w, status, &ErrorResponse{
		Error:   "error",
		Message: err.Error(),
		Code:    code,
	})
}
