// Package docs serves the OpenAPI description of the HTTP API.
package docs

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"

	"github.com/5w1tchy/book-records/internal/api/httpx"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openapiYAML []byte

// Document is the parsed OpenAPI document.
type Document map[string]any

// Load parses the embedded OpenAPI document.
func Load() (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(openapiYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi.yaml: %w", err)
	}
	return doc, nil
}

// Handler serves the document as YAML, or as JSON when asked for with
// ?format=json or Accept: application/json.
func Handler(doc Document) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantsJSON(r) {
			httpx.WriteJSON(w, http.StatusOK, doc)
			return
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
	})
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
