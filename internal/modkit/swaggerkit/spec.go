package swaggerkit

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// Operation documents one mounted route
type Operation struct {
	Method  string
	Path    string // full path under the API base, e.g. /insights/ask
	Summary string
	Tag     string
	// Body marks routes that take a JSON request body
	Body bool
}

var (
	mu  sync.RWMutex
	ops = map[string]Operation{}
)

// Document records operations for the served spec. Re-documenting a route replaces it
func Document(list ...Operation) {
	mu.Lock()
	defer mu.Unlock()
	for _, o := range list {
		o.Method = strings.ToLower(o.Method)
		ops[o.Method+" "+o.Path] = o
	}
}

func documented() []Operation {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Operation, 0, len(ops))
	for _, o := range ops {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

type object = map[string]any

// errorSchema matches the failure side of the response envelope
var errorSchema = object{
	"type": "object",
	"properties": object{
		"status_code":     object{"type": "integer"},
		"status":          object{"type": "string"},
		"code":            object{"type": "integer"},
		"error":           object{"type": "string"},
		"field":           object{"type": "string"},
		"upstream_status": object{"type": "integer"},
		"request_id":      object{"type": "string"},
	},
	"required": []any{"status_code", "status"},
}

var okSchema = object{
	"type": "object",
	"properties": object{
		"status_code": object{"type": "integer"},
		"status":      object{"type": "string"},
		"request_id":  object{"type": "string"},
		"data":        object{"type": "object"},
	},
}

func jsonContent(ref string) object {
	return object{"application/json": object{"schema": object{"$ref": "#/components/schemas/" + ref}}}
}

// failures every operation can answer with
var failures = map[string]string{
	"400": "Bad Request",
	"401": "Metrics source not connected",
	"422": "Invalid intent parameters",
	"500": "Internal Server Error",
	"502": "Metrics source failed",
}

// Spec builds the OpenAPI 3.0 document for everything documented so far
func Spec(title, version, base string) map[string]any {
	paths := object{}
	for _, o := range documented() {
		resps := object{"200": object{"description": "ok", "content": jsonContent("Envelope")}}
		for status, desc := range failures {
			resps[status] = object{"description": desc, "content": jsonContent("ErrorResponse")}
		}
		op := object{"summary": o.Summary, "responses": resps}
		if o.Tag != "" {
			op["tags"] = []any{o.Tag}
		}
		if o.Body {
			op["requestBody"] = object{
				"required": true,
				"content":  object{"application/json": object{"schema": object{"type": "object"}}},
			}
		}
		item, _ := paths[o.Path].(object)
		if item == nil {
			item = object{}
			paths[o.Path] = item
		}
		item[o.Method] = op
	}
	return object{
		"openapi": "3.0.3",
		"info":    object{"title": title, "version": version},
		"servers": []any{object{"url": base}},
		"paths":   paths,
		"components": object{"schemas": object{
			"Envelope":      okSchema,
			"ErrorResponse": errorSchema,
		}},
	}
}

func serveSpec(title, version, base string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(Spec(title, version, base))
	}
}
