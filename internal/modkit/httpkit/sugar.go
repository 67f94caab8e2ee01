package httpkit

import (
	"net/http"

	phttp "gscchat/internal/platform/net/http"
)

// PostJSON mounts h under POST; the body is decoded into T and validated before h runs
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}

// Get mounts a body-less handler under GET
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, phttp.JSONHandlerNoBody(h))
}
