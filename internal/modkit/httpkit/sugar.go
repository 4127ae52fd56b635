package httpkit

import "net/http"

// Get mounts fn under GET
func Get(r Router, path string, fn func(*http.Request) (any, error)) {
	r.Get(path, Call(fn))
}

// Post mounts fn under POST. fn reads the body itself
func Post(r Router, path string, fn func(*http.Request) (any, error)) {
	r.Post(path, Call(fn))
}
