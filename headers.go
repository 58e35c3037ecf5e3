package main

import "net/http"

// baseHeaders goes out on every response, including errors, redirects and
// pre-flight replies.
var baseHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
	"Cache-Control":                "no-cache, no-store, must-revalidate",
	"Pragma":                       "no-cache",
	"Expires":                      "0",
	"X-Content-Type-Options":       "nosniff",
	"X-Frame-Options":              "DENY",
}

// withBaseHeaders sets the fixed header set before the wrapped handler runs.
func withBaseHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for name, value := range baseHeaders {
			h.Set(name, value)
		}
		next.ServeHTTP(w, r)
	})
}
