package api

import (
	"net/http"
)

// writeText writes a plain-text response with the given status code.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write([]byte(body))
}

// writeNotFound writes a 404 response.
func writeNotFound(w http.ResponseWriter) {
	writeText(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

// writeInternalError writes a 500 response.
func writeInternalError(w http.ResponseWriter) {
	writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
