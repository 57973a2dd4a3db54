package httpapi

import (
	"net/http"

	"github.com/John-Robertt/sub2clash/internal/render"
)

const textContentType = "text/plain;charset=UTF-8"

func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", textContentType)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func WriteYAML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", render.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// WriteFailure answers with the plain-text "Error: ..." body used for every
// failure after request validation.
func WriteFailure(w http.ResponseWriter, err error) {
	WriteText(w, http.StatusInternalServerError, "Error: "+err.Error())
}
