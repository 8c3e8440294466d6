package view

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
)

// WritePage renders body inside the layout and writes it with status. The
// page is buffered so a render failure never leaves a half-written response.
func WritePage(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) error {
	var buf bytes.Buffer
	if err := Layout(title).Render(templ.WithChildren(r.Context(), body), &buf); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}
