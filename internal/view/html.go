package view

import (
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// htmlWriter keeps the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) num(n int) {
	h.raw(strconv.Itoa(n))
}

func (h *htmlWriter) attr(name, value string) {
	h.raw(fmt.Sprintf(` %s="%s"`, name, templ.EscapeString(value)))
}

func (h *htmlWriter) url(name, value string) {
	h.attr(name, string(templ.URL(value)))
}
