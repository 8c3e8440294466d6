package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const appName = "Horde Stats"

const stylesheet = `
body{font-family:system-ui,sans-serif;margin:0 auto;max-width:56rem;padding:1rem;color:#222}
header a{color:inherit;text-decoration:none}
table{border-collapse:collapse;width:100%}
th,td{padding:.3rem .6rem;border-bottom:1px solid #ddd;text-align:left}
td.num,th.num{text-align:right}
details{margin:.5rem 0}
.error{color:#a00}
.muted{color:#777;font-size:.9rem}
`

// Title composes the browser title for a page.
func Title(page string) string {
	if page == "" {
		return appName
	}
	return page + " | " + appName
}

// Layout wraps its children in the page shell.
func Layout(title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(Title(title))
		h.raw(`</title><style>` + stylesheet + `</style></head><body>`)
		h.raw(`<header><h1><a href="/">` + appName + `</a></h1></header><main>`)
		if h.err != nil {
			return h.err
		}
		if err := templ.GetChildren(ctx).Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</main></body></html>`)
		return h.err
	})
}
