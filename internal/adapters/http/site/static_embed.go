package site

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

//go:embed templates/*.html
var templateFS embed.FS

// FS returns the embedded stylesheet directory.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// pages holds one template set per page, each sharing the layout.
var pages = func() map[string]*template.Template {
	out := make(map[string]*template.Template)
	for _, name := range []string{"index.html", "registered.html", "pitch.html"} {
		out[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return out
}()
