package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/bookclub/catalog/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"list_books",
	"retrieve_book",
	"list_comments",
	"comment_form",
	"update_comment",
	"register_form",
	"login_form",
	"error",
}

// Views holds the parsed page templates.
type Views struct {
	pages map[string]*template.Template
}

// NewViews parses every page together with the shared layout.
func NewViews() (*Views, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Views{pages: pages}, nil
}

// MustViews is NewViews for callers that cannot continue without pages.
func MustViews() *Views {
	views, err := NewViews()
	if err != nil {
		panic(err)
	}
	return views
}

type pageData map[string]any

func (v *Views) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	tmpl, ok := v.pages[name]
	if !ok {
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	if data == nil {
		data = pageData{}
	}
	data["User"] = session.UserFrom(r.Context())

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", name).Msg("render failed")
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fail answers with an error page or an error body, depending on what
// the client asked for.
func (v *Views) fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	if wantsHTML(r) {
		v.render(w, r, status, "error", pageData{"Status": status, "Message": message})
		return
	}
	writeError(w, status, message)
}
