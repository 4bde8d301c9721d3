package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"time"

	"github.com/redmonkez12/go-blog/internal/auth"
	"github.com/redmonkez12/go-blog/internal/logging"
)

var pageNames = []string{
	"home",
	"register",
	"login",
	"account",
	"reset_request",
	"reset_token",
	"user_posts",
	"error",
}

// Page is the data every template receives
type Page struct {
	Title    string
	Identity *auth.Identity
	Flashes  []Flash
	Data     any
}

// Renderer executes the page templates inside the shared layout
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses layout.html and partials.html together with each page
// template found in fsys. avatarURL maps a stored image name to its public URL.
func NewRenderer(fsys fs.FS, avatarURL func(string) string) (*Renderer, error) {
	funcs := template.FuncMap{
		"avatarURL":  avatarURL,
		"pathEscape": url.PathEscape,
		"date": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(fsys, "layout.html", "partials.html", name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

// Render writes page name with status. Queued flashes are consumed and shown
// before any extra flashes from the current request.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, page Page, extra ...Flash) {
	tmpl, ok := rn.pages[name]
	if !ok {
		logging.GetLoggerFromContext(r.Context()).Error("unknown template", "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		page.Identity = &id
	}
	page.Flashes = append(popFlashes(w, r), extra...)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, page); err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("failed to render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
