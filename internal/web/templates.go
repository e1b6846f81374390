package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// Templates renders the HTML pages.
type Templates struct {
	templates map[string]*template.Template
	funcs     template.FuncMap
}

// NewTemplates loads every page under pages/ together with the layouts and partials.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		templates: make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}

	if err := t.load(templatesFS); err != nil {
		return nil, err
	}

	return t, nil
}

// Render executes the "base" layout for the named page.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

func (t *Templates) load(templatesFS fs.FS) error {
	var common []string
	for _, pattern := range []string{"layouts/*.html", "partials/*.html"} {
		matches, err := fs.Glob(templatesFS, pattern)
		if err != nil {
			return fmt.Errorf("finding %s: %w", pattern, err)
		}
		common = append(common, matches...)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no page templates found")
	}

	for _, page := range pages {
		name := strings.TrimSuffix(filepath.Base(page), ".html")

		files := append([]string{page}, common...)
		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.templates[name] = tmpl
	}

	return nil
}

func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"plural": func(n int, word string) string {
			if n == 1 {
				return fmt.Sprintf("%d %s", n, word)
			}
			return fmt.Sprintf("%d %ss", n, word)
		},
	}
}

// PageData contains data passed to every page.
type PageData struct {
	Title       string
	User        *UserData
	CurrentPath string
}

// UserData identifies the logged-in user.
type UserData struct {
	ID   string
	Name string
}

// HomePageData is the data for the upload page.
type HomePageData struct {
	PageData
	Authenticated bool
	LoginEnabled  bool
	MaxUploadMB   int64
	Playlists     []PlaylistData
}

// PlaylistData is one saved playlist shown on the home page.
type PlaylistData struct {
	Name       string
	Mood       string
	URL        string
	TrackCount int
	CreatedAt  time.Time
}
