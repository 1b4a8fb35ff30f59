package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/Geniuskaa/quran_fest/internal/competition"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	PAGE_HOME         = "home.html"
	PAGE_ABOUT        = "about.html"
	PAGE_CATEGORIES   = "categories.html"
	PAGE_SCHEDULE     = "schedule.html"
	PAGE_RULES        = "rules.html"
	PAGE_JUDGES       = "judges.html"
	PAGE_RESULTS      = "results.html"
	PAGE_GALLERY      = "gallery.html"
	PAGE_CONTACT      = "contact.html"
	PAGE_REGISTER     = "register.html"
	PAGE_CONFIRMATION = "confirmation.html"
	PAGE_CLOSED       = "closed.html"
	PAGE_NOT_FOUND    = "notfound.html"
)

var pageNames = []string{
	PAGE_HOME, PAGE_ABOUT, PAGE_CATEGORIES, PAGE_SCHEDULE, PAGE_RULES, PAGE_JUDGES,
	PAGE_RESULTS, PAGE_GALLERY, PAGE_CONTACT, PAGE_REGISTER, PAGE_CONFIRMATION,
	PAGE_CLOSED, PAGE_NOT_FOUND,
}

type navItem struct {
	Path  string
	Label string
}

var nav = []navItem{
	{"/", "Home"},
	{"/about", "About"},
	{"/categories", "Categories"},
	{"/schedule", "Schedule"},
	{"/rules", "Rules"},
	{"/results", "Results"},
	{"/judges", "Judges"},
	{"/gallery", "Gallery"},
	{"/contact", "Contact"},
}

// page is what the layout template receives; Data is the page's own view.
type page struct {
	Title   string
	Active  string
	Event   string
	Year    int
	Nav     []navItem
	Contact competition.Contact
	Data    interface{}
}

var funcs = template.FuncMap{
	"categoryTitle": competition.CategoryTitle,
	"pad":           func(v int64) string { return fmt.Sprintf("%02d", v) },
	"score":         func(v float64) string { return fmt.Sprintf("%.1f", v) },
}

func parseTemplates() map[string]*template.Template {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		pages[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return pages
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	return m
}

type asset struct {
	contentType string
	body        []byte
}

// loadAssets reads the embedded static files once, minified when m is set.
func loadAssets(m *minify.M) (map[string]asset, error) {
	assets := make(map[string]asset)
	err := fs.WalkDir(staticFS, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		body, err := staticFS.ReadFile(p)
		if err != nil {
			return err
		}

		ct := mime.TypeByExtension(path.Ext(p))
		if ct == "" {
			ct = "application/octet-stream"
		}
		if m != nil {
			mediatype := strings.SplitN(ct, ";", 2)[0]
			if out, err := m.Bytes(mediatype, body); err == nil {
				body = out
			}
		}

		assets[strings.TrimPrefix(p, "static/")] = asset{contentType: ct, body: body}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loadAssets failed: %w", err)
	}
	return assets, nil
}

func (h *Handler) render(writer http.ResponseWriter, status int, name string, p page) {
	t, ok := h.pages[name]
	if !ok {
		h.logger.Error("unknown template", zap.String("template", name))
		http.Error(writer, "Something going wrong...", http.StatusInternalServerError)
		return
	}

	p.Event = competition.EVENT_NAME
	p.Year = competition.EVENT_YEAR
	p.Nav = nav
	p.Contact = competition.ContactInfo

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		h.logger.Error("template execution failed", zap.String("template", name), zap.Error(err))
		http.Error(writer, "Something going wrong...", http.StatusInternalServerError)
		return
	}

	body := buf.Bytes()
	if h.minify != nil {
		out, err := h.minify.Bytes("text/html", body)
		if err != nil {
			h.logger.Warn("html minification failed", zap.String("template", name), zap.Error(err))
		} else {
			body = out
		}
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(status)
	writer.Write(body)
}
