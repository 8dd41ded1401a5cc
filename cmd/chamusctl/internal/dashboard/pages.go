package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/GeovanniVera/chamus/pkg/sdk"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"login", "loading", "error",
	"home", "museums", "museum", "room", "categories", "users", "quotes",
}

var templateFuncs = template.FuncMap{
	"percent": func(v float64) string {
		return strconv.FormatFloat(math.Round(v*10000)/100, 'f', -1, 64) + "%"
	},
	"price": func(p float64) string {
		if p == 0 {
			return "Free"
		}
		return fmt.Sprintf("$%.2f", p)
	},
	"dash": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "-"
		}
		return s
	},
	"quoteField": func(q sdk.Quote, keys ...string) string {
		for _, k := range keys {
			if v, ok := q.Fields[k]; ok && v != nil {
				if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
					return s
				}
			}
		}
		return "-"
	},
}

// pageSet holds one template per page, each a clone of the layout with
// the page's blocks parsed on top.
type pageSet struct {
	pages map[string]*template.Template
}

func loadPages() (*pageSet, error) {
	layout, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, err
	}

	set := &pageSet{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		clone, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		page, err := clone.ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		set.pages[name] = page
	}
	return set, nil
}

// pageData is the value every template renders.
type pageData struct {
	Title     string
	SignedIn  bool
	User      *sdk.User
	Flash     string
	Errors    sdk.FieldErrors
	Form      map[string]string
	Data      any
	RequestID string
}

// render executes page into a buffer so template errors never produce a
// half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	tmpl, ok := s.pages.pages[name]
	if !ok {
		s.logger.Error("unknown page", "page", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if s.auth.Status() == sdk.StatusAuthenticated {
		data.SignedIn = true
		data.User = s.auth.User()
	}
	if data.Flash == "" {
		data.Flash = s.cookies.TakeFlash(w, r)
	}
	data.RequestID = middleware.GetReqID(r.Context())

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.Error("render failed", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderLoading shows the placeholder used while the session is unresolved.
func (s *Server) renderLoading(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Retry-After", "1")
	s.render(w, r, http.StatusOK, "loading", pageData{Title: "Loading", Data: r.URL.RequestURI()})
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.render(w, r, status, "error", pageData{Title: http.StatusText(status), Data: msg})
}
