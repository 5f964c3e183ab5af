package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/prenos/internal/auth"
	"github.com/erazemk/prenos/internal/model"
	"github.com/erazemk/prenos/internal/notify"
	webembed "github.com/erazemk/prenos/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
	log       *zap.Logger
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"roleAtLeast": model.RoleAtLeast,
		"roleName": func(role string) string {
			switch role {
			case model.RoleAdmin:
				return "Administrator"
			case model.RoleManager:
				return "Manager"
			case model.RoleClerk:
				return "Clerk"
			default:
				return role
			}
		},
		"datetime": func(t time.Time) string {
			return t.Local().Format("2006-01-02 15:04")
		},
		"seconds": func(d time.Duration) int {
			return int(d.Round(time.Second) / time.Second)
		},
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates(log *zap.Logger) (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"login.html",
		"transfers.html",
		"transfer_new.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template), log: log}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		ts.log.Error("rendering template failed", zap.String("template", name), zap.Error(err))
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title  string
	User   *auth.Claims
	Error  string
	Notice *notify.Notification

	// Refresh, when set, makes the page navigate to RefreshURL after the delay.
	Refresh    time.Duration
	RefreshURL string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Templates *Templates
	JWTSecret string
	Sessions  *Sessions
	Log       *zap.Logger
}

// page builds the base page data for an authenticated request, including
// the session's visible notification.
func (s *Server) page(r *http.Request, title string) PageData {
	claims := GetWebClaims(r.Context())
	pd := PageData{Title: title, User: claims}
	if claims != nil {
		if n, ok := s.Sessions.Sink(claims.ID).Current(); ok {
			pd.Notice = &n
		}
	}
	return pd
}
