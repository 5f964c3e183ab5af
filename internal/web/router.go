package web

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/prenos/internal/client"
	"github.com/erazemk/prenos/internal/composer"
	"github.com/erazemk/prenos/internal/notify"
	webembed "github.com/erazemk/prenos/web"
)

// NewRouter creates the web page router with all page routes registered.
// backendURL is the API the transfer composer talks to.
func NewRouter(db *sql.DB, jwtSecret, backendURL string, log *zap.Logger) (http.Handler, error) {
	templates, err := LoadTemplates(log)
	if err != nil {
		return nil, err
	}

	// Validate the URL once; per-session clients reuse it.
	if _, err := client.New(backendURL, ""); err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
		Log:       log,
	}
	s.Sessions = NewSessions(func(token string, sink *notify.Sink, onClose func()) (*composer.Composer, error) {
		backend, err := client.New(backendURL, token, client.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return composer.New(backend, sink,
			composer.WithLogger(log),
			composer.WithOnClose(onClose),
		), nil
	})

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db, log)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)

	// Authenticated routes.
	mux.Handle("POST /logout", cookieAuth(http.HandlerFunc(s.Logout)))
	mux.Handle("GET /{$}", cookieAuth(http.RedirectHandler("/transfers", http.StatusSeeOther)))

	mux.Handle("GET /transfers", cookieAuth(http.HandlerFunc(s.TransfersPage)))
	mux.Handle("GET /transfers/new", cookieAuth(http.HandlerFunc(s.TransferNewPage)))
	mux.Handle("POST /transfers/new/{action}", cookieAuth(http.HandlerFunc(s.TransferAction)))

	return mux, nil
}
