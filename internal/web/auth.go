package web

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/prenos/internal/auth"
	"github.com/erazemk/prenos/internal/store"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: "Sign in"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	if username == "" || password == "" {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Sign in",
			Error: "Enter your username and password.",
		})
		return
	}

	user, err := store.GetUserByUsername(r.Context(), s.DB, username)
	if err != nil {
		s.Log.Error("login lookup failed", zap.Error(err))
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.Log.Warn("web login failed", zap.String("username", username), zap.String("remote", r.RemoteAddr))
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Sign in",
			Error: "Wrong username or password.",
		})
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, user)
	if err != nil {
		s.Log.Error("token generation failed", zap.Error(err))
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Sign in",
			Error: "Sign-in failed.",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})

	s.Log.Info("user logged in", zap.String("user", user.Username), zap.String("via", "web"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout. The token is revoked so the API rejects it
// too, and the session's composer is discarded.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if err := store.RevokeToken(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		s.Log.Error("token revocation failed", zap.Error(err))
	}
	s.Sessions.Drop(claims.ID)

	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
