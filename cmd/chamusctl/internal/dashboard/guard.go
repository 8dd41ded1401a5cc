package dashboard

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/GeovanniVera/chamus/pkg/sdk"
)

// protected renders its routes only for an authenticated session. While
// the session is still being verified a self-refreshing loading page is
// shown instead.
func (s *Server) protected(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := s.routes.Protected(s.auth.Status(), r.URL.RequestURI())
		switch decision.Kind {
		case sdk.Loading:
			s.renderLoading(w, r)
		case sdk.Redirect:
			s.redirectToLogin(w, r, decision.From)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// publicOnly sends signed-in visitors away from the login screen.
func (s *Server) publicOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := s.routes.Public(s.auth.Status(), r.URL.Path)
		switch decision.Kind {
		case sdk.Loading:
			s.renderLoading(w, r)
		case sdk.Redirect:
			http.Redirect(w, r, decision.Target, http.StatusSeeOther)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// redirectToLogin remembers from for GET requests so login can return
// there.
func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request, from string) {
	if r.Method == http.MethodGet && from != "" {
		if err := s.cookies.SetRedirectCookie(w, r, from); err != nil {
			s.logger.Warn("failed to set redirect cookie", "error", err)
		}
	}
	http.Redirect(w, r, s.routes.Login, http.StatusSeeOther)
}

// checkOrigin rejects state-changing browser requests that come from a
// foreign origin. Requests without an Origin header are let through.
func (s *Server) checkOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		origin := r.Header.Get("Origin")
		if origin == "" || s.origins[origin] {
			next.ServeHTTP(w, r)
			return
		}
		if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
			next.ServeHTTP(w, r)
			return
		}

		s.logger.Warn("rejected cross-origin request", "origin", origin, "path", r.URL.Path)
		http.Error(w, "cross-origin request rejected", http.StatusForbidden)
	})
}

type sessionResponse struct {
	Status string    `json:"status"`
	User   *sdk.User `json:"user,omitempty"`
}

// handleSessionJSON reports the current session for scripts and widgets.
func (s *Server) handleSessionJSON(w http.ResponseWriter, _ *http.Request) {
	resp := sessionResponse{Status: s.auth.Status().String()}
	if s.auth.Status() == sdk.StatusAuthenticated {
		resp.User = s.auth.User()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(resp)
}
