package dashboard

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/metrics"
	"github.com/GeovanniVera/chamus/pkg/sdk"
)

var loginFieldMap = map[string]string{"email": "email", "password": "password"}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", pageData{Title: "Sign in"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		metrics.LoginRejectedTotal.Inc()
		w.Header().Set("Retry-After", "60")
		s.render(w, r, http.StatusTooManyRequests, "login", pageData{
			Title:  "Sign in",
			Errors: sdk.FieldErrors{"form": "Too many sign-in attempts. Try again in a minute."},
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "malformed form")
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	form := map[string]string{"email": email}

	errs := sdk.FieldErrors{}
	if email == "" {
		errs.Add("email", "is required")
	}
	if password == "" {
		errs.Add("password", "is required")
	}
	if len(errs) > 0 {
		s.render(w, r, http.StatusUnprocessableEntity, "login", pageData{Title: "Sign in", Form: form, Errors: errs})
		return
	}

	if err := s.auth.Login(r.Context(), email, password); err != nil {
		status, errs := loginFailure(err)
		s.logger.Info("dashboard login failed", "status", status, "error", err)
		s.render(w, r, status, "login", pageData{Title: "Sign in", Form: form, Errors: errs})
		return
	}

	target := s.cookies.TakeRedirectCookie(w, r)
	if target == "" {
		target = s.routes.Home
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// loginFailure maps a failed login to a response status and the messages
// shown on the form.
func loginFailure(err error) (int, sdk.FieldErrors) {
	if fields, ok := sdk.ValidationErrorsFrom(err, loginFieldMap); ok {
		return http.StatusUnprocessableEntity, fields
	}

	var missing *sdk.MissingTokenError
	switch {
	case sdk.IsNetworkError(err):
		return http.StatusBadGateway, sdk.FieldErrors{"form": "Cannot reach the catalog API. Check your connection and try again."}
	case sdk.IsAuthFailure(err):
		return http.StatusUnauthorized, sdk.FieldErrors{"form": "Invalid email or password."}
	case errors.As(err, &missing):
		return http.StatusBadGateway, sdk.FieldErrors{"form": "The API did not return a session token."}
	default:
		return http.StatusBadGateway, sdk.FieldErrors{"form": "Sign-in failed. Try again later."}
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context()); err != nil {
		s.logger.Warn("logout did not complete cleanly", "error", err)
	}
	s.cookies.SetFlash(w, r, "You have been signed out.")
	http.Redirect(w, r, s.routes.Login, http.StatusSeeOther)
}

type homeStats struct {
	Museums    int
	Categories int
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	client := s.auth.Client()
	museums, err := client.ListMuseums(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	categories, err := client.ListCategories(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "home", pageData{
		Title: "Dashboard",
		Data:  homeStats{Museums: len(museums), Categories: len(categories)},
	})
}

func (s *Server) handleMuseums(w http.ResponseWriter, r *http.Request) {
	museums, err := s.auth.Client().ListMuseums(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "museums", pageData{Title: "Museums", Data: museums})
}

func (s *Server) handleMuseum(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	museum, err := s.auth.Client().GetMuseum(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "museum", pageData{Title: museum.Name, Data: museum})
}

func (s *Server) handleMuseumDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.auth.Client().DeleteMuseum(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.cookies.SetFlash(w, r, "Museum deleted.")
	http.Redirect(w, r, "/museums", http.StatusSeeOther)
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	room, err := s.auth.Client().GetRoom(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "room", pageData{Title: room.Name, Data: room})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.renderCategories(w, r, http.StatusOK, nil, nil)
}

func (s *Server) renderCategories(w http.ResponseWriter, r *http.Request, status int, form map[string]string, errs sdk.FieldErrors) {
	categories, err := s.auth.Client().ListCategories(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, status, "categories", pageData{Title: "Categories", Data: categories, Form: form, Errors: errs})
}

func (s *Server) handleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "malformed form")
		return
	}
	name := strings.TrimSpace(r.PostFormValue("name"))
	form := map[string]string{"name": name}

	if _, err := s.auth.Client().CreateCategory(r.Context(), name); err != nil {
		var local sdk.FieldErrors
		if errors.As(err, &local) {
			s.renderCategories(w, r, http.StatusUnprocessableEntity, form, local)
			return
		}
		if fields, ok := sdk.ValidationErrorsFrom(err, nil); ok {
			s.renderCategories(w, r, http.StatusUnprocessableEntity, form, fields)
			return
		}
		s.fail(w, r, err)
		return
	}
	s.cookies.SetFlash(w, r, "Category created.")
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

func (s *Server) handleCategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.auth.Client().DeleteCategory(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.cookies.SetFlash(w, r, "Category deleted.")
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.Client().ListUsers(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "users", pageData{Title: "Users", Data: users})
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.auth.Client().ListQuotes(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	museum := r.URL.Query().Get("museum")
	s.render(w, r, http.StatusOK, "quotes", pageData{
		Title: "Quotes",
		Data:  sdk.FilterQuotes(quotes, museum),
		Form:  map[string]string{"museum": museum},
	})
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.renderError(w, r, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

// fail turns an API error into a page. A rejected session sends the
// visitor back to the login screen.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if sdk.IsAuthFailure(err) {
		s.redirectToLogin(w, r, r.URL.RequestURI())
		return
	}

	s.logger.Error("catalog API call failed", "path", r.URL.Path, "error", err)

	var herr *sdk.HTTPError
	switch {
	case sdk.IsNetworkError(err):
		s.renderError(w, r, http.StatusBadGateway, "Cannot reach the catalog API. Try again later.")
	case errors.As(err, &herr) && herr.StatusCode == http.StatusNotFound:
		s.renderError(w, r, http.StatusNotFound, "Not found.")
	case errors.As(err, &herr) && herr.Message != "":
		s.renderError(w, r, http.StatusBadGateway, herr.Message)
	default:
		s.renderError(w, r, http.StatusBadGateway, "The catalog API request failed.")
	}
}
