package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/metrics"
	"github.com/GeovanniVera/chamus/pkg/sdk"
)

const testCookieKey = "0123456789abcdef0123456789abcdef"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newCatalogAPI stands in for the remote catalog API.
func newCatalogAPI(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["email"] != "ada@example.com" || creds["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok123"})
	})
	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "nombre": "Ada", "email": "ada@example.com"})
	})
	mux.HandleFunc("GET /api/museums", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{
			{"id": 3, "nombre": "Museo Soumaya", "precio_entrada": "0"},
		}})
	})
	mux.HandleFunc("DELETE /api/museums/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/categories", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "nombre": "Arte"}})
	})
	return mux
}

type harness struct {
	api       *httptest.Server
	dashboard *httptest.Server
	store     *sdk.MemoryStore
	auth      *sdk.Authenticator
	browser   *http.Client
}

func newHarness(t *testing.T, apiMux *http.ServeMux, token string, opts Options) *harness {
	t.Helper()
	api := httptest.NewServer(apiMux)
	t.Cleanup(api.Close)

	store := sdk.NewMemoryStore(token)
	auth := sdk.NewAuthenticator(sdk.NewClient(api.URL, sdk.WithTokenStore(store)), nil)

	opts.Authenticator = auth
	if opts.CookieKey == "" {
		opts.CookieKey = testCookieKey
	}
	router, err := NewRouter(opts)
	require.NoError(t, err)
	dashboard := httptest.NewServer(router)
	t.Cleanup(dashboard.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	browser := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &harness{api: api, dashboard: dashboard, store: store, auth: auth, browser: browser}
}

func (h *harness) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := h.browser.Get(h.dashboard.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (h *harness) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := h.browser.PostForm(h.dashboard.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestDashboard_UnknownSessionRendersLoading(t *testing.T) {
	h := newHarness(t, newCatalogAPI(t), "tok123", Options{})

	for _, path := range []string{"/museums", "/auth/login"} {
		resp, body := h.get(t, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
		assert.Contains(t, body, `http-equiv="refresh"`)
		assert.NotContains(t, body, "Museo Soumaya")
	}
}

func TestDashboard_LoginReturnsToRequestedPage(t *testing.T) {
	h := newHarness(t, newCatalogAPI(t), "", Options{})
	require.Equal(t, sdk.StatusUnauthenticated, h.auth.CheckSession(context.Background()))

	resp, _ := h.get(t, "/museums")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login", resp.Header.Get("Location"))

	resp, body := h.get(t, "/auth/login")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="password"`)

	resp, _ = h.post(t, "/auth/login", url.Values{"email": {"ada@example.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/museums", resp.Header.Get("Location"))
	assert.Equal(t, sdk.StatusAuthenticated, h.auth.Status())

	resp, body = h.get(t, "/museums")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Museo Soumaya")
	assert.Contains(t, body, "Free")
	assert.Contains(t, body, "<span>Ada</span>")

	// Signed in now, so the login screen sends the visitor home.
	resp, _ = h.post(t, "/auth/login", url.Values{"email": {"ada@example.com"}, "password": {"secret"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestDashboard_AuthenticatedLoginRedirectsHome(t *testing.T) {
	h := newHarness(t, newCatalogAPI(t), "tok123", Options{})
	require.Equal(t, sdk.StatusAuthenticated, h.auth.CheckSession(context.Background()))

	resp, _ := h.get(t, "/auth/login")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, body := h.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome, Ada")
	assert.Contains(t, body, "1 museums")
}

func TestDashboard_InvalidCredentials(t *testing.T) {
	h := newHarness(t, newCatalogAPI(t), "", Options{})
	h.auth.CheckSession(context.Background())

	resp, body := h.post(t, "/auth/login", url.Values{"email": {"ada@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid email or password.")
	assert.Contains(t, body, `value="ada@example.com"`)
	assert.Equal(t, sdk.StatusUnauthenticated, h.auth.Status())

	resp, body = h.post(t, "/auth/login", url.Values{"email": {""}, "password": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "is required")
}

func TestDashboard_LoginRateLimit(t *testing.T) {
	h := newHarness(t, newCatalogAPI(t), "", Options{LoginRate: 1})
	h.auth.CheckSession(context.Background())
	before := testutil.ToFloat64(metrics.LoginRejectedTotal)

	resp, _ := h.post(t, "/auth/login", url.Values{"email": {"ada@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := h.post(t, "/auth/login", url.Values{"email": {"ada@example.com"}, "password": {"secret"}})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, body, "Too many sign-in attempts")
	assert.Equal(t, sdk.StatusUnauthenticated, h.auth.Status())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.LoginRejectedTotal))
}

func TestDashboard_RejectedTokenRedirectsToLogin(t *testing.T) {
	mux := newCatalogAPI(t)
	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
	})
	h := newHarness(t, mux, "tok123", Options{})
	require.Equal(t, sdk.StatusAuthenticated, h.auth.CheckSession(context.Background()))

	resp, _ := h.get(t, "/users")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login", resp.Header.Get("Location"))
	assert.Equal(t, sdk.StatusUnauthenticated, h.auth.Status())
	_, ok := h.store.Token()
	assert.False(t, ok)
}

func TestDashboard_DeleteSetsFlash(t *testing.T) {
	h := newHarness(t, newCatalogAPI(t), "tok123", Options{})
	h.auth.CheckSession(context.Background())

	resp, _ := h.post(t, "/museums/3/delete", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/museums", resp.Header.Get("Location"))

	_, body := h.get(t, "/museums")
	assert.Contains(t, body, "Museum deleted.")

	_, body = h.get(t, "/museums")
	assert.NotContains(t, body, "Museum deleted.")
}

func TestDashboard_CategoryValidation(t *testing.T) {
	h := newHarness(t, newCatalogAPI(t), "tok123", Options{})
	h.auth.CheckSession(context.Background())

	resp, body := h.post(t, "/categories", url.Values{"name": {"  "}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "must not be empty")
	assert.Contains(t, body, "Arte")
}

func TestDashboard_UnknownIDIsNotFound(t *testing.T) {
	h := newHarness(t, newCatalogAPI(t), "tok123", Options{})
	h.auth.CheckSession(context.Background())

	resp, _ := h.get(t, "/museums/abc")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDashboard_CrossOriginPostRejected(t *testing.T) {
	h := newHarness(t, newCatalogAPI(t), "tok123", Options{AllowedOrigins: []string{"https://admin.example"}})
	h.auth.CheckSession(context.Background())

	send := func(origin string) int {
		req, err := http.NewRequest(http.MethodPost, h.dashboard.URL+"/auth/logout", strings.NewReader(""))
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		resp, err := h.browser.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusForbidden, send("https://evil.example"))
	assert.Equal(t, sdk.StatusAuthenticated, h.auth.Status())

	assert.Equal(t, http.StatusSeeOther, send("https://admin.example"))
	assert.Equal(t, sdk.StatusUnauthenticated, h.auth.Status())
}

func TestDashboard_SameOriginLogout(t *testing.T) {
	h := newHarness(t, newCatalogAPI(t), "tok123", Options{})
	h.auth.CheckSession(context.Background())

	req, err := http.NewRequest(http.MethodPost, h.dashboard.URL+"/auth/logout", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", h.dashboard.URL)
	resp, err := h.browser.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login", resp.Header.Get("Location"))
	_, ok := h.store.Token()
	assert.False(t, ok)

	_, body := h.get(t, "/auth/login")
	assert.Contains(t, body, "You have been signed out.")
}

func TestDashboard_SessionEndpoint(t *testing.T) {
	h := newHarness(t, newCatalogAPI(t), "tok123", Options{})

	read := func() sessionResponse {
		resp, body := h.get(t, "/api/session")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out sessionResponse
		require.NoError(t, json.Unmarshal([]byte(body), &out))
		return out
	}

	assert.Equal(t, "unknown", read().Status)

	h.auth.CheckSession(context.Background())
	got := read()
	assert.Equal(t, "authenticated", got.Status)
	require.NotNil(t, got.User)
	assert.Equal(t, "Ada", got.User.Name)
}

func TestDashboard_HealthAndMetrics(t *testing.T) {
	h := newHarness(t, newCatalogAPI(t), "", Options{})

	resp, body := h.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	resp, body = h.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "chamus_dashboard_requests_total")
}

func TestNew_RequiresAuthenticator(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}
