package sdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/GeovanniVera/chamus/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*sdk.MemoryStore
}

func (failingStore) ClearToken() error { return errors.New("disk full") }

func newAuthenticator(api *fakeAPI, store sdk.TokenStore) *sdk.Authenticator {
	client := sdk.NewClient(api.server.URL, sdk.WithTokenStore(store))
	return sdk.NewAuthenticator(client, nil)
}

func TestLogin_StoresTokenAndAuthenticates(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(http.MethodPost, "/api/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "a@b.com", creds["email"])
		assert.Equal(t, "secret", creds["password"])
		jsonHandler(http.StatusOK, map[string]string{"access_token": "tok123"})(w, r)
	})
	api.handle(http.MethodGet, "/api/museums", jsonHandler(http.StatusOK, []any{}))

	store := sdk.NewMemoryStore("")
	auth := newAuthenticator(api, store)
	assert.Equal(t, sdk.StatusUnknown, auth.Status())

	require.NoError(t, auth.Login(context.Background(), "a@b.com", "secret"))

	token, ok := store.Token()
	require.True(t, ok)
	assert.Equal(t, "tok123", token)
	assert.Equal(t, sdk.StatusAuthenticated, auth.Status())

	_, err := auth.Client().ListMuseums(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", api.lastRequest().Header.Get("Authorization"))
}

func TestLogin_LoadsProfile(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(http.MethodPost, "/api/login", jsonHandler(http.StatusOK, map[string]any{
		"data": map[string]string{"access_token": "tok123"},
	}))
	api.handle(http.MethodGet, "/api/user", jsonHandler(http.StatusOK, map[string]any{"id": 7, "nombre": "Ada"}))

	store := sdk.NewMemoryStore("")
	auth := newAuthenticator(api, store)
	require.NoError(t, auth.Login(context.Background(), "a@b.com", "secret"))

	token, ok := store.Token()
	require.True(t, ok)
	assert.Equal(t, "tok123", token)
	assert.Equal(t, sdk.StatusAuthenticated, auth.Status())
	require.NotNil(t, auth.User())
	assert.Equal(t, "Ada", auth.User().Name)
	assert.Equal(t, "Bearer tok123", api.lastRequest().Header.Get("Authorization"))
}

func TestLogin_ProfileFailureKeepsSession(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(http.MethodPost, "/api/login", jsonHandler(http.StatusOK, map[string]string{"access_token": "tok123"}))
	api.handle(http.MethodGet, "/api/user", jsonHandler(http.StatusInternalServerError, map[string]string{}))

	auth := newAuthenticator(api, sdk.NewMemoryStore(""))
	require.NoError(t, auth.Login(context.Background(), "a@b.com", "secret"))
	assert.Equal(t, sdk.StatusAuthenticated, auth.Status())
	assert.Nil(t, auth.User())
}

func TestLogin_ProfileRejectedEndsSession(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(http.MethodPost, "/api/login", jsonHandler(http.StatusOK, map[string]string{"access_token": "tok123"}))
	api.handle(http.MethodGet, "/api/user", jsonHandler(http.StatusUnauthorized, map[string]string{}))

	store := sdk.NewMemoryStore("")
	auth := newAuthenticator(api, store)
	err := auth.Login(context.Background(), "a@b.com", "secret")
	require.True(t, sdk.IsAuthFailure(err))
	assert.Equal(t, sdk.StatusUnauthenticated, auth.Status())
	_, ok := store.Token()
	assert.False(t, ok)
}

func TestLogin_MissingToken(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(http.MethodPost, "/api/login", jsonHandler(http.StatusOK, map[string]string{"token": "wrong-field"}))

	store := sdk.NewMemoryStore("")
	auth := newAuthenticator(api, store)

	err := auth.Login(context.Background(), "a@b.com", "secret")
	var missing *sdk.MissingTokenError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "access_token", missing.Field)
	assert.Equal(t, sdk.StatusUnauthenticated, auth.Status())
	_, ok := store.Token()
	assert.False(t, ok)
}

func TestLogin_Rejected(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(http.MethodPost, "/api/login", jsonHandler(http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"}))

	auth := newAuthenticator(api, sdk.NewMemoryStore(""))
	err := auth.Login(context.Background(), "a@b.com", "nope")

	var herr *sdk.HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusUnauthorized, herr.StatusCode)
	assert.Equal(t, sdk.StatusUnauthenticated, auth.Status())
	assert.Len(t, api.requests(), 1, "login must not retry")
}

func TestLogout_ClearsSessionEvenWhenServerFails(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server ok":    func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) },
		"server error": jsonHandler(http.StatusInternalServerError, map[string]string{}),
		"unauthorized": jsonHandler(http.StatusUnauthorized, map[string]string{}),
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			api := newFakeAPI(t)
			api.handle(http.MethodPost, "/api/logout", handler)

			store := sdk.NewMemoryStore("tok123")
			auth := newAuthenticator(api, store)

			require.NoError(t, auth.Logout(context.Background()))
			_, ok := store.Token()
			assert.False(t, ok)
			assert.Equal(t, sdk.StatusUnauthenticated, auth.Status())
			assert.Equal(t, "Bearer tok123", api.lastRequest().Header.Get("Authorization"))
		})
	}
}

func TestLogout_NetworkFailure(t *testing.T) {
	store := sdk.NewMemoryStore("tok123")
	client := sdk.NewClient("http://127.0.0.1:1", sdk.WithTokenStore(store))
	auth := sdk.NewAuthenticator(client, nil)

	require.NoError(t, auth.Logout(context.Background()))
	_, ok := store.Token()
	assert.False(t, ok)
	assert.Equal(t, sdk.StatusUnauthenticated, auth.Status())
}

func TestLogout_ReportsStoreFailure(t *testing.T) {
	api := newFakeAPI(t)
	auth := newAuthenticator(api, failingStore{sdk.NewMemoryStore("")})

	err := auth.Logout(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, sdk.StatusUnauthenticated, auth.Status())
}

func TestCheckSession_NoTokenSkipsNetwork(t *testing.T) {
	api := newFakeAPI(t)
	auth := newAuthenticator(api, sdk.NewMemoryStore(""))

	assert.Equal(t, sdk.StatusUnauthenticated, auth.CheckSession(context.Background()))
	assert.Equal(t, sdk.StatusUnauthenticated, auth.Status())
	assert.Empty(t, api.requests())

	select {
	case <-auth.Resolved():
	default:
		t.Fatal("status should be resolved")
	}
}

func TestCheckSession_ValidToken(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/api/user", jsonHandler(http.StatusOK, map[string]any{"id": 7, "name": "Ada", "email": "ada@example.com"}))

	auth := newAuthenticator(api, sdk.NewMemoryStore("tok123"))
	assert.Equal(t, sdk.StatusAuthenticated, auth.CheckSession(context.Background()))
	require.NotNil(t, auth.User())
	assert.Equal(t, "Ada", auth.User().Name)
	assert.Equal(t, "Bearer tok123", api.lastRequest().Header.Get("Authorization"))
}

func TestCheckSession_RejectedToken(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			api := newFakeAPI(t)
			api.handle(http.MethodGet, "/api/user", jsonHandler(status, map[string]string{}))

			store := sdk.NewMemoryStore("tok123")
			auth := newAuthenticator(api, store)

			assert.Equal(t, sdk.StatusUnauthenticated, auth.CheckSession(context.Background()))
			_, ok := store.Token()
			assert.False(t, ok)
		})
	}
}

func TestAuthenticator_RequestFailureFlipsStatus(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(http.MethodGet, "/api/user", jsonHandler(http.StatusOK, map[string]any{"id": 1}))
	api.handle(http.MethodGet, "/api/museums", jsonHandler(http.StatusUnauthorized, map[string]string{}))

	store := sdk.NewMemoryStore("tok123")
	auth := newAuthenticator(api, store)

	var changes []sdk.Status
	auth.OnStatusChange(func(s sdk.Status) { changes = append(changes, s) })

	require.Equal(t, sdk.StatusAuthenticated, auth.CheckSession(context.Background()))
	_, err := auth.Client().ListMuseums(context.Background())
	require.Error(t, err)

	assert.Equal(t, sdk.StatusUnauthenticated, auth.Status())
	assert.Equal(t, []sdk.Status{sdk.StatusAuthenticated, sdk.StatusUnauthenticated}, changes)

	decision := sdk.DefaultRoutes().Protected(auth.Status(), "/museums")
	assert.Equal(t, sdk.Redirect, decision.Kind)
	assert.Equal(t, "/auth/login", decision.Target)
}

func TestAuthenticator_Wait(t *testing.T) {
	api := newFakeAPI(t)
	auth := newAuthenticator(api, sdk.NewMemoryStore(""))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := auth.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	go auth.CheckSession(context.Background())
	status, err := auth.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sdk.StatusUnauthenticated, status)
}
