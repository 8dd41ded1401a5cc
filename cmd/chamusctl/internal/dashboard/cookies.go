package dashboard

import (
	"crypto/rand"
	"crypto/sha256"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/securecookie"
)

const (
	// RedirectCookieName holds the location requested before login.
	RedirectCookieName = "chamus.redirect"
	// FlashCookieName holds a one-shot message shown after a redirect.
	FlashCookieName = "chamus.flash"

	cookieMaxAge = 600 // 10 minutes
)

// cookieJar signs and encrypts the dashboard's short-lived cookies.
type cookieJar struct {
	codec *securecookie.SecureCookie
}

// newCookieJar derives the hash and block keys from key. An empty key
// yields random keys, so cookies do not survive a restart.
func newCookieJar(key string) *cookieJar {
	var hashKey []byte
	if key == "" {
		hashKey = generateRandomBytes(32)
	} else {
		hashKey = []byte(key)
	}
	blockKey := sha256.Sum256(hashKey)

	codec := securecookie.New(hashKey, blockKey[:])
	codec.MaxAge(cookieMaxAge)
	return &cookieJar{codec: codec}
}

func (j *cookieJar) set(w http.ResponseWriter, r *http.Request, name, value string) error {
	encoded, err := j.codec.Encode(name, value)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    encoded,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// take reads and clears the named cookie. Missing, expired or tampered
// cookies read as empty.
func (j *cookieJar) take(w http.ResponseWriter, r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	clearCookie(w, r, name)

	var value string
	if err := j.codec.Decode(name, cookie.Value, &value); err != nil {
		return ""
	}
	return value
}

func clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetRedirectCookie remembers where to send the visitor after login.
// Locations that are not local paths are ignored.
func (j *cookieJar) SetRedirectCookie(w http.ResponseWriter, r *http.Request, location string) error {
	if !isLocalPath(location) {
		return nil
	}
	return j.set(w, r, RedirectCookieName, location)
}

// TakeRedirectCookie returns the remembered location, or "" when there is
// none, and clears the cookie.
func (j *cookieJar) TakeRedirectCookie(w http.ResponseWriter, r *http.Request) string {
	location := j.take(w, r, RedirectCookieName)
	if !isLocalPath(location) {
		return ""
	}
	return location
}

// SetFlash stores a message for the next page view.
func (j *cookieJar) SetFlash(w http.ResponseWriter, r *http.Request, msg string) {
	_ = j.set(w, r, FlashCookieName, msg)
}

// TakeFlash pops the pending message.
func (j *cookieJar) TakeFlash(w http.ResponseWriter, r *http.Request) string {
	return j.take(w, r, FlashCookieName)
}

// isLocalPath accepts absolute paths on this host only. Protocol-relative
// ("//evil") and backslash variants are rejected.
func isLocalPath(location string) bool {
	if location == "" || location[0] != '/' {
		return false
	}
	if strings.HasPrefix(location, "//") || strings.HasPrefix(location, "/\\") {
		return false
	}
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}
