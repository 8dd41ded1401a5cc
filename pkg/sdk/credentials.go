package sdk

import (
	"time"

	"golang.org/x/oauth2"
)

// Credentials is the persisted form of a session token.
type Credentials struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ServerURL   string    `json:"server_url,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}

// NewCredentials wraps a freshly issued bearer token.
func NewCredentials(token, serverURL string) *Credentials {
	return &Credentials{
		AccessToken: token,
		TokenType:   "Bearer",
		ServerURL:   serverURL,
		SavedAt:     time.Now().UTC(),
	}
}

// OAuth2Token converts c for use with golang.org/x/oauth2 helpers.
func (c *Credentials) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{AccessToken: c.AccessToken, TokenType: c.TokenType}
}

// Valid reports whether c carries a token.
func (c *Credentials) Valid() bool {
	return c != nil && c.AccessToken != ""
}
