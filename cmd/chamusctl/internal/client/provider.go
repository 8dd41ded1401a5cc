package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/auth"
	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/logging"
	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/metrics"
	"github.com/GeovanniVera/chamus/pkg/sdk"
)

// sessionCheckTimeout bounds the start-up session verification.
const sessionCheckTimeout = 10 * time.Second

// Provider lazily builds the process-wide token store, SDK client and
// authenticator. Every command of one process shares them.
type Provider struct {
	serverURL   string
	storePath   string
	bearerToken string // ephemeral token that bypasses the credential store
	logger      *slog.Logger

	storeOnce sync.Once
	store     sdk.TokenStore
	storeErr  error

	authOnce sync.Once
	auth     *sdk.Authenticator
	authErr  error

	checkOnce sync.Once
}

// Option configures a Provider.
type Option func(*Provider)

// WithCredentialsPath overrides the credentials file location.
func WithCredentialsPath(path string) Option {
	return func(p *Provider) { p.storePath = path }
}

// WithLogger sets the logger handed to the SDK.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// NewProvider constructs a new Provider bound to the given server URL.
func NewProvider(serverURL string, opts ...Option) *Provider {
	p := &Provider{serverURL: serverURL}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	return p
}

// ServerURL returns the catalog API address.
func (p *Provider) ServerURL() string { return p.serverURL }

// SetBearerToken injects an ephemeral bearer token (for CI and scripting).
// The session then lives in memory only and is never written to disk.
func (p *Provider) SetBearerToken(token string) {
	p.bearerToken = token
}

// Store returns the session store: in memory when a bearer token was
// injected, otherwise the credentials file.
func (p *Provider) Store() (sdk.TokenStore, error) {
	p.storeOnce.Do(func() {
		if p.bearerToken != "" {
			p.store = sdk.NewMemoryStore(p.bearerToken)
			return
		}
		p.store, p.storeErr = auth.NewFileStore(p.storePath, p.serverURL)
	})
	return p.store, p.storeErr
}

// Authenticator returns the shared authenticator without verifying the
// session; its status starts as unknown.
func (p *Provider) Authenticator() (*sdk.Authenticator, error) {
	p.authOnce.Do(func() {
		store, err := p.Store()
		if err != nil {
			p.authErr = err
			return
		}

		client := sdk.NewClient(p.serverURL,
			sdk.WithHTTPClient(NewHTTPClient()),
			sdk.WithTokenStore(store),
			sdk.WithLogger(p.logger),
			sdk.WithAuthFailureHook(func(int) {
				metrics.SessionInvalidationsTotal.Inc()
			}),
		)
		p.auth = sdk.NewAuthenticator(client, p.logger)
		p.auth.OnStatusChange(func(s sdk.Status) {
			if s == sdk.StatusAuthenticated {
				metrics.SessionAuthenticated.Set(1)
			} else {
				metrics.SessionAuthenticated.Set(0)
			}
		})
	})
	return p.auth, p.authErr
}

// SDKClient returns the shared SDK client.
func (p *Provider) SDKClient() (*sdk.Client, error) {
	a, err := p.Authenticator()
	if err != nil {
		return nil, err
	}
	return a.Client(), nil
}

// Session returns the authenticator after verifying the stored session.
// The verification runs once per process; later calls return the current
// status.
func (p *Provider) Session(ctx context.Context) (*sdk.Authenticator, error) {
	a, err := p.Authenticator()
	if err != nil {
		return nil, err
	}
	p.checkOnce.Do(func() {
		ctx, cancel := ensureTimeout(ctx, sessionCheckTimeout)
		defer cancel()
		a.CheckSession(ctx)
	})
	return a, nil
}

func ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, timeout)
}
