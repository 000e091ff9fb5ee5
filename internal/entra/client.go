// Package entra validates delegated Microsoft Entra ID access tokens and
// fetches the matching user profile from the Graph API. A validated token is
// exchanged by the grant pipeline for a locally issued token.
package entra

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
)

// Scope claim names checked on delegated tokens, in order. The long form is
// emitted by v1 tokens and kept for compatibility.
const (
	scopeClaim       = "scp"
	scopeClaimLegacy = "http://schemas.microsoft.com/identity/claims/scope"
)

// Config holds Entra ID client configuration.
type Config struct {
	// TenantID identifies the directory tenant.
	TenantID string
	// ClientID is the expected token audience.
	ClientID string
	// RequiredScope is the scope a delegated token must carry.
	RequiredScope string
	// MailDomain is the organization's mail domain suffix (without "@").
	MailDomain string
	// GraphBaseURL is the profile API base (default Microsoft Graph v1.0).
	GraphBaseURL string
	// Timeout bounds discovery and profile requests.
	Timeout time.Duration
}

// IssuerURL returns the v2 issuer for the configured tenant.
func (c *Config) IssuerURL() string {
	return fmt.Sprintf("https://login.microsoftonline.com/%s/v2.0", c.TenantID)
}

// TokenClaims is the claims bag of a validated delegated token.
type TokenClaims map[string]interface{}

// StringClaim returns the named claim if it is a string.
func (t TokenClaims) StringClaim(name string) string {
	if v, ok := t[name].(string); ok {
		return v
	}

	return ""
}

// TokenVerifier validates a raw bearer token and returns its claims.
// The default implementation wraps go-oidc; tests substitute a fake.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (TokenClaims, error)
}

// Client validates delegated Entra ID access tokens.
type Client struct {
	cfg *Config

	mu          sync.Mutex
	verifier    TokenVerifier
	newVerifier func(ctx context.Context) (TokenVerifier, error)
}

// NewClient creates a client that discovers the tenant's signing
// configuration from its well-known endpoint on first use. Signing keys are
// cached by the verifier and refreshed when an unknown key id is seen.
func NewClient(cfg *Config) *Client {
	return &Client{
		cfg: cfg,
		newVerifier: func(ctx context.Context) (TokenVerifier, error) {
			provider, err := oidc.NewProvider(ctx, cfg.IssuerURL())
			if err != nil {
				return nil, err
			}

			return &oidcVerifier{
				verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
			}, nil
		},
	}
}

// NewClientWithVerifier creates a client with a fixed verifier. Used by tests.
func NewClientWithVerifier(cfg *Config, verifier TokenVerifier) *Client {
	return &Client{cfg: cfg, verifier: verifier}
}

// Authenticate validates the delegated token's signature, issuer, audience,
// expiry and scope. On success it returns the token's claims bag. Every
// failure is an *Error of this package.
func (c *Client) Authenticate(ctx context.Context, accessToken string) (TokenClaims, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, NewError(KindMissingToken)
	}

	verifier, err := c.tokenVerifier(ctx)
	if err != nil {
		return nil, WrapError(KindSigningKeyFetchFailed, err)
	}

	claims, err := verifier.Verify(ctx, accessToken)
	if err != nil {
		log.Warn().Err(err).Msg("delegated token validation failed")
		return nil, WrapError(KindInvalidToken, err)
	}

	scope := claims.StringClaim(scopeClaim)
	if scope == "" {
		scope = claims.StringClaim(scopeClaimLegacy)
	}

	if !strings.EqualFold(scope, c.cfg.RequiredScope) {
		return nil, NewError(KindNotAccessToken)
	}

	return claims, nil
}

// tokenVerifier returns the cached verifier, running discovery once on
// first use.
func (c *Client) tokenVerifier(ctx context.Context) (TokenVerifier, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.verifier != nil {
		return c.verifier, nil
	}

	discoveryCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	verifier, err := c.newVerifier(discoveryCtx)
	if err != nil {
		return nil, err
	}

	c.verifier = verifier

	return verifier, nil
}

// oidcVerifier adapts go-oidc's token verifier to TokenVerifier.
type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func (v *oidcVerifier) Verify(ctx context.Context, rawToken string) (TokenClaims, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	var claims map[string]interface{}
	if err := token.Claims(&claims); err != nil {
		return nil, err
	}

	return TokenClaims(claims), nil
}
