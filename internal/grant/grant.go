// Package grant implements the token-request handler pipeline. Each grant
// type is served by one handler; a request is dispatched to the first
// handler matching its grant type and either yields a claims principal or a
// terminal OAuth2 rejection.
package grant

import (
	"context"

	"github.com/corpauth/corpauth/internal/claims"
	"github.com/corpauth/corpauth/internal/db/models"
	"github.com/corpauth/corpauth/internal/directory"
	"github.com/corpauth/corpauth/internal/entra"
	"github.com/corpauth/corpauth/internal/user"
)

// Type identifies a grant type on the wire.
type Type string

// Supported grant types.
const (
	TypePassword   Type = "password"
	TypeEntraToken Type = "urn:entra:access_token"
)

// OAuth2 error codes used in rejections.
const (
	CodeInvalidRequest       = "invalid_request"
	CodeInvalidGrant         = "invalid_grant"
	CodeServerError          = "server_error"
	CodeUnsupportedGrantType = "unsupported_grant_type"
)

// Request carries the parameters of one inbound token request. Which fields
// are meaningful depends on the grant type.
type Request struct {
	GrantType string

	// Password grant.
	Username string
	Password string
	Domain   string

	// Delegated grant.
	AccessToken string
	GraphToken  string

	Scopes []string
}

// Rejection is a terminal refusal of a token request. Descriptions are safe
// to show to end users and never contain credential material.
type Rejection struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func reject(code, description string) *Rejection {
	return &Rejection{Code: code, Description: description}
}

// Handler serves a single grant type.
type Handler interface {
	Type() Type
	Handle(ctx context.Context, req *Request) (*claims.Principal, *Rejection)
}

// Pipeline dispatches token requests to registered grant handlers. Handlers
// are mutually exclusive by grant type; exactly one runs per request.
type Pipeline struct {
	handlers []Handler
}

// NewPipeline creates a pipeline over the given handlers.
func NewPipeline(handlers ...Handler) *Pipeline {
	return &Pipeline{handlers: handlers}
}

// Dispatch routes the request to the handler matching its grant type. An
// unknown grant type is rejected with unsupported_grant_type.
func (p *Pipeline) Dispatch(ctx context.Context, req *Request) (*claims.Principal, *Rejection) {
	for _, handler := range p.handlers {
		if Type(req.GrantType) == handler.Type() {
			return handler.Handle(ctx, req)
		}
	}

	return nil, reject(CodeUnsupportedGrantType, "The grant type is not supported.")
}

// DirectoryAuthenticator verifies directory credentials.
type DirectoryAuthenticator interface {
	Authenticate(ctx context.Context, username, domain, password string) (*directory.Profile, error)
}

// TokenAuthenticator validates a delegated access token.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, accessToken string) (entra.TokenClaims, error)
}

// GraphFetcher exchanges a delegated profile-access token for a profile.
type GraphFetcher interface {
	Fetch(ctx context.Context, graphToken string) (*entra.Profile, error)
}

// UserStore reconciles profiles into local users and resolves their grants.
type UserStore interface {
	Reconcile(ctx context.Context, attrs user.Attributes, overrides *user.PropertyOverrides) (*models.User, error)
	Grants(ctx context.Context, u *models.User) (roleNames, permissions []string, err error)
}

// buildPrincipal reconciles the profile and assembles the claims principal.
// A persistence failure is a server error, never an authentication one.
func buildPrincipal(ctx context.Context, store UserStore, attrs user.Attributes, scopes []string) (*claims.Principal, *Rejection) {
	u, err := store.Reconcile(ctx, attrs, nil)
	if err != nil {
		return nil, reject(CodeServerError, "Failed to create user.")
	}

	roleNames, permissions, err := store.Grants(ctx, u)
	if err != nil {
		return nil, reject(CodeServerError, "Failed to load user grants.")
	}

	principal, err := claims.Build(u, roleNames, permissions, scopes)
	if err != nil {
		return nil, reject(CodeServerError, "Failed to build claims principal.")
	}

	return principal, nil
}
