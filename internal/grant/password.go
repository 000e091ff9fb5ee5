package grant

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/corpauth/corpauth/internal/claims"
	"github.com/corpauth/corpauth/internal/directory"
	"github.com/corpauth/corpauth/internal/user"
)

// PasswordHandler serves the resource-owner password grant backed by the
// directory client.
type PasswordHandler struct {
	directory     DirectoryAuthenticator
	store         UserStore
	defaultDomain string
}

// NewPasswordHandler creates a password-grant handler. defaultDomain is used
// when the request names no domain.
func NewPasswordHandler(dir DirectoryAuthenticator, store UserStore, defaultDomain string) *PasswordHandler {
	return &PasswordHandler{
		directory:     dir,
		store:         store,
		defaultDomain: defaultDomain,
	}
}

// Type implements Handler.
func (h *PasswordHandler) Type() Type {
	return TypePassword
}

// Handle validates the credentials against the directory, reconciles the
// resulting profile and builds the claims principal.
func (h *PasswordHandler) Handle(ctx context.Context, req *Request) (*claims.Principal, *Rejection) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, reject(CodeInvalidRequest, "Username is required.")
	}

	if strings.TrimSpace(req.Password) == "" {
		return nil, reject(CodeInvalidRequest, "Password is required.")
	}

	domain := req.Domain
	if domain == "" {
		domain = h.defaultDomain
	}

	profile, err := h.directory.Authenticate(ctx, req.Username, domain, req.Password)
	if err != nil {
		return nil, translateDirectoryError(err)
	}

	return buildPrincipal(ctx, h.store, user.FromDirectory(profile), req.Scopes)
}

// translateDirectoryError maps directory failures to OAuth2 rejections.
func translateDirectoryError(err error) *Rejection {
	switch {
	case errors.Is(err, directory.ErrDomainNotAllowed):
		return reject(CodeInvalidRequest, "Domain is not allowed.")
	case errors.Is(err, directory.ErrUserNotFound):
		return reject(CodeInvalidGrant, "User not found in LDAP directory.")
	case errors.Is(err, directory.ErrOfficeNotAllowed):
		return reject(CodeInvalidGrant, "Your office location is not authorized to access the system.")
	case errors.Is(err, directory.ErrInvalidCredentials):
		return reject(CodeInvalidGrant, "Invalid username or password.")
	default:
		log.Error().Err(err).Msg("Directory authentication failed")
		return reject(CodeServerError, "Unexpected LDAP error occurred.")
	}
}
