package grant

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/corpauth/corpauth/internal/claims"
	"github.com/corpauth/corpauth/internal/entra"
	"github.com/corpauth/corpauth/internal/user"
)

// EntraTokenHandler serves the custom delegated grant: a caller-supplied
// Entra access token proves identity, a second Graph token is exchanged for
// the profile used to reconcile the local user.
type EntraTokenHandler struct {
	tokens   TokenAuthenticator
	profiles GraphFetcher
	store    UserStore
}

// NewEntraTokenHandler creates a delegated-grant handler.
func NewEntraTokenHandler(tokens TokenAuthenticator, profiles GraphFetcher, store UserStore) *EntraTokenHandler {
	return &EntraTokenHandler{
		tokens:   tokens,
		profiles: profiles,
		store:    store,
	}
}

// Type implements Handler.
func (h *EntraTokenHandler) Type() Type {
	return TypeEntraToken
}

// Handle validates the delegated token, fetches the Graph profile,
// reconciles the local user and builds the claims principal.
func (h *EntraTokenHandler) Handle(ctx context.Context, req *Request) (*claims.Principal, *Rejection) {
	if _, err := h.tokens.Authenticate(ctx, req.AccessToken); err != nil {
		return nil, rejectEntraError(err)
	}

	if req.GraphToken == "" {
		return nil, rejectEntraKind(CodeInvalidGrant, entra.KindMissingToken)
	}

	profile, err := h.profiles.Fetch(ctx, req.GraphToken)
	if err != nil {
		return nil, rejectEntraError(err)
	}

	u, err := h.store.Reconcile(ctx, user.FromDelegated(profile), nil)
	if err != nil {
		log.Error().Err(err).Str("username", profile.Username).Msg("Delegated user reconciliation failed")
		return nil, rejectEntraKind(CodeServerError, entra.KindUserCreationFailed)
	}

	roleNames, permissions, err := h.store.Grants(ctx, u)
	if err != nil {
		return nil, reject(CodeServerError, "Failed to load user grants.")
	}

	principal, err := claims.Build(u, roleNames, permissions, req.Scopes)
	if err != nil {
		return nil, reject(CodeServerError, "Failed to build claims principal.")
	}

	return principal, nil
}

// rejectEntraError turns a delegated-identity failure into a rejection
// carrying the kind's human description and name.
func rejectEntraError(err error) *Rejection {
	var entraErr *entra.Error
	if errors.As(err, &entraErr) {
		return rejectEntraKind(CodeInvalidGrant, entraErr.Kind)
	}

	log.Error().Err(err).Msg("Delegated authentication failed")

	return reject(CodeServerError, "Unexpected identity provider error occurred.")
}

func rejectEntraKind(code string, kind entra.ErrorKind) *Rejection {
	return reject(code, fmt.Sprintf("%s (%s)", kind.Description(), kind))
}
