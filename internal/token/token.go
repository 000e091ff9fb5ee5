// Package token mints the access and identity tokens for a built claims
// principal.
package token

import (
	"crypto/rsa"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/corpauth/corpauth/internal/claims"
)

// Config controls token issuance.
type Config struct {
	Issuer           string
	Audience         string
	AccessTokenTTL   time.Duration
	IdentityTokenTTL time.Duration
}

// Pair is the issued token response for one successful grant.
type Pair struct {
	AccessToken   string `json:"access_token"`
	IdentityToken string `json:"id_token,omitempty"`
	TokenType     string `json:"token_type"`
	ExpiresIn     int64  `json:"expires_in"`
	Scope         string `json:"scope,omitempty"`
}

// Signer mints RS256-signed tokens from claims principals. Claims are routed
// into the access and identity tokens by their destination flags.
type Signer struct {
	cfg Config
	key *rsa.PrivateKey

	now func() time.Time
}

// NewSigner creates a signer from a PEM-encoded RSA private key.
func NewSigner(cfg Config, pemKey []byte) (*Signer, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}

	return &Signer{cfg: cfg, key: key, now: time.Now}, nil
}

// Issue signs an access token and an identity token for the principal.
func (s *Signer) Issue(principal *claims.Principal) (*Pair, error) {
	now := s.now()
	scope := strings.Join(principal.Scopes, " ")

	accessClaims := s.baseClaims(now, s.cfg.AccessTokenTTL)
	mergeClaims(accessClaims, principal.ForDestination(claims.DestinationAccessToken))

	if scope != "" {
		accessClaims["scope"] = scope
	}

	accessToken, err := s.sign(accessClaims)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	identityClaims := s.baseClaims(now, s.cfg.IdentityTokenTTL)
	mergeClaims(identityClaims, principal.ForDestination(claims.DestinationIdentityToken))

	identityToken, err := s.sign(identityClaims)
	if err != nil {
		return nil, fmt.Errorf("failed to sign identity token: %w", err)
	}

	return &Pair{
		AccessToken:   accessToken,
		IdentityToken: identityToken,
		TokenType:     "Bearer",
		ExpiresIn:     int64(s.cfg.AccessTokenTTL.Seconds()),
		Scope:         scope,
	}, nil
}

func (s *Signer) baseClaims(now time.Time, ttl time.Duration) jwt.MapClaims {
	return jwt.MapClaims{
		"iss": s.cfg.Issuer,
		"aud": s.cfg.Audience,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": uuid.NewString(),
	}
}

func (s *Signer) sign(mapClaims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodRS256, mapClaims).SignedString(s.key)
}

// mergeClaims folds destination-filtered claims into a JWT claim map.
// Repeated claim types (role, permission) become string arrays.
func mergeClaims(dst jwt.MapClaims, src []claims.Claim) {
	for _, c := range src {
		existing, ok := dst[c.Type]
		if !ok {
			dst[c.Type] = c.Value
			continue
		}

		switch v := existing.(type) {
		case string:
			dst[c.Type] = []string{v, c.Value}
		case []string:
			dst[c.Type] = append(v, c.Value)
		}
	}
}
