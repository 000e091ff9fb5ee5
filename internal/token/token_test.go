package token

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpauth/corpauth/internal/claims"
	"github.com/corpauth/corpauth/internal/db/models"
)

func testSigner(t *testing.T) (*Signer, *rsa.PublicKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pemKey := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	signer, err := NewSigner(Config{
		Issuer:           "https://auth.example.com",
		Audience:         "corpauth",
		AccessTokenTTL:   time.Hour,
		IdentityTokenTTL: 2 * time.Hour,
	}, pemKey)
	require.NoError(t, err)

	signer.now = func() time.Time {
		return time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	}

	return signer, &key.PublicKey
}

func testPrincipal(t *testing.T) *claims.Principal {
	t.Helper()

	principal, err := claims.Build(&models.User{
		ID:             "5a1f5d8e-0b65-4f3c-9a51-2f1f9a4f8c10",
		Username:       "john",
		Email:          "john@example.com",
		DisplayName:    "John Smith",
		OfficeLocation: models.OfficeHavant,
		AppSettings: models.AppSettings{
			PreferredLanguageCode:   models.LanguageEnglish,
			PreferredColorThemeCode: models.ThemeLight,
		},
		CustomProperties: models.CustomProperties{
			Confidentiality: models.ConfidentialityClass1,
			Region:          models.RegionEmea,
		},
	},
		[]string{"Intranet.Reader"},
		[]string{"role.intranet.view", "role.intranet.read"},
		[]string{"openid", "profile"},
	)
	require.NoError(t, err)

	return principal
}

func parseToken(t *testing.T, raw string, pub *rsa.PublicKey) jwt.MapClaims {
	t.Helper()

	parsed, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return pub, nil
	}, jwt.WithValidMethods([]string{"RS256"}), jwt.WithTimeFunc(func() time.Time {
		return time.Date(2026, 1, 2, 12, 30, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)

	return mapClaims
}

func TestIssueAccessToken(t *testing.T) {
	signer, pub := testSigner(t)

	pair, err := signer.Issue(testPrincipal(t))
	require.NoError(t, err)

	assert.Equal(t, "Bearer", pair.TokenType)
	assert.EqualValues(t, 3600, pair.ExpiresIn)
	assert.Equal(t, "openid profile", pair.Scope)

	mapClaims := parseToken(t, pair.AccessToken, pub)

	assert.Equal(t, "https://auth.example.com", mapClaims["iss"])
	assert.Equal(t, "corpauth", mapClaims["aud"])
	assert.Equal(t, "5a1f5d8e-0b65-4f3c-9a51-2f1f9a4f8c10", mapClaims["sub"])
	assert.Equal(t, "john", mapClaims["username"])
	assert.Equal(t, models.RegionEmea, mapClaims["region"])
	assert.Equal(t, "Intranet.Reader", mapClaims["role"])
	assert.Equal(t, "openid profile", mapClaims["scope"])
	assert.NotEmpty(t, mapClaims["jti"])

	exp, err := mapClaims.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 13, 0, 0, 0, time.UTC), exp.Time.UTC())

	// Identity-only claims must not leak into the access token.
	assert.NotContains(t, mapClaims, "display_username")
	assert.NotContains(t, mapClaims, "app_settings")
}

func TestIssueIdentityToken(t *testing.T) {
	signer, pub := testSigner(t)

	pair, err := signer.Issue(testPrincipal(t))
	require.NoError(t, err)

	mapClaims := parseToken(t, pair.IdentityToken, pub)

	assert.Equal(t, "John Smith", mapClaims["display_username"])
	assert.JSONEq(t,
		`{"preferredLanguageCode":"en","preferredColorThemeCode":"light"}`,
		mapClaims["app_settings"].(string))

	exp, err := mapClaims.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 14, 0, 0, 0, time.UTC), exp.Time.UTC())

	// Access-only claims must not leak into the identity token.
	assert.NotContains(t, mapClaims, "permission")
	assert.NotContains(t, mapClaims, "scope")
}

func TestIssueRepeatedClaimsBecomeArrays(t *testing.T) {
	signer, pub := testSigner(t)

	pair, err := signer.Issue(testPrincipal(t))
	require.NoError(t, err)

	mapClaims := parseToken(t, pair.AccessToken, pub)

	assert.Equal(t,
		[]interface{}{"role.intranet.view", "role.intranet.read"},
		mapClaims["permission"])
}

func TestIssueDistinctTokenIDs(t *testing.T) {
	signer, pub := testSigner(t)

	pair, err := signer.Issue(testPrincipal(t))
	require.NoError(t, err)

	access := parseToken(t, pair.AccessToken, pub)
	identity := parseToken(t, pair.IdentityToken, pub)

	assert.NotEqual(t, access["jti"], identity["jti"])
}

func TestNewSignerRejectsBadKey(t *testing.T) {
	_, err := NewSigner(Config{}, []byte("not a key"))
	require.Error(t, err)
}
