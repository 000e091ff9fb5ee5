package token

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpauth/corpauth/internal/claims"
	"github.com/corpauth/corpauth/internal/config"
	"github.com/corpauth/corpauth/internal/db/models"
	"github.com/corpauth/corpauth/internal/grant"
	"github.com/corpauth/corpauth/internal/token"
)

type stubHandler struct {
	grantType grant.Type
	principal *claims.Principal
	rejection *grant.Rejection

	gotRequest *grant.Request
}

func (h *stubHandler) Type() grant.Type {
	return h.grantType
}

func (h *stubHandler) Handle(_ context.Context, req *grant.Request) (*claims.Principal, *grant.Rejection) {
	h.gotRequest = req

	return h.principal, h.rejection
}

func testSigner(t *testing.T) *token.Signer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pemKey := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	signer, err := token.NewSigner(token.Config{
		Issuer:           "https://auth.example.com",
		Audience:         "corpauth",
		AccessTokenTTL:   time.Hour,
		IdentityTokenTTL: time.Hour,
	}, pemKey)
	require.NoError(t, err)

	return signer
}

func testPrincipal(t *testing.T) *claims.Principal {
	t.Helper()

	principal, err := claims.Build(&models.User{
		ID:       "5a1f5d8e-0b65-4f3c-9a51-2f1f9a4f8c10",
		Username: "john",
		Email:    "john@example.com",
	}, nil, nil, []string{"openid"})
	require.NoError(t, err)

	return principal
}

func newTestApp(t *testing.T, handlers ...grant.Handler) *fiber.App {
	t.Helper()

	app := fiber.New()

	s := Service{}
	err := s.Init(app, &config.Config{}, grant.NewPipeline(handlers...), testSigner(t))
	require.NoError(t, err)

	return app
}

func postForm(t *testing.T, app *fiber.App, form url.Values) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestPostMissingGrantType(t *testing.T) {
	app := newTestApp(t)

	resp := postForm(t, app, url.Values{"username": {"john"}})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var rejection grant.Rejection
	decodeBody(t, resp, &rejection)
	assert.Equal(t, grant.CodeInvalidRequest, rejection.Code)
}

func TestPostUnsupportedGrantType(t *testing.T) {
	app := newTestApp(t)

	resp := postForm(t, app, url.Values{"grant_type": {"client_credentials"}})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var rejection grant.Rejection
	decodeBody(t, resp, &rejection)
	assert.Equal(t, grant.CodeUnsupportedGrantType, rejection.Code)
}

func TestPostRejection(t *testing.T) {
	handler := &stubHandler{
		grantType: grant.TypePassword,
		rejection: &grant.Rejection{
			Code:        grant.CodeInvalidGrant,
			Description: "Invalid username or password.",
		},
	}
	app := newTestApp(t, handler)

	resp := postForm(t, app, url.Values{
		"grant_type": {"password"},
		"username":   {"john"},
		"password":   {"wrong"},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var rejection grant.Rejection
	decodeBody(t, resp, &rejection)
	assert.Equal(t, grant.CodeInvalidGrant, rejection.Code)
	assert.Equal(t, "Invalid username or password.", rejection.Description)
}

func TestPostServerErrorStatus(t *testing.T) {
	handler := &stubHandler{
		grantType: grant.TypePassword,
		rejection: &grant.Rejection{
			Code:        grant.CodeServerError,
			Description: "Unexpected LDAP error occurred.",
		},
	}
	app := newTestApp(t, handler)

	resp := postForm(t, app, url.Values{
		"grant_type": {"password"},
		"username":   {"john"},
		"password":   {"secret"},
	})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestPostSuccess(t *testing.T) {
	handler := &stubHandler{
		grantType: grant.TypePassword,
		principal: testPrincipal(t),
	}
	app := newTestApp(t, handler)

	resp := postForm(t, app, url.Values{
		"grant_type": {"password"},
		"username":   {"john"},
		"password":   {"secret"},
		"scope":      {"openid profile"},
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get(fiber.HeaderCacheControl))

	var pair token.Pair
	decodeBody(t, resp, &pair)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.IdentityToken)
	assert.Equal(t, "Bearer", pair.TokenType)

	require.NotNil(t, handler.gotRequest)
	assert.Equal(t, []string{"openid", "profile"}, handler.gotRequest.Scopes)
	assert.Equal(t, "john", handler.gotRequest.Username)
}
