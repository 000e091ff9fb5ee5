// Package token serves the OAuth2 token endpoint.
package token

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/corpauth/corpauth/internal/config"
	"github.com/corpauth/corpauth/internal/grant"
	"github.com/corpauth/corpauth/internal/token"
)

const (
	// Path is the path to the token endpoint.
	Path = "/connect/token"
)

// Service is the token endpoint handler service.
type Service struct {
	cfg       *config.Config
	pipeline  *grant.Pipeline
	signer    *token.Signer
	validator *validator.Validate
}

// Handler is the token endpoint handler.
var Handler = Service{}

// formInput is the url-encoded token request body.
type formInput struct {
	GrantType   string `form:"grant_type" validate:"required"`
	Username    string `form:"username"`
	Password    string `form:"password"`
	Domain      string `form:"domain"`
	AccessToken string `form:"access_token"`
	GraphToken  string `form:"graph_token"`
	Scope       string `form:"scope"`
}

// Init initializes the token endpoint handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, pipeline *grant.Pipeline, signer *token.Signer) error {
	if app == nil || cfg == nil || pipeline == nil || signer == nil {
		return errors.New("app, cfg, pipeline or signer is nil")
	}

	s.cfg = cfg
	s.pipeline = pipeline
	s.signer = signer
	s.validator = validator.New()

	app.Post(Path, s.Post)

	return nil
}

// Post handles one token request: parse the form, dispatch to the grant
// pipeline and mint the token pair.
func (s *Service) Post(c *fiber.Ctx) error {
	in := new(formInput)

	if err := c.BodyParser(in); err != nil {
		return s.reject(c, &grant.Rejection{
			Code:        grant.CodeInvalidRequest,
			Description: "The request body could not be parsed.",
		})
	}

	if err := s.validator.Struct(in); err != nil {
		return s.reject(c, &grant.Rejection{
			Code:        grant.CodeInvalidRequest,
			Description: "The grant_type parameter is required.",
		})
	}

	principal, rejection := s.pipeline.Dispatch(c.UserContext(), &grant.Request{
		GrantType:   in.GrantType,
		Username:    in.Username,
		Password:    in.Password,
		Domain:      in.Domain,
		AccessToken: in.AccessToken,
		GraphToken:  in.GraphToken,
		Scopes:      strings.Fields(in.Scope),
	})
	if rejection != nil {
		return s.reject(c, rejection)
	}

	pair, err := s.signer.Issue(principal)
	if err != nil {
		log.Error().Err(err).Msg("Token signing failed")

		return s.reject(c, &grant.Rejection{
			Code:        grant.CodeServerError,
			Description: "Failed to issue tokens.",
		})
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set(fiber.HeaderPragma, "no-cache")

	return c.JSON(pair)
}

// reject writes an OAuth2 error response. Server-side failures map to 500,
// everything else to 400.
func (s *Service) reject(c *fiber.Ctx, rejection *grant.Rejection) error {
	status := fiber.StatusBadRequest
	if rejection.Code == grant.CodeServerError {
		status = fiber.StatusInternalServerError
	}

	c.Set(fiber.HeaderCacheControl, "no-store")

	return c.Status(status).JSON(rejection)
}
