package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrMissingTechnicalAccount error if the directory service account is incomplete.
	ErrMissingTechnicalAccount = errors.New("toml config ldap technical account settings can not be empty")

	// ErrNoAllowedDomains error if no directory domain is allow-listed.
	ErrNoAllowedDomains = errors.New("toml config ldap.alloweddomains can not be empty")

	// ErrNoAllowedOffices error if no office location is allow-listed.
	ErrNoAllowedOffices = errors.New("toml config ldap.allowedofficenames can not be empty")

	// ErrMissingEntraSettings error if tenant or client id is missing.
	ErrMissingEntraSettings = errors.New("toml config entra.tenantid and entra.clientid can not be empty")

	// ErrMissingMailDomain error if the organization mail domain is missing.
	ErrMissingMailDomain = errors.New("toml config entra.maildomain can not be empty")

	// ErrMissingSigningKey error if no token signing key file is configured.
	ErrMissingSigningKey = errors.New("toml config token.signingkeyfile can not be empty")
)
