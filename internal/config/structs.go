package config

import (
	"time"

	"github.com/corpauth/corpauth/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Ldap      Ldap
	Entra     Entra
	Token     Token
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool   // use clean path middleware to allow multi slash requests
	DisableRecover bool   // disable recover middleware
	Domain         string // domain name for the webserver
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
}

// Ldap holds the directory client settings.
type Ldap struct {
	TechnicalUsername  string        // login name of the technical bind account
	TechnicalDomain    string        // domain of the technical bind account
	TechnicalPassword  string        // password of the technical bind account
	DefaultDomain      string        // domain assumed when a token request names none
	AllowedDomains     []string      // domains permitted to authenticate (base DNs derived)
	AllowedOfficeNames []string      // office locations permitted to authenticate
	Timeout            time.Duration // per-request directory timeout
}

// Entra holds the delegated identity provider settings.
type Entra struct {
	TenantID      string        // Entra tenant identifier
	ClientID      string        // expected token audience
	RequiredScope string        // scope a delegated access token must carry
	MailDomain    string        // organization mail domain suffix
	GraphBaseURL  string        // profile API base url, defaulted when empty
	Timeout       time.Duration // profile fetch timeout
}

// Token holds the token issuance settings.
type Token struct {
	Issuer           string        // iss claim of minted tokens
	Audience         string        // aud claim of minted tokens
	SigningKeyFile   string        // path to the PEM-encoded RSA signing key
	AccessTokenTTL   time.Duration // access token lifetime
	IdentityTokenTTL time.Duration // identity token lifetime
}
