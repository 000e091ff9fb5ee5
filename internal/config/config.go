// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/BurntSushi/toml"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv("CORPAUTH_CONFIG_JSON")

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate fails fast on settings the daemon cannot run without and fills
// in defaults for the optional ones.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	if c.Ldap.TechnicalUsername == "" || c.Ldap.TechnicalDomain == "" || c.Ldap.TechnicalPassword == "" {
		return errors.Wrap(ErrMissingTechnicalAccount, invalidErrMessage)
	}

	if len(c.Ldap.AllowedDomains) == 0 {
		return errors.Wrap(ErrNoAllowedDomains, invalidErrMessage)
	}

	if len(c.Ldap.AllowedOfficeNames) == 0 {
		return errors.Wrap(ErrNoAllowedOffices, invalidErrMessage)
	}

	if c.Ldap.DefaultDomain == "" {
		c.Ldap.DefaultDomain = c.Ldap.AllowedDomains[0]
	}

	if c.Entra.TenantID == "" || c.Entra.ClientID == "" {
		return errors.Wrap(ErrMissingEntraSettings, invalidErrMessage)
	}

	if c.Entra.RequiredScope == "" {
		c.Entra.RequiredScope = "access_as_user"
	}

	if c.Entra.MailDomain == "" {
		return errors.Wrap(ErrMissingMailDomain, invalidErrMessage)
	}

	if c.Token.SigningKeyFile == "" {
		return errors.Wrap(ErrMissingSigningKey, invalidErrMessage)
	}

	if c.Token.Issuer == "" {
		c.Token.Issuer = c.Webserver.URL
	}

	if c.Token.Audience == "" {
		c.Token.Audience = "corpauth"
	}

	if c.Token.AccessTokenTTL == 0 {
		c.Token.AccessTokenTTL = time.Hour
	}

	if c.Token.IdentityTokenTTL == 0 {
		c.Token.IdentityTokenTTL = time.Hour
	}

	return nil
}
