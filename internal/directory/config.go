package directory

import (
	"fmt"
	"strings"
	"time"
)

// Config holds directory (LDAP/Active Directory) client configuration.
type Config struct {
	// TechnicalUsername is the service account used for search binds.
	TechnicalUsername string
	// TechnicalDomain is the domain the service account belongs to.
	TechnicalDomain string
	// TechnicalPassword is the service account password.
	TechnicalPassword string
	// AllowedDomains maps each allow-listed domain to its search base DN.
	AllowedDomains map[string]string
	// AllowedOfficeNames is the office-location allow-list.
	AllowedOfficeNames []string
	// Timeout bounds dialing and every directory request.
	Timeout time.Duration
}

// NewConfig builds a Config, deriving the base DN of every allowed domain
// from its dot-separated labels.
func NewConfig(technicalUsername, technicalDomain, technicalPassword string,
	allowedDomains, allowedOfficeNames []string, timeout time.Duration,
) *Config {
	domains := make(map[string]string, len(allowedDomains))
	for _, domain := range allowedDomains {
		domains[domain] = BaseDN(domain)
	}

	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Config{
		TechnicalUsername:  technicalUsername,
		TechnicalDomain:    technicalDomain,
		TechnicalPassword:  technicalPassword,
		AllowedDomains:     domains,
		AllowedOfficeNames: allowedOfficeNames,
		Timeout:            timeout,
	}
}

// BaseDN converts a DNS domain to a search base DN, one dc= component per
// label (e.g. "example.com" -> "dc=example,dc=com").
func BaseDN(domain string) string {
	labels := strings.Split(domain, ".")

	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		if label == "" {
			continue
		}

		parts = append(parts, "dc="+label)
	}

	return strings.Join(parts, ",")
}

// technicalBindDN is the UPN-form bind name of the service account.
func (c *Config) technicalBindDN() string {
	return fmt.Sprintf("%s@%s", c.TechnicalUsername, c.TechnicalDomain)
}

// officeAllowed reports whether office is in the allow-list.
func (c *Config) officeAllowed(office string) bool {
	for _, allowed := range c.AllowedOfficeNames {
		if allowed == office {
			return true
		}
	}

	return false
}
