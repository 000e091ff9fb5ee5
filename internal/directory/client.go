// Package directory implements authentication against an LDAP/Active
// Directory tree: a technical-account bind, a subtree search for the user
// entry, an office-location allow-list check and a verification bind with
// the caller's password.
package directory

import (
	"context"
	"fmt"
	"net"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"
)

// Directory attributes read from the user entry.
const (
	attrOfficeLocation = "physicalDeliveryOfficeName"
	attrEmployeeID     = "employeeID"
	attrDisplayName    = "displayName"
	attrDepartment     = "department"
	attrTitle          = "title"
)

var searchAttributes = []string{
	attrOfficeLocation,
	attrEmployeeID,
	attrDisplayName,
	attrDepartment,
	attrTitle,
}

// Profile holds the attributes pulled from one directory search. It is
// constructed per authentication attempt and never persisted directly.
type Profile struct {
	Username       string
	Domain         string
	EmployeeID     string
	DisplayName    string
	Department     string
	JobTitle       string
	OfficeLocation string
}

// Conn is the narrow subset of an LDAP connection the client needs.
// *ldap.Conn satisfies it; tests use a fake.
type Conn interface {
	Bind(username, password string) error
	Search(request *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// DialFunc opens a directory connection to the given host.
type DialFunc func(ctx context.Context, host string) (Conn, error)

// Client authenticates users against a directory server. One connection is
// opened per call and closed unconditionally.
type Client struct {
	cfg  *Config
	dial DialFunc
}

// NewClient creates a directory client using the standard LDAP dialer.
func NewClient(cfg *Config) *Client {
	return &Client{cfg: cfg, dial: dialLDAP(cfg)}
}

// NewClientWithDialer creates a directory client with a custom dialer.
// Used by tests to substitute a fake connection.
func NewClientWithDialer(cfg *Config, dial DialFunc) *Client {
	return &Client{cfg: cfg, dial: dial}
}

// dialLDAP returns a DialFunc connecting to ldap://host:389 with the
// configured timeout applied to both dialing and requests.
func dialLDAP(cfg *Config) DialFunc {
	return func(ctx context.Context, host string) (Conn, error) {
		dialer := &net.Dialer{Timeout: cfg.Timeout}
		if deadline, ok := ctx.Deadline(); ok {
			dialer.Deadline = deadline
		}

		ldapURL := fmt.Sprintf("ldap://%s", net.JoinHostPort(host, ldap.DefaultLdapPort))

		conn, err := ldap.DialURL(ldapURL, ldap.DialWithDialer(dialer))
		if err != nil {
			return nil, err
		}

		conn.SetTimeout(cfg.Timeout)

		return conn, nil
	}
}

// Authenticate verifies the user's credentials and returns their directory
// profile. Every failure is one of the sentinel errors of this package.
func (c *Client) Authenticate(ctx context.Context, username, domain, password string) (*Profile, error) {
	baseDN, ok := c.cfg.AllowedDomains[domain]
	if !ok {
		return nil, ErrDomainNotAllowed
	}

	conn, err := c.connect(ctx, domain)
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	entry, err := c.findEntry(conn, baseDN, username)
	if err != nil {
		return nil, err
	}

	profile, err := c.profileFromEntry(entry, username, domain)
	if err != nil {
		return nil, err
	}

	// The actual credential check: re-bind as the found entry.
	if err := conn.Bind(entry.DN, password); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("%w: user bind failed: %v", ErrServerError, err)
	}

	return profile, nil
}

// FindByUsername looks up a user entry without verifying a password.
// Intended for administrative lookup and import; any failure, including an
// unknown domain or a disallowed office, yields nil.
func (c *Client) FindByUsername(ctx context.Context, username, domain string) *Profile {
	baseDN, ok := c.cfg.AllowedDomains[domain]
	if !ok {
		return nil
	}

	conn, err := c.connect(ctx, domain)
	if err != nil {
		log.Warn().Err(err).Str("domain", domain).Msg("directory lookup failed")
		return nil
	}
	defer closeConn(conn)

	entry, err := c.findEntry(conn, baseDN, username)
	if err != nil {
		return nil
	}

	profile, err := c.profileFromEntry(entry, username, domain)
	if err != nil {
		return nil
	}

	return profile
}

// connect dials the domain's host and binds with the technical account.
func (c *Client) connect(ctx context.Context, domain string) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerError, err)
	}

	conn, err := c.dial(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to directory: %v", ErrServerError, err)
	}

	if err := conn.Bind(c.cfg.technicalBindDN(), c.cfg.TechnicalPassword); err != nil {
		closeConn(conn)
		return nil, fmt.Errorf("%w: failed to bind with technical account: %v", ErrServerError, err)
	}

	return conn, nil
}

// findEntry searches the subtree under baseDN for the username and returns
// the first entry.
func (c *Client) findEntry(conn Conn, baseDN, username string) (*ldap.Entry, error) {
	filter := fmt.Sprintf("(sAMAccountName=%s)", ldap.EscapeFilter(username))

	// No size limit: a directory with several entries for the same account
	// name must not fail with sizeLimitExceeded, the first entry wins.
	searchRequest := ldap.NewSearchRequest(
		baseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		int(c.cfg.Timeout.Seconds()),
		false,
		filter,
		searchAttributes,
		nil,
	)

	result, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search for user: %v", ErrServerError, err)
	}

	if len(result.Entries) == 0 {
		return nil, ErrUserNotFound
	}

	return result.Entries[0], nil
}

// profileFromEntry reads the entry's attributes and enforces the office
// allow-list.
func (c *Client) profileFromEntry(entry *ldap.Entry, username, domain string) (*Profile, error) {
	office := entry.GetAttributeValue(attrOfficeLocation)
	if office == "" || !c.cfg.officeAllowed(office) {
		return nil, ErrOfficeNotAllowed
	}

	return &Profile{
		Username:       username,
		Domain:         domain,
		EmployeeID:     entry.GetAttributeValue(attrEmployeeID),
		DisplayName:    entry.GetAttributeValue(attrDisplayName),
		Department:     entry.GetAttributeValue(attrDepartment),
		JobTitle:       entry.GetAttributeValue(attrTitle),
		OfficeLocation: office,
	}, nil
}

// closeConn closes the connection, logging instead of propagating failures.
func closeConn(conn Conn) {
	if err := conn.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close directory connection")
	}
}
