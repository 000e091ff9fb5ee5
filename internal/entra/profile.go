package entra

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// DefaultGraphBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

const profileSelect = "$select=id,displayName,userPrincipalName,mail," +
	"department,jobTitle,officeLocation,employeeId"

// Profile holds the canonical profile attributes of a delegated-identity
// user, plus the local username derived from their mail address. Ephemeral;
// never persisted directly.
type Profile struct {
	ID             string
	Username       string
	Mail           string
	DisplayName    string
	EmployeeID     string
	Department     string
	JobTitle       string
	OfficeLocation string
}

// graphUser is the wire shape of the profile API response.
type graphUser struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName"`
	Mail              string `json:"mail"`
	Department        string `json:"department"`
	JobTitle          string `json:"jobTitle"`
	OfficeLocation    string `json:"officeLocation"`
	EmployeeID        string `json:"employeeId"`
}

// ProfileFetcher fetches the authenticated user's profile from the profile
// API using a delegated profile-access ("graph") token.
type ProfileFetcher struct {
	cfg *Config
}

// NewProfileFetcher creates a profile fetcher.
func NewProfileFetcher(cfg *Config) *ProfileFetcher {
	return &ProfileFetcher{cfg: cfg}
}

// Fetch retrieves and validates the profile of the token's principal.
// Every failure is an *Error of this package.
func (f *ProfileFetcher) Fetch(ctx context.Context, graphToken string) (*Profile, error) {
	if strings.TrimSpace(graphToken) == "" {
		return nil, NewError(KindMissingToken)
	}

	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	user, err := f.fetchGraphUser(ctx, graphToken)
	if err != nil {
		return nil, err
	}

	if user.ID == "" {
		return nil, NewError(KindMissingGraphUser)
	}

	if strings.TrimSpace(user.OfficeLocation) == "" {
		return nil, NewError(KindMissingGraphUserOfficeLocation)
	}

	mail := user.Mail
	if strings.TrimSpace(mail) == "" {
		mail = user.UserPrincipalName
	}

	if strings.TrimSpace(mail) == "" {
		return nil, NewError(KindMissingGraphUserMail)
	}

	username, mailDomain, found := strings.Cut(mail, "@")
	if !found || strings.TrimSpace(username) == "" {
		return nil, NewError(KindInvalidGraphUserMailFormat)
	}

	if !strings.EqualFold(mailDomain, f.cfg.MailDomain) {
		return nil, NewError(KindInvalidGraphUserMailFormat)
	}

	return &Profile{
		ID:             user.ID,
		Username:       username,
		Mail:           mail,
		DisplayName:    user.DisplayName,
		EmployeeID:     user.EmployeeID,
		Department:     user.Department,
		JobTitle:       user.JobTitle,
		OfficeLocation: user.OfficeLocation,
	}, nil
}

// fetchGraphUser performs the bearer-authenticated profile request.
func (f *ProfileFetcher) fetchGraphUser(ctx context.Context, graphToken string) (*graphUser, error) {
	baseURL := f.cfg.GraphBaseURL
	if baseURL == "" {
		baseURL = DefaultGraphBaseURL
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: graphToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/me?"+profileSelect, nil)
	if err != nil {
		return nil, WrapError(KindGraphRequestFailed, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, WrapError(KindGraphRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, NewError(KindGraphRequestFailed)
	}

	var user graphUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, WrapError(KindMissingGraphUser, err)
	}

	return &user, nil
}
