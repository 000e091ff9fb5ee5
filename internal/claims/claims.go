// Package claims assembles the claims principal attached to issued tokens.
// Every claim carries explicit token destinations; the token layer routes
// claims into the access and identity tokens from those flags alone.
package claims

import (
	"encoding/json"
	"fmt"

	"github.com/corpauth/corpauth/internal/db/models"
)

// Destination flags a claim for one or both issued tokens.
type Destination uint8

// Claim destinations.
const (
	DestinationAccessToken Destination = 1 << iota
	DestinationIdentityToken

	DestinationBoth = DestinationAccessToken | DestinationIdentityToken
)

// Has reports whether d includes the given destination.
func (d Destination) Has(dest Destination) bool {
	return d&dest != 0
}

// Claim type names.
const (
	TypeSubject         = "sub"
	TypeUsername        = "username"
	TypeEmail           = "email"
	TypeOfficeLocation  = "office_location"
	TypeConfidentiality = "confidentiality"
	TypeRegion          = "region"
	TypeEmployeeID      = "employeeId"
	TypeDepartment      = "department"
	TypeJobTitle        = "jobTitle"
	TypeDisplayUsername = "display_username"
	TypeAppSettings     = "app_settings"
	TypeRole            = "role"
	TypePermission      = "permission"
)

// Claim is one (type, value, destinations) triple.
type Claim struct {
	Type         string
	Value        string
	Destinations Destination
}

// Principal is the full claim set built for one token issuance. Claim order
// is insertion order and stable across calls.
type Principal struct {
	Claims []Claim
	Scopes []string
}

// appSettingsPayload is the serialized form of the app_settings claim.
type appSettingsPayload struct {
	PreferredLanguageCode   string `json:"preferredLanguageCode"`
	PreferredColorThemeCode string `json:"preferredColorThemeCode"`
}

// Build assembles the principal for a reconciled user: identity and profile
// claims, the settings blob, one role claim per assigned role and one
// permission claim per derived or granted permission.
func Build(user *models.User, roleNames, permissions, scopes []string) (*Principal, error) {
	settings, err := json.Marshal(appSettingsPayload{
		PreferredLanguageCode:   user.AppSettings.PreferredLanguageCode,
		PreferredColorThemeCode: user.AppSettings.PreferredColorThemeCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize app settings: %w", err)
	}

	p := &Principal{
		Scopes: append([]string(nil), scopes...),
		Claims: make([]Claim, 0, 11+len(roleNames)+len(permissions)),
	}

	p.add(TypeSubject, user.ID, DestinationBoth)
	p.add(TypeUsername, user.Username, DestinationBoth)
	p.add(TypeEmail, user.Email, DestinationBoth)
	p.add(TypeOfficeLocation, user.OfficeLocation, DestinationBoth)
	p.add(TypeConfidentiality, user.CustomProperties.Confidentiality, DestinationBoth)
	p.add(TypeRegion, user.CustomProperties.Region, DestinationBoth)
	p.add(TypeEmployeeID, user.EmployeeID, DestinationBoth)
	p.add(TypeDepartment, user.Department, DestinationBoth)
	p.add(TypeJobTitle, user.JobTitle, DestinationBoth)
	p.add(TypeDisplayUsername, user.DisplayName, DestinationIdentityToken)
	p.add(TypeAppSettings, string(settings), DestinationIdentityToken)

	for _, role := range roleNames {
		p.add(TypeRole, role, DestinationBoth)
	}

	for _, permission := range permissions {
		p.add(TypePermission, permission, DestinationAccessToken)
	}

	return p, nil
}

func (p *Principal) add(claimType, value string, destinations Destination) {
	p.Claims = append(p.Claims, Claim{
		Type:         claimType,
		Value:        value,
		Destinations: destinations,
	})
}

// Values collects the values of all claims of the given type, preserving
// order.
func (p *Principal) Values(claimType string) []string {
	var values []string

	for _, c := range p.Claims {
		if c.Type == claimType {
			values = append(values, c.Value)
		}
	}

	return values
}

// ForDestination returns the claims flagged for the given destination,
// preserving order.
func (p *Principal) ForDestination(dest Destination) []Claim {
	var out []Claim

	for _, c := range p.Claims {
		if c.Destinations.Has(dest) {
			out = append(out, c)
		}
	}

	return out
}
