package claims_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpauth/corpauth/internal/claims"
	"github.com/corpauth/corpauth/internal/db/models"
)

func testUser() *models.User {
	return &models.User{
		ID:             "5a1f5d8e-0b65-4f3c-9a51-2f1f9a4f8c10",
		Username:       "john.smith",
		Email:          "john.smith@example.com",
		DisplayName:    "John Smith",
		OfficeLocation: models.OfficeHavant,
		EmployeeID:     "100042",
		Department:     "Engineering",
		JobTitle:       "Software Engineer",
		AppSettings: models.AppSettings{
			PreferredLanguageCode:   models.LanguagePolish,
			PreferredColorThemeCode: models.ThemeDark,
		},
		CustomProperties: models.CustomProperties{
			Confidentiality: models.ConfidentialityClass2,
			Region:          models.RegionEmea,
		},
	}
}

func TestBuild(t *testing.T) {
	user := testUser()

	principal, err := claims.Build(user,
		[]string{"AzureBlobStorage.Reader", "Intranet.Viewer"},
		[]string{"role.azure-blob-storage.view", "role.azure-blob-storage.read", "role.intranet.view"},
		[]string{"openid", "profile"},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"openid", "profile"}, principal.Scopes)

	byType := map[string]claims.Claim{}
	for _, c := range principal.Claims {
		if c.Type != claims.TypeRole && c.Type != claims.TypePermission {
			byType[c.Type] = c
		}
	}

	for claimType, want := range map[string]string{
		claims.TypeSubject:         user.ID,
		claims.TypeUsername:        "john.smith",
		claims.TypeEmail:           "john.smith@example.com",
		claims.TypeOfficeLocation:  models.OfficeHavant,
		claims.TypeConfidentiality: models.ConfidentialityClass2,
		claims.TypeRegion:          models.RegionEmea,
		claims.TypeEmployeeID:      "100042",
		claims.TypeDepartment:      "Engineering",
		claims.TypeJobTitle:        "Software Engineer",
		claims.TypeDisplayUsername: "John Smith",
	} {
		c, ok := byType[claimType]
		require.True(t, ok, "missing claim %q", claimType)
		assert.Equal(t, want, c.Value, claimType)
	}

	assert.Equal(t, []string{"AzureBlobStorage.Reader", "Intranet.Viewer"},
		principal.Values(claims.TypeRole))
	assert.Equal(t,
		[]string{"role.azure-blob-storage.view", "role.azure-blob-storage.read", "role.intranet.view"},
		principal.Values(claims.TypePermission))
}

func TestBuildAppSettingsClaim(t *testing.T) {
	principal, err := claims.Build(testUser(), nil, nil, nil)
	require.NoError(t, err)

	values := principal.Values(claims.TypeAppSettings)
	require.Len(t, values, 1)

	var settings map[string]string
	require.NoError(t, json.Unmarshal([]byte(values[0]), &settings))

	assert.Equal(t, map[string]string{
		"preferredLanguageCode":   models.LanguagePolish,
		"preferredColorThemeCode": models.ThemeDark,
	}, settings)
}

func TestBuildDestinations(t *testing.T) {
	principal, err := claims.Build(testUser(),
		[]string{"Intranet.Viewer"}, []string{"role.intranet.view"}, nil)
	require.NoError(t, err)

	destinations := map[string]claims.Destination{}
	for _, c := range principal.Claims {
		destinations[c.Type] = c.Destinations
	}

	both := []string{
		claims.TypeSubject, claims.TypeUsername, claims.TypeEmail,
		claims.TypeOfficeLocation, claims.TypeConfidentiality,
		claims.TypeRegion, claims.TypeEmployeeID, claims.TypeDepartment,
		claims.TypeJobTitle, claims.TypeRole,
	}
	for _, claimType := range both {
		assert.Equal(t, claims.DestinationBoth, destinations[claimType], claimType)
	}

	assert.Equal(t, claims.DestinationIdentityToken, destinations[claims.TypeDisplayUsername])
	assert.Equal(t, claims.DestinationIdentityToken, destinations[claims.TypeAppSettings])
	assert.Equal(t, claims.DestinationAccessToken, destinations[claims.TypePermission])
}

func TestForDestination(t *testing.T) {
	principal, err := claims.Build(testUser(),
		[]string{"Intranet.Viewer"}, []string{"role.intranet.view"}, nil)
	require.NoError(t, err)

	accessTypes := map[string]bool{}
	for _, c := range principal.ForDestination(claims.DestinationAccessToken) {
		accessTypes[c.Type] = true
	}
	assert.True(t, accessTypes[claims.TypePermission])
	assert.False(t, accessTypes[claims.TypeAppSettings])
	assert.False(t, accessTypes[claims.TypeDisplayUsername])

	identityTypes := map[string]bool{}
	for _, c := range principal.ForDestination(claims.DestinationIdentityToken) {
		identityTypes[c.Type] = true
	}
	assert.True(t, identityTypes[claims.TypeAppSettings])
	assert.True(t, identityTypes[claims.TypeDisplayUsername])
	assert.False(t, identityTypes[claims.TypePermission])
}
