package rolename

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidTool(t *testing.T) {
	testCases := []struct {
		name  string
		tool  string
		valid bool
	}{
		{name: "single word", tool: "Inventory", valid: true},
		{name: "multi word", tool: "AzureBlobStorage", valid: true},
		{name: "lowercase start", tool: "azureBlobStorage", valid: false},
		{name: "empty", tool: "", valid: false},
		{name: "digits", tool: "Tool2", valid: false},
		{name: "hyphenated", tool: "Azure-Blob", valid: false},
		{name: "contains dot", tool: "Azure.Blob", valid: false},
		{name: "whitespace", tool: "Azure Blob", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, ValidTool(tc.tool))
		})
	}
}

func TestValidAccessLevel(t *testing.T) {
	for _, level := range AccessLevels {
		assert.True(t, ValidAccessLevel(level), level)
	}

	assert.False(t, ValidAccessLevel("SuperAdmin"))
	assert.False(t, ValidAccessLevel("viewer"))
	assert.False(t, ValidAccessLevel(""))
}

func TestToKebabCase(t *testing.T) {
	testCases := []struct {
		pascal string
		kebab  string
	}{
		{pascal: "AzureBlobStorage", kebab: "azure-blob-storage"},
		{pascal: "Inventory", kebab: "inventory"},
		{pascal: "ABTest", kebab: "a-b-test"},
		{pascal: "", kebab: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.pascal, func(t *testing.T) {
			assert.Equal(t, tc.kebab, ToKebabCase(tc.pascal))
			// deterministic across calls
			assert.Equal(t, tc.kebab, ToKebabCase(tc.pascal))
		})
	}
}

// Each access level must grant a strict superset of the permissions of
// every level below it.
func TestPermissionMonotonicity(t *testing.T) {
	for i, lower := range AccessLevels {
		for _, higher := range AccessLevels[i+1:] {
			lowerPerms := Permissions(lower)
			higherPerms := Permissions(higher)

			require.Greater(t, len(higherPerms), len(lowerPerms),
				"%s must grant more permissions than %s", higher, lower)

			for _, p := range lowerPerms {
				assert.Contains(t, higherPerms, p,
					"%s must include %s permission %q", higher, lower, p)
			}
		}
	}
}

func TestPermissionsUnknownLevel(t *testing.T) {
	assert.Nil(t, Permissions("SuperAdmin"))
}

func TestPermissionsCopyIsolation(t *testing.T) {
	perms := Permissions(AccessLevelViewer)
	perms[0] = "mutated"

	assert.Equal(t, []string{PermissionView}, Permissions(AccessLevelViewer))
}

func TestRoleClaims(t *testing.T) {
	claims := RoleClaims("azure-blob-storage", Permissions(AccessLevelReader))

	assert.Equal(t, []string{
		"role.azure-blob-storage.view",
		"role.azure-blob-storage.read",
	}, claims)

	assert.Nil(t, RoleClaims("azure-blob-storage", nil))
}

func TestUserClaim(t *testing.T) {
	testCases := []struct {
		name      string
		tool      string
		privilege string
		expected  string
		errField  string
	}{
		{
			name:      "valid",
			tool:      "azure-storage",
			privilege: "read-only",
			expected:  "user.azure-storage.read-only",
		},
		{
			name:      "uppercase tool",
			tool:      "Azure",
			privilege: "read",
			errField:  "tool",
		},
		{
			name:      "uppercase privilege",
			tool:      "azure",
			privilege: "Read",
			errField:  "privilege",
		},
		{
			name:      "trailing hyphen",
			tool:      "azure-",
			privilege: "read",
			errField:  "tool",
		},
		{
			name:      "empty privilege",
			tool:      "azure",
			privilege: "",
			errField:  "privilege",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			claim, err := UserClaim(tc.tool, tc.privilege)

			if tc.errField != "" {
				require.Error(t, err)

				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tc.errField, verr.Field)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, claim)
		})
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		roleName string
		tool     string
		access   string
		wantErr  bool
	}{
		{
			name:     "valid",
			roleName: "AzureBlobStorage.Viewer",
			tool:     "AzureBlobStorage",
			access:   "Viewer",
		},
		{name: "lowercase tool", roleName: "azureBlobStorage.Viewer", wantErr: true},
		{name: "unknown level", roleName: "AzureBlobStorage.SuperAdmin", wantErr: true},
		{name: "no dot", roleName: "AzureBlobStorage", wantErr: true},
		{name: "empty", roleName: "", wantErr: true},
		{name: "empty tool", roleName: ".Viewer", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tool, access, err := Parse(tc.roleName)

			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.tool, tool)
			assert.Equal(t, tc.access, access)
			assert.Equal(t, tc.roleName, Join(tool, access))
		})
	}
}
