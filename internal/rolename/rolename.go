// Package rolename implements the role and permission naming scheme.
//
// A role name has the form "Tool.AccessLevel" where Tool is a PascalCase,
// letters-only identifier and AccessLevel is one of the five fixed access
// levels. The kebab-case form of Tool doubles as the client identifier of
// the application the role belongs to.
package rolename

import (
	"fmt"
	"regexp"
	"strings"
)

// Permission values, ordered from weakest to strongest.
const (
	PermissionView    = "view"
	PermissionRead    = "read"
	PermissionWrite   = "write"
	PermissionEdit    = "edit"
	PermissionDelete  = "delete"
	PermissionSpecial = "special"
)

// Access levels. Each level grants a strict superset of the permissions of
// the level before it.
const (
	AccessLevelViewer        = "Viewer"
	AccessLevelReader        = "Reader"
	AccessLevelContributor   = "Contributor"
	AccessLevelModerator     = "Moderator"
	AccessLevelAdministrator = "Administrator"
)

// AccessLevels lists all valid access levels in ascending order.
var AccessLevels = []string{
	AccessLevelViewer,
	AccessLevelReader,
	AccessLevelContributor,
	AccessLevelModerator,
	AccessLevelAdministrator,
}

// accessLevelPermissions maps each access level to its fixed, ordered
// permission list.
var accessLevelPermissions = map[string][]string{
	AccessLevelViewer: {PermissionView},
	AccessLevelReader: {PermissionView, PermissionRead},
	AccessLevelContributor: {
		PermissionView, PermissionRead, PermissionWrite,
	},
	AccessLevelModerator: {
		PermissionView, PermissionRead, PermissionWrite,
		PermissionEdit, PermissionDelete,
	},
	AccessLevelAdministrator: {
		PermissionView, PermissionRead, PermissionWrite,
		PermissionEdit, PermissionDelete, PermissionSpecial,
	},
}

var (
	pascalCaseLettersOnly = regexp.MustCompile(`^[A-Z][a-z]*(?:[A-Z][a-z]*)*$`)
	pascalCaseBoundary    = regexp.MustCompile(`([A-Z])`)
	lowerKebab            = regexp.MustCompile(`^[a-z]+(-[a-z]+)*$`)
)

// ValidTool reports whether name is a valid tool name: non-empty,
// PascalCase, letters only (e.g. "AzureBlobStorage").
func ValidTool(name string) bool {
	return pascalCaseLettersOnly.MatchString(name)
}

// ValidAccessLevel reports whether name is one of the fixed access levels.
func ValidAccessLevel(name string) bool {
	_, ok := accessLevelPermissions[name]
	return ok
}

// ToKebabCase converts a PascalCase tool name to its kebab-case form by
// inserting a hyphen before every uppercase letter except the first and
// lowercasing the result. The conversion is deterministic and one-directional.
func ToKebabCase(pascal string) string {
	if pascal == "" {
		return ""
	}

	kebab := pascalCaseBoundary.ReplaceAllStringFunc(pascal[1:], func(m string) string {
		return "-" + m
	})

	return strings.ToLower(pascal[:1] + kebab)
}

// Permissions returns the fixed ordered permission list for the given
// access level, or nil for an unknown level.
func Permissions(accessLevel string) []string {
	perms, ok := accessLevelPermissions[accessLevel]
	if !ok {
		return nil
	}

	// callers must not mutate the shared table
	out := make([]string, len(perms))
	copy(out, perms)

	return out
}

// RoleClaims produces one "role.<kebabTool>.<permission>" claim value per
// permission, preserving order.
func RoleClaims(kebabTool string, permissions []string) []string {
	if len(permissions) == 0 {
		return nil
	}

	claims := make([]string, len(permissions))
	for i, p := range permissions {
		claims[i] = fmt.Sprintf("role.%s.%s", kebabTool, p)
	}

	return claims
}

// UserClaim validates tool and privilege against the lowercase-hyphenated
// grammar and produces a "user.<tool>.<privilege>" claim value. On failure
// it returns a *ValidationError identifying the offending field.
func UserClaim(tool, privilege string) (string, error) {
	if !lowerKebab.MatchString(tool) {
		return "", &ValidationError{Field: "tool", Value: tool, Reason: grammarError}
	}

	if !lowerKebab.MatchString(privilege) {
		return "", &ValidationError{Field: "privilege", Value: privilege, Reason: grammarError}
	}

	return fmt.Sprintf("user.%s.%s", tool, privilege), nil
}

// Parse splits a role name of the form "Tool.AccessLevel" on the first dot
// and validates both halves. Invalid names are rejected as a whole.
func Parse(roleName string) (tool, accessLevel string, err error) {
	dot := strings.Index(roleName, ".")
	if dot < 0 {
		return "", "", &ValidationError{
			Field:  "role",
			Value:  roleName,
			Reason: "role name must have the form Tool.AccessLevel",
		}
	}

	tool, accessLevel = roleName[:dot], roleName[dot+1:]

	if !ValidTool(tool) {
		return "", "", &ValidationError{
			Field:  "tool",
			Value:  tool,
			Reason: "tool must be non-empty, PascalCase and contain only letters",
		}
	}

	if !ValidAccessLevel(accessLevel) {
		return "", "", &ValidationError{
			Field:  "access",
			Value:  accessLevel,
			Reason: "access level must be one of: " + strings.Join(AccessLevels, ", "),
		}
	}

	return tool, accessLevel, nil
}

// Join builds a role name from an already validated tool and access level.
func Join(tool, accessLevel string) string {
	return tool + "." + accessLevel
}

const grammarError = "must be non-empty and contain only lowercase letters " +
	"(a-z) and single hyphens (-) between words"

// ValidationError describes which field of a role or claim name failed
// validation and why.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
