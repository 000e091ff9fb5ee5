package user

import (
	"context"
	"fmt"

	"github.com/corpauth/corpauth/internal/db/models"
)

// Grants resolves the role names assigned to a user and the union of all
// permission claim values from those roles plus the user's individually
// granted claims. Roles are returned in name order; permissions keep role
// order and are deduplicated.
func (s *Service) Grants(ctx context.Context, user *models.User) (roleNames, permissions []string, err error) {
	var roles []models.Role

	err = s.db.WithContext(ctx).
		Preload("Claims").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", user.ID).
		Order("roles.name").
		Find(&roles).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load roles for user %q: %w", user.Username, err)
	}

	var userClaims []models.UserClaim

	err = s.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("value").
		Find(&userClaims).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load claims for user %q: %w", user.Username, err)
	}

	seen := map[string]bool{}

	for _, role := range roles {
		roleNames = append(roleNames, role.Name)

		for _, claim := range role.Claims {
			if seen[claim.Value] {
				continue
			}

			seen[claim.Value] = true
			permissions = append(permissions, claim.Value)
		}
	}

	for _, claim := range userClaims {
		if seen[claim.Value] {
			continue
		}

		seen[claim.Value] = true
		permissions = append(permissions, claim.Value)
	}

	return roleNames, permissions, nil
}
