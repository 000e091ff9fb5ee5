package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/corpauth/corpauth/internal/db/models"
	"github.com/corpauth/corpauth/internal/rolename"
)

// Role provisioning errors.
var (
	ErrRoleExists   = errors.New("role already exists")
	ErrRoleNotFound = errors.New("role not found")
)

// CreateRole provisions a role from a tool and access level: the role record
// itself, its derived permission claims and the owning application (created
// if no application with the derived client id exists yet). The whole
// operation is transactional.
func (s *Service) CreateRole(ctx context.Context, tool, accessLevel string) (*models.Role, error) {
	if _, _, err := rolename.Parse(rolename.Join(tool, accessLevel)); err != nil {
		return nil, err
	}

	var role *models.Role

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		name := rolename.Join(tool, accessLevel)

		var count int64
		if err := tx.Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check role %q: %w", name, err)
		}

		if count > 0 {
			return ErrRoleExists
		}

		var err error

		role, err = createRole(tx, tool, accessLevel)
		if err != nil {
			return err
		}

		_, err = findOrCreateApplication(tx, tool)

		return err
	})
	if err != nil {
		return nil, err
	}

	return role, nil
}

// createRole inserts the role and its name-derived permission claims.
func createRole(tx *gorm.DB, tool, accessLevel string) (*models.Role, error) {
	kebab := rolename.ToKebabCase(tool)

	role := &models.Role{
		Name:        rolename.Join(tool, accessLevel),
		Tool:        tool,
		AccessLevel: accessLevel,
	}

	for _, claim := range rolename.RoleClaims(kebab, rolename.Permissions(accessLevel)) {
		role.Claims = append(role.Claims, models.RoleClaim{Value: claim})
	}

	if err := tx.Create(role).Error; err != nil {
		return nil, fmt.Errorf("failed to create role %q: %w", role.Name, err)
	}

	return role, nil
}

// findOrCreateApplication resolves the application owning a tool by its
// kebab-case client id, creating it on first use.
func findOrCreateApplication(tx *gorm.DB, tool string) (*models.Application, error) {
	clientID := rolename.ToKebabCase(tool)

	var app models.Application

	err := tx.Where("client_id = ?", clientID).
		FirstOrCreate(&app, models.Application{
			ClientID:    clientID,
			DisplayName: tool,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find or create application %q: %w", clientID, err)
	}

	return &app, nil
}

// AssignRole links a user to an existing role and to the role's owning
// application.
func (s *Service) AssignRole(ctx context.Context, user *models.User, roleName string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return assignRole(tx, user, roleName)
	})
}

func assignRole(tx *gorm.DB, user *models.User, roleName string) error {
	tool, _, err := rolename.Parse(roleName)
	if err != nil {
		return err
	}

	var role models.Role

	err = tx.Where("name = ?", roleName).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrRoleNotFound, roleName)
	}

	if err != nil {
		return fmt.Errorf("failed to load role %q: %w", roleName, err)
	}

	if err := tx.Model(user).Association("Roles").Append(&role); err != nil {
		return fmt.Errorf("failed to assign role %q: %w", roleName, err)
	}

	app, err := findOrCreateApplication(tx, tool)
	if err != nil {
		return err
	}

	if err := tx.Model(user).Association("Applications").Append(app); err != nil {
		return fmt.Errorf("failed to assign application %q: %w", app.ClientID, err)
	}

	return nil
}

// GrantClaim grants an individual permission claim of the form
// "user.<tool>.<privilege>" to a user. Granting an already held claim is a
// no-op.
func (s *Service) GrantClaim(ctx context.Context, user *models.User, tool, privilege string) error {
	value, err := rolename.UserClaim(tool, privilege)
	if err != nil {
		return err
	}

	var claim models.UserClaim

	err = s.db.WithContext(ctx).
		Where("user_id = ? AND value = ?", user.ID, value).
		FirstOrCreate(&claim, models.UserClaim{UserID: user.ID, Value: value}).Error
	if err != nil {
		return fmt.Errorf("failed to grant claim %q: %w", value, err)
	}

	return nil
}
