// Package user reconciles externally authenticated profiles against local
// user records and manages role and application assignments.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/corpauth/corpauth/internal/db/models"
	"github.com/corpauth/corpauth/internal/directory"
	"github.com/corpauth/corpauth/internal/entra"
)

// Attributes is the profile snapshot fed into reconciliation, independent of
// which authentication source produced it.
type Attributes struct {
	Username       string
	Email          string
	DisplayName    string
	OfficeLocation string
	EmployeeID     string
	Department     string
	JobTitle       string
}

// PropertyOverrides optionally seeds custom properties during
// reconciliation. Invalid confidentiality values are ignored, not rejected.
type PropertyOverrides struct {
	Confidentiality string
	Programs        []string
}

// FromDirectory maps a directory profile to reconciliation attributes. The
// email address is derived from the login name and domain.
func FromDirectory(p *directory.Profile) Attributes {
	return Attributes{
		Username:       p.Username,
		Email:          p.Username + "@" + p.Domain,
		DisplayName:    p.DisplayName,
		OfficeLocation: p.OfficeLocation,
		EmployeeID:     p.EmployeeID,
		Department:     p.Department,
		JobTitle:       p.JobTitle,
	}
}

// FromDelegated maps a Graph profile to reconciliation attributes.
func FromDelegated(p *entra.Profile) Attributes {
	return Attributes{
		Username:       p.Username,
		Email:          p.Mail,
		DisplayName:    p.DisplayName,
		OfficeLocation: p.OfficeLocation,
		EmployeeID:     p.EmployeeID,
		Department:     p.Department,
		JobTitle:       p.JobTitle,
	}
}

// Service provides user reconciliation, grant resolution and role
// provisioning on top of the persistence layer.
type Service struct {
	db *gorm.DB
}

// NewService creates a new user service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Reconcile creates or updates the local user record for an externally
// authenticated profile. Profile fields are overwritten on every call and
// the region is always recomputed from the office location; settings and
// custom properties survive updates. A lost create race against a
// concurrent login for the same username degrades into an update.
func (s *Service) Reconcile(ctx context.Context, attrs Attributes, overrides *PropertyOverrides) (*models.User, error) {
	username := strings.ToLower(strings.TrimSpace(attrs.Username))
	email := strings.ToLower(strings.TrimSpace(attrs.Email))

	if username == "" {
		return nil, errors.New("username must not be empty")
	}

	user, err := s.findByUsername(ctx, s.db, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		created, createErr := s.create(ctx, s.db, username, email, attrs, overrides)
		if createErr == nil {
			return created, nil
		}

		if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
			return nil, createErr
		}

		// Lost the create race; the winner's record exists now.
		user, err = s.findByUsername(ctx, s.db, username)
		if err != nil {
			return nil, err
		}
	}

	return s.update(ctx, user, email, attrs, overrides)
}

func (s *Service) findByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	var user models.User

	err := tx.WithContext(ctx).
		Preload("AppSettings").
		Preload("CustomProperties").
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to query user %q: %w", username, err)
	}

	return &user, nil
}

func (s *Service) create(ctx context.Context, tx *gorm.DB, username, email string, attrs Attributes, overrides *PropertyOverrides) (*models.User, error) {
	user := &models.User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		DisplayName:    attrs.DisplayName,
		OfficeLocation: attrs.OfficeLocation,
		EmployeeID:     attrs.EmployeeID,
		Department:     attrs.Department,
		JobTitle:       attrs.JobTitle,
	}

	user.AppSettings = models.DefaultAppSettings(user.ID)
	user.CustomProperties = models.CustomProperties{
		UserID:          user.ID,
		Confidentiality: confidentialityFor(models.ConfidentialityClass1, overrides),
		Region:          models.RegionOfOffice(attrs.OfficeLocation),
		Programs:        normalizePrograms(overrides),
	}

	if err := tx.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", username, err)
	}

	return user, nil
}

func (s *Service) update(ctx context.Context, user *models.User, email string, attrs Attributes, overrides *PropertyOverrides) (*models.User, error) {
	user.Email = email
	user.DisplayName = attrs.DisplayName
	user.OfficeLocation = attrs.OfficeLocation
	user.EmployeeID = attrs.EmployeeID
	user.Department = attrs.Department
	user.JobTitle = attrs.JobTitle

	if user.AppSettings.UserID == "" {
		user.AppSettings = models.DefaultAppSettings(user.ID)
	}

	user.CustomProperties.UserID = user.ID
	user.CustomProperties.Region = models.RegionOfOffice(attrs.OfficeLocation)
	user.CustomProperties.Confidentiality = confidentialityFor(user.CustomProperties.Confidentiality, overrides)

	if overrides != nil && overrides.Programs != nil {
		user.CustomProperties.Programs = normalizePrograms(overrides)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return fmt.Errorf("failed to update user %q: %w", user.Username, err)
		}

		if err := tx.Save(&user.AppSettings).Error; err != nil {
			return fmt.Errorf("failed to update app settings: %w", err)
		}

		if err := tx.Save(&user.CustomProperties).Error; err != nil {
			return fmt.Errorf("failed to update custom properties: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// confidentialityFor keeps current unless the override names a valid class.
func confidentialityFor(current string, overrides *PropertyOverrides) string {
	if overrides != nil && models.ValidConfidentiality(overrides.Confidentiality) {
		return overrides.Confidentiality
	}

	if current == "" {
		return models.ConfidentialityClass1
	}

	return current
}

// normalizePrograms trims entries, drops empty ones and removes duplicates
// while preserving order.
func normalizePrograms(overrides *PropertyOverrides) models.StringList {
	if overrides == nil || len(overrides.Programs) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(overrides.Programs))
	programs := make(models.StringList, 0, len(overrides.Programs))

	for _, program := range overrides.Programs {
		program = strings.TrimSpace(program)
		if program == "" || seen[program] {
			continue
		}

		seen[program] = true
		programs = append(programs, program)
	}

	return programs
}
