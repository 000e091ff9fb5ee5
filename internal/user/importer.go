package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/corpauth/corpauth/internal/db/models"
	"github.com/corpauth/corpauth/internal/directory"
	"github.com/corpauth/corpauth/internal/rolename"
)

// DirectoryFinder looks up a directory profile without authenticating.
type DirectoryFinder interface {
	FindByUsername(ctx context.Context, username, domain string) *directory.Profile
}

// ImportEntry describes one user to import and the roles to assign.
type ImportEntry struct {
	Username string   `json:"username" validate:"required"`
	Domain   string   `json:"domain" validate:"required"`
	Roles    []string `json:"roles"`
}

// ImportSummary accumulates per-entry outcomes of a bulk import.
type ImportSummary struct {
	Created int
	Skipped int
	Errors  []ImportError
}

// ImportError records why a single entry could not be imported.
type ImportError struct {
	Username string
	Reason   string
}

// Importer performs bulk user imports: each entry is looked up in the
// directory, created locally and linked to its roles inside one
// transaction. Existing users are skipped, failed entries are recorded and
// never abort the batch.
type Importer struct {
	users    *Service
	finder   DirectoryFinder
	validate *validator.Validate
}

// NewImporter creates a new importer.
func NewImporter(users *Service, finder DirectoryFinder) *Importer {
	return &Importer{users: users, finder: finder, validate: validator.New()}
}

// Import processes all entries and returns the accumulated summary.
func (i *Importer) Import(ctx context.Context, entries []ImportEntry) *ImportSummary {
	summary := &ImportSummary{}

	for _, entry := range entries {
		if err := i.importOne(ctx, entry, summary); err != nil {
			log.Error().Err(err).Str("username", entry.Username).Msg("User import failed")
			summary.Errors = append(summary.Errors, ImportError{
				Username: entry.Username,
				Reason:   err.Error(),
			})
		}
	}

	return summary
}

func (i *Importer) importOne(ctx context.Context, entry ImportEntry, summary *ImportSummary) error {
	if err := i.validate.Struct(entry); err != nil {
		return fmt.Errorf("invalid import entry: %w", err)
	}

	username := strings.ToLower(strings.TrimSpace(entry.Username))
	if username == "" {
		return errors.New("username must not be empty")
	}

	_, err := i.users.findByUsername(ctx, i.users.db, username)
	if err == nil {
		summary.Skipped++
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// Validate all role names before touching the directory.
	for _, roleName := range entry.Roles {
		if _, _, err := rolename.Parse(roleName); err != nil {
			return err
		}
	}

	profile := i.finder.FindByUsername(ctx, username, entry.Domain)
	if profile == nil {
		return fmt.Errorf("user %q not found in directory %q", username, entry.Domain)
	}

	attrs := FromDirectory(profile)

	err = i.users.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := i.users.create(ctx, tx, username, strings.ToLower(attrs.Email), attrs, nil)
		if err != nil {
			return err
		}

		for _, roleName := range entry.Roles {
			if err := ensureRole(tx, roleName); err != nil {
				return err
			}

			if err := assignRole(tx, created, roleName); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	summary.Created++

	return nil
}

// ensureRole creates the role and its claims if no role with that name
// exists yet.
func ensureRole(tx *gorm.DB, roleName string) error {
	tool, accessLevel, err := rolename.Parse(roleName)
	if err != nil {
		return err
	}

	var count int64
	if err := tx.Model(&models.Role{}).Where("name = ?", roleName).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check role %q: %w", roleName, err)
	}

	if count > 0 {
		return nil
	}

	_, err = createRole(tx, tool, accessLevel)

	return err
}
