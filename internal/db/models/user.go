package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// User represents a local identity record. Users are created on first
// successful external authentication (directory or Entra) and their profile
// fields are overwritten on every subsequent one; settings and custom
// properties survive re-authentication.
type User struct {
	// ID is the stable unique identifier (UUID).
	ID string `gorm:"primaryKey;size:36"`
	// Username is the normalized (lowercase) unique login name.
	Username string `gorm:"uniqueIndex;size:100;not null"`
	// Email is the normalized (lowercase) unique email address.
	Email string `gorm:"uniqueIndex;size:255;not null"`
	// DisplayName is the directory display name.
	DisplayName string `gorm:"size:255"`
	// OfficeLocation is the office name as reported by the directory.
	OfficeLocation string `gorm:"size:255"`
	// EmployeeID is the employer-assigned identifier.
	EmployeeID string `gorm:"size:100"`
	// Department is the organizational unit.
	Department string `gorm:"size:255"`
	// JobTitle is the position name.
	JobTitle string `gorm:"size:255"`

	// AppSettings holds per-user presentation preferences.
	AppSettings AppSettings `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// CustomProperties holds derived and administratively set attributes.
	CustomProperties CustomProperties `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	// Roles are the roles assigned to this user.
	Roles []Role `gorm:"many2many:user_roles"`
	// Applications are the applications this user is associated with.
	Applications []Application `gorm:"many2many:user_applications"`
	// Claims are individually granted permission claims.
	Claims []UserClaim `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	// CreatedAt is the creation timestamp (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the last update timestamp (managed by GORM).
	UpdatedAt time.Time
}

// AppSettings holds a user's presentation preferences.
type AppSettings struct {
	UserID string `gorm:"primaryKey;size:36"`
	// PreferredLanguageCode is an ISO 639-1 language code.
	PreferredLanguageCode string `gorm:"size:8;not null;default:'en'"`
	// PreferredColorThemeCode selects the UI color theme.
	PreferredColorThemeCode string `gorm:"size:16;not null;default:'light'"`
}

// TableName overrides GORM's default pluralized table naming.
func (AppSettings) TableName() string {
	return "user_app_settings"
}

// DefaultAppSettings returns the settings applied to a new user.
func DefaultAppSettings(userID string) AppSettings {
	return AppSettings{
		UserID:                  userID,
		PreferredLanguageCode:   LanguageEnglish,
		PreferredColorThemeCode: ThemeLight,
	}
}

// CustomProperties holds derived and administratively set user attributes.
// Region is recomputed from the office location on every reconciliation and
// is never accepted from callers or trusted from stored state.
type CustomProperties struct {
	UserID string `gorm:"primaryKey;size:36"`
	// Confidentiality is one of the enumerated confidentiality classes.
	Confidentiality string `gorm:"size:16;not null;default:'Class 1'"`
	// Region is derived from OfficeLocation.
	Region string `gorm:"size:16"`
	// Programs is a freeform list of program names.
	Programs StringList `gorm:"type:text"`
}

// TableName overrides GORM's default pluralized table naming.
func (CustomProperties) TableName() string {
	return "user_custom_properties"
}

// UserClaim is a permission claim granted to a single user, independent of
// any role (value form "user.<tool>.<privilege>").
type UserClaim struct {
	ID     uint   `gorm:"primaryKey"`
	UserID string `gorm:"size:36;not null;uniqueIndex:idx_user_claim,priority:1"`
	// Value is the full claim value.
	Value string `gorm:"size:255;not null;uniqueIndex:idx_user_claim,priority:2"`

	CreatedAt time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (UserClaim) TableName() string {
	return "user_claims"
}

// StringList stores a slice of strings as a JSON column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}

	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to encode string list: %w", err)
	}

	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}

	var raw []byte

	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported string list source type %T", src)
	}

	if len(raw) == 0 {
		*l = nil
		return nil
	}

	if err := json.Unmarshal(raw, l); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}

	return nil
}
