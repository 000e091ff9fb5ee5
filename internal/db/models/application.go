package models

import "time"

// Application is a registered client application. Its client identifier is
// derived 1:1 from the owning tool's PascalCase name via kebab-case
// conversion and is used as the stable external identifier.
type Application struct {
	// ID is the unique identifier for the application.
	ID uint `gorm:"primaryKey"`
	// ClientID is the kebab-case external client identifier.
	ClientID string `gorm:"uniqueIndex;size:100;not null"`
	// DisplayName is the PascalCase tool name the client id was derived from.
	DisplayName string `gorm:"size:100;not null"`

	// CreatedAt is the creation timestamp (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the last update timestamp (managed by GORM).
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (Application) TableName() string {
	return "applications"
}
