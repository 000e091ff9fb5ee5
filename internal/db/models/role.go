package models

import "time"

// Role is a named grant of the form "Tool.AccessLevel". Its permission
// claims are fully determined by the name and are created together with the
// role; they are never edited independently.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the unique role name (e.g. "AzureBlobStorage.Reader").
	Name string `gorm:"uniqueIndex;size:100;not null"`
	// Tool is the PascalCase tool half of the name.
	Tool string `gorm:"size:100;not null"`
	// AccessLevel is the access-level half of the name.
	AccessLevel string `gorm:"size:32;not null"`

	// Claims are the permission claims derived from the role name.
	Claims []RoleClaim `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`

	// CreatedAt is the creation timestamp (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the last update timestamp (managed by GORM).
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}

// RoleClaim is one permission claim carried by a role
// (value form "role.<kebab-tool>.<permission>").
type RoleClaim struct {
	ID     uint `gorm:"primaryKey"`
	RoleID uint `gorm:"not null;uniqueIndex:idx_role_claim,priority:1"`
	// Value is the full claim value.
	Value string `gorm:"size:255;not null;uniqueIndex:idx_role_claim,priority:2"`
}

// TableName overrides GORM's default pluralized table naming.
func (RoleClaim) TableName() string {
	return "role_claims"
}
