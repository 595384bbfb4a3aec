package models

import "time"

// Click represents one successful resolution of an alias.
// Rows are append-only; the alias reference is a plain foreign key.
type Click struct {
	ID uint `gorm:"primaryKey"`

	// AliasID is the foreign key referencing the resolved Alias
	AliasID uint  `gorm:"not null;index"`
	Alias   Alias `gorm:"foreignKey:AliasID"`

	// OccurredAt is indexed for the hour/day window aggregation
	OccurredAt time.Time `gorm:"not null;index"`

	UserAgent string `gorm:"size:255"`
	IPAddress string `gorm:"size:50"`
}

// ClickMeta carries the request details stored alongside a click.
type ClickMeta struct {
	UserAgent string
	IPAddress string
}
