package models

import "time"

// InactiveReason records why an alias stopped being servable.
type InactiveReason string

const (
	ReasonNone        InactiveReason = ""
	ReasonExpired     InactiveReason = "expired"
	ReasonDeactivated InactiveReason = "deactivated"
)

// AliasState is the lifecycle state of an alias, derived at read time.
type AliasState int

const (
	StateActive AliasState = iota
	StateExpired
	StateDeactivated
)

func (s AliasState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	case StateDeactivated:
		return "deactivated"
	default:
		return "unknown"
	}
}

// Alias is a shortened link stored in the database.
// Code is the bare token; the public URL is composed from the configured base URL.
type Alias struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Code           string         `gorm:"uniqueIndex:idx_aliases_code;size:16;not null" json:"code"`
	TargetURL      string         `gorm:"size:2048;not null" json:"target_url"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	ExpiresAt      time.Time      `gorm:"not null;index" json:"expires_at"`
	IsActive       bool           `gorm:"not null;default:true;index" json:"is_active"`
	InactiveReason InactiveReason `gorm:"size:16;not null;default:''" json:"inactive_reason,omitempty"`
	DeactivatedAt  *time.Time     `json:"deactivated_at,omitempty"`
}

// StateAt derives the lifecycle state of the alias at now.
// An active alias past its expiry reports StateExpired before it has been flipped.
func (a *Alias) StateAt(now time.Time) AliasState {
	if a.IsActive {
		if now.After(a.ExpiresAt) {
			return StateExpired
		}
		return StateActive
	}
	if a.InactiveReason == ReasonExpired {
		return StateExpired
	}
	return StateDeactivated
}

// NeedsExpiryFlip reports whether the alias is still flagged active but has expired.
func (a *Alias) NeedsExpiryFlip(now time.Time) bool {
	return a.IsActive && now.After(a.ExpiresAt)
}

// AliasStats holds the windowed click counts of one alias.
type AliasStats struct {
	Code           string `gorm:"column:code"`
	TargetURL      string `gorm:"column:target_url"`
	LastHourClicks int64  `gorm:"column:last_hour_clicks"`
	LastDayClicks  int64  `gorm:"column:last_day_clicks"`
}
