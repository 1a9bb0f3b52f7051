package models

import "time"

const RoleAdmin = "admin"

// Badge values granted by package payments.
const (
	BadgeSilver   = "Silver"
	BadgeGold     = "Gold"
	BadgePlatinum = "Platinum"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	Name      string    `gorm:"index" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Image     string    `json:"image,omitempty"`
	Role      string    `gorm:"size:16" json:"role,omitempty"`
	Badge     string    `gorm:"size:16" json:"badge,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsPremium reports whether the user holds any paid badge.
func (u *User) IsPremium() bool {
	switch u.Badge {
	case BadgeSilver, BadgeGold, BadgePlatinum:
		return true
	}
	return false
}
