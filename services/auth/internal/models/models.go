package models

import (
	"strings"
	"time"
)

// AuthUser stores only authentication data. Profile fields live in the user
// service; ProfileID links the two and stays nil when the profile could not be
// created during registration (accepted eventual-consistency gap).
type AuthUser struct {
	ID           uint   `gorm:"primaryKey"               json:"id"`
	ProfileID    *uint  `gorm:"uniqueIndex"              json:"profile_id,omitempty"`
	Username     string `gorm:"uniqueIndex;not null;size:50" json:"username"`
	Email        string `gorm:"uniqueIndex;not null;size:100" json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Roles        string `gorm:"not null"                 json:"roles"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *AuthUser) RoleList() []string {
	parts := strings.Split(u.Roles, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RefreshToken is the persisted single-use secret. Only the SHA-256 of the
// client-held value is stored.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"        json:"id"`
	TokenHash string `gorm:"uniqueIndex;not null" json:"-"`
	UserID    uint   `gorm:"index;not null"    json:"user_id"`
	ExpiresAt int64  `gorm:"not null"          json:"expires_at"`
	Revoked   bool   `gorm:"default:false"     json:"revoked"`
	CreatedAt time.Time
}

func (t *RefreshToken) ExpiredOrRevoked(now time.Time) bool {
	return t.Revoked || t.ExpiresAt < now.Unix()
}
