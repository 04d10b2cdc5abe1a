package models

import (
	"strings"
	"time"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

type User struct {
	ID        uint   `gorm:"primaryKey"             json:"id"`
	FirstName string `gorm:"not null;size:50"       json:"first_name"`
	LastName  string `gorm:"size:50"                json:"last_name"`
	Email     string `gorm:"uniqueIndex;not null;size:100" json:"email"`
	Phone     string `gorm:"size:20"                json:"phone"`
	Address   string `gorm:"size:255"               json:"address"`
	Status    string `gorm:"not null;default:ACTIVE" json:"status"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
