package models

import (
	"time"
)

// UserType defines the two kinds of marketplace accounts
type UserType string

const (
	UserFarmer UserType = "farmer"
	UserBuyer  UserType = "buyer"
)

// ParseUserType reports whether s names a known user type
func ParseUserType(s string) (UserType, bool) {
	switch t := UserType(s); t {
	case UserFarmer, UserBuyer:
		return t, true
	}
	return "", false
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	UserType     UserType  `json:"user_type" gorm:"not null;<-:create"`
	FullName     string    `json:"full_name" gorm:"not null"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
}
