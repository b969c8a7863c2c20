package models

import (
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"` // admin, user
	RefreshToken string    `json:"-"`
	ResetOTPHash string    `json:"-"`
	ResetOTPExp  time.Time `json:"-"`
	Created      time.Time `json:"created"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
