package models

import (
	"time"

	"databank/internal/authz"
)

type User struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	HashedPassword string     `json:"-"` // never leaves the service layer
	Role           authz.Role `json:"role"`
	CreatedAt      time.Time  `json:"createdAt"`
	ConfirmedAt    *time.Time `json:"confirmedAt"`
	VerifiedAt     *time.Time `json:"verifiedAt"`

	ConfirmEmailInfo *ConfirmEmailInfo `json:"-"`
}

// Public returns a copy without the password hash and the pending code.
func (u *User) Public() *User {
	cp := *u
	cp.HashedPassword = ""
	cp.ConfirmEmailInfo = nil
	return &cp
}

func (u *User) IsConfirmed() bool { return u.ConfirmedAt != nil }

func (u *User) IsVerified() bool { return u.VerifiedAt != nil }

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateAccountRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
}

type VerifyAccountRequest struct {
	Code int `json:"code" binding:"required"`
}

type AuthPayload struct {
	AccessToken string `json:"accessToken"`
}
