// Package model contains the database entities used across the application
package model

import "time"

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// User is one account. Email uniqueness only applies to verified
// accounts (up to 3 unverified registrations may coexist for the same
// address), so there's no unique index on the column itself.
type User struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"index;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"default:User"`

	AccountVerified        bool       `gorm:"default:false"`
	VerificationCode       *int64     `json:"-"`
	VerificationCodeExpire *time.Time `json:"-"`

	ResetPasswordToken  *string    `json:"-"` // sha256 digest, never the raw token
	ResetPasswordExpire *time.Time `json:"-"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Borrows []Borrow `gorm:"foreignKey:UserID" json:"-"`
}
