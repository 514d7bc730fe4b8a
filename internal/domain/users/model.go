package users

import (
	"strings"
	"time"
)

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"

	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID           string  `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email" bson:"email" json:"email"`
	Name         string  `gorm:"not null" bson:"name" json:"name"`
	PasswordHash string  `gorm:"column:password_hash" bson:"password_hash" json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'patient'" bson:"role" json:"role"`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'" bson:"auth_provider" json:"authProvider"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub" bson:"google_sub,omitempty" json:"-"`

	Firstname *string `bson:"firstname,omitempty" json:"firstname"`
	Lastname  *string `bson:"lastname,omitempty" json:"lastname"`
	Image     *string `bson:"image,omitempty" json:"image"`

	// ResetTokenHash is the SHA-256 of the pending reset token, empty when none is pending.
	ResetTokenHash string     `gorm:"column:reset_token_hash;index:idx_users_reset_token_hash" bson:"reset_token_hash" json:"-"`
	ResetExpiresAt *time.Time `gorm:"column:reset_expires_at" bson:"reset_expires_at,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Redacted returns a copy without credential material.
func (u *User) Redacted() *User {
	c := *u
	c.PasswordHash = ""
	c.ResetTokenHash = ""
	c.ResetExpiresAt = nil
	return &c
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsSelfAssignableRole reports whether a registering user may pick the role.
func IsSelfAssignableRole(role string) bool {
	return role == RolePatient || role == RoleDoctor
}
