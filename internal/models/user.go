// Package models contains the marketplace's domain records and error types.
package models

import (
	"strings"
	"time"
)

// Role distinguishes regular students from moderators.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User is a marketplace member. Users are seeded and never created or deleted at runtime.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id" yaml:"id"`
	FirstName    string    `gorm:"not null" json:"first_name" yaml:"first_name"`
	LastName     string    `gorm:"not null" json:"last_name" yaml:"last_name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email" yaml:"email"`
	Role         Role      `gorm:"type:varchar(16);default:'student'" json:"role" yaml:"role"`
	ProfileImage string    `json:"profile_image" yaml:"profile_image"`
	Verified     bool      `gorm:"default:false" json:"verified" yaml:"verified"`
	Rating       float64   `json:"rating" yaml:"rating"`
	ReviewCount  int       `json:"review_count" yaml:"review_count"`
	Bio          string    `gorm:"type:text" json:"bio" yaml:"bio"`
	University   string    `json:"university" yaml:"university"`
	Year         string    `json:"year" yaml:"year"`
	Major        string    `json:"major" yaml:"major"`
	JoinedAt     time.Time `json:"joined_at" yaml:"joined_at"`
}

// FullName joins the name parts the way the UI shows them.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdmin reports whether the user may moderate.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ProfilePatch carries the editable profile fields. Nil fields are left untouched.
type ProfilePatch struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	ProfileImage *string `json:"profile_image"`
	Bio          *string `json:"bio"`
	Year         *string `json:"year"`
	Major        *string `json:"major"`
}

// Apply merges the non-nil fields into u.
func (p ProfilePatch) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.ProfileImage != nil {
		u.ProfileImage = *p.ProfileImage
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Year != nil {
		u.Year = *p.Year
	}
	if p.Major != nil {
		u.Major = *p.Major
	}
}
