package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is one user's rating of another.
type Review struct {
	ID             uint      `gorm:"primaryKey" json:"id" yaml:"id"`
	ReviewerID     uint      `gorm:"not null;index" json:"reviewer_id" yaml:"reviewer_id"`
	ReviewedUserID uint      `gorm:"not null;index" json:"reviewed_user_id" yaml:"reviewed_user_id"`
	Rating         int       `gorm:"not null" json:"rating" yaml:"rating"`
	Comment        string    `gorm:"type:text" json:"comment" yaml:"comment"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
}

type ReviewDraft struct {
	ReviewedUserID uint   `json:"reviewed_user_id"`
	Rating         int    `json:"rating"`
	Comment        string `json:"comment"`
}
