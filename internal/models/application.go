package models

import "time"

// ApplicationStatus is the review state of an application.
type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusDeclined  ApplicationStatus = "declined"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"
)

// Valid reports whether s is one of the known application states.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusAccepted, ApplicationStatusDeclined, ApplicationStatusWithdrawn:
		return true
	}
	return false
}

// Application is a request by a student to sublet a listing for a date range.
type Application struct {
	ID            uint              `gorm:"primaryKey" json:"id" yaml:"id"`
	ListingID     uint              `gorm:"not null;index" json:"listing_id" yaml:"listing_id"`
	ApplicantID   uint              `gorm:"not null;index" json:"applicant_id" yaml:"applicant_id"`
	RequestedFrom time.Time         `json:"requested_from" yaml:"requested_from"`
	RequestedTo   time.Time         `json:"requested_to" yaml:"requested_to"`
	Message       string            `gorm:"type:text" json:"message" yaml:"message"`
	Status        ApplicationStatus `gorm:"type:varchar(16);default:'pending';index" json:"status" yaml:"status"`
	CreatedAt     time.Time         `json:"created_at" yaml:"created_at"`
}

// ApplicationDraft is the applicant-supplied part of an application.
type ApplicationDraft struct {
	ListingID     uint      `json:"listing_id"`
	RequestedFrom time.Time `json:"requested_from"`
	RequestedTo   time.Time `json:"requested_to"`
	Message       string    `json:"message"`
}
