package models

import "time"

type ReportType string

const (
	ReportTypeListing ReportType = "listing"
	ReportTypeUser    ReportType = "user"
)

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// Report is a moderation flag raised against a listing or a user. Reports are seeded only.
type Report struct {
	ID         uint         `gorm:"primaryKey" json:"id" yaml:"id"`
	ReporterID uint         `gorm:"not null;index" json:"reporter_id" yaml:"reporter_id"`
	Type       ReportType   `gorm:"type:varchar(16);not null" json:"type" yaml:"type"`
	TargetID   uint         `gorm:"not null" json:"target_id" yaml:"target_id"`
	Reason     string       `gorm:"type:text" json:"reason" yaml:"reason"`
	Status     ReportStatus `gorm:"type:varchar(16);default:'pending';index" json:"status" yaml:"status"`
	CreatedAt  time.Time    `json:"created_at" yaml:"created_at"`
}
