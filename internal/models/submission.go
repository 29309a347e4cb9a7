package models

import (
	"time"

	"gorm.io/gorm"
)

// Submission kinds.
const (
	SubmissionContact = "contact"
	SubmissionRFQ     = "rfq"
)

// Submission is a persisted contact or request-for-quote form submission.
type Submission struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ConfirmationID string         `gorm:"uniqueIndex;not null" json:"confirmation_id"`
	Kind           string         `gorm:"not null;index" json:"kind"`
	Locale         string         `gorm:"not null" json:"locale"`
	Name           string         `gorm:"not null" json:"name"`
	Email          string         `gorm:"not null" json:"email"`
	Phone          string         `json:"phone,omitempty"`
	Company        string         `json:"company,omitempty"`
	Message        string         `gorm:"type:text" json:"message"`
	Material       string         `json:"material,omitempty"`
	Process        string         `json:"process,omitempty"`
	Quantity       int            `json:"quantity,omitempty"`
	ThicknessMM    float64        `json:"thickness_mm,omitempty"`
	Attachments    []Attachment   `gorm:"foreignKey:SubmissionID" json:"attachments,omitempty"`
	ClientIP       string         `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// Attachment records metadata of an accepted upload. Only metadata is
// stored; file bytes are discarded after validation.
type Attachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"-"`
	Filename     string    `gorm:"not null" json:"filename"`
	MediaType    string    `gorm:"not null" json:"media_type"`
	SizeBytes    int64     `gorm:"not null" json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}
