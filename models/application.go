package models

import "time"

const (
	ApplicationPending  = "PENDING"
	ApplicationAccepted = "ACCEPTED"
	ApplicationRejected = "REJECTED"
)

// RagpickerApplication records an application to become a ragpicker.
// DocumentURL points at an externally stored document; this service
// never touches the object store itself.
type RagpickerApplication struct {
	ID          uint       `gorm:"column:id;primaryKey" json:"id"`
	ClerkID     string     `gorm:"column:clerk_id;index" json:"clerk_id"`
	DocumentURL string     `gorm:"column:document_url" json:"document_url"`
	Notes       string     `gorm:"column:notes" json:"notes"`
	Status      string     `gorm:"column:status;default:PENDING" json:"status"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (RagpickerApplication) TableName() string { return "ragpicker_applications" }
