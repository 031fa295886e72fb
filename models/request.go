package models

import "time"

const (
	RequestPending   = "PENDING"
	RequestAccepted  = "ACCEPTED"
	RequestRejected  = "REJECTED"
	RequestCompleted = "COMPLETED"
)

type Request struct {
	ID                   uint       `gorm:"column:id;primaryKey" json:"id"`
	CustomerClerkID      string     `gorm:"column:customer_clerk_id;index" json:"customer_clerk_id"`
	RagpickerClerkID     string     `gorm:"column:ragpicker_clerk_id;index" json:"ragpicker_clerk_id"`
	Status               string     `gorm:"column:status" json:"status"`
	SmartContractAddress *string    `gorm:"column:smart_contract_address" json:"smart_contract_address"`
	CreatedAt            time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt            *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Request) TableName() string { return "requests" }
