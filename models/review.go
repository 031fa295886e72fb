package models

import "time"

type Review struct {
	ID               uint      `gorm:"column:id;primaryKey" json:"id"`
	CustomerClerkID  string    `gorm:"column:customer_clerk_id;index" json:"customer_clerk_id"`
	RagpickerClerkID string    `gorm:"column:ragpicker_clerk_id;index" json:"ragpicker_clerk_id"`
	Rating           float64   `gorm:"column:rating" json:"rating"`
	Review           string    `gorm:"column:review" json:"review"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Review) TableName() string { return "reviews" }
