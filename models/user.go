package models

import "time"

const (
	RoleCustomer  = "CUSTOMER"
	RoleRagpicker = "RAGPICKER"
)

type User struct {
	ClerkID   string    `gorm:"column:clerk_id;primaryKey" json:"clerk_id"`
	Email     string    `gorm:"column:email;uniqueIndex" json:"email"`
	FirstName string    `gorm:"column:first_name" json:"first_name"`
	LastName  string    `gorm:"column:last_name" json:"last_name"`
	Role      string    `gorm:"column:role" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (User) TableName() string { return "users" }

type UserDetails struct {
	ClerkID       string `gorm:"column:clerk_id;primaryKey" json:"clerk_id"`
	Phone         string `gorm:"column:phone" json:"phone"`
	Address       string `gorm:"column:address" json:"address"`
	Bio           string `gorm:"column:bio" json:"bio"`
	ProfilePicURL string `gorm:"column:profile_pic_url" json:"profile_pic_url"`
}

func (UserDetails) TableName() string { return "user_details" }

type CustomerDetails struct {
	ClerkID       string `gorm:"column:clerk_id;primaryKey" json:"clerk_id"`
	WalletAddress string `gorm:"column:wallet_address" json:"wallet_address"`
}

func (CustomerDetails) TableName() string { return "customer_details" }

// RagpickerDetails carries the RFID binding: when set, an RFID tag maps
// to exactly one ragpicker. AverageRating is recomputed on review writes
// and stored as 0 when no reviews exist, never NULL.
type RagpickerDetails struct {
	ClerkID       string  `gorm:"column:clerk_id;primaryKey" json:"clerk_id"`
	WalletAddress string  `gorm:"column:wallet_address" json:"wallet_address"`
	RFID          *string `gorm:"column:rfid;uniqueIndex" json:"rfid"`
	AverageRating float64 `gorm:"column:average_rating;default:0" json:"average_rating"`
}

func (RagpickerDetails) TableName() string { return "ragpicker_details" }
