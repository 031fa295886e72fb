package models

// Balance holds the token balance for a customer or ragpicker. Rows are
// created on first credit/debit with an explicit zero, never NULL.
type Balance struct {
	ClerkID string  `gorm:"column:clerk_id;primaryKey" json:"clerk_id"`
	Balance float64 `gorm:"column:balance;default:0" json:"balance"`
}

func (Balance) TableName() string { return "balances" }

// CompanyBalance funds sensor-triggered payouts. CompanyPassword is a
// bcrypt hash used for the company admin login.
type CompanyBalance struct {
	ID              uint    `gorm:"column:id;primaryKey" json:"id"`
	CompanyName     string  `gorm:"column:company_name;uniqueIndex" json:"company_name"`
	CompanyPassword string  `gorm:"column:company_password" json:"-"`
	Balance         float64 `gorm:"column:balance;default:0" json:"balance"`
}

func (CompanyBalance) TableName() string { return "company_balances" }
