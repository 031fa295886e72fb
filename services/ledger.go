package services

import (
	"errors"
	"fmt"

	"waste-whirl-api/models"

	"gorm.io/gorm"
)

// LedgerService holds the two balance primitives. Every caller is expected
// to pass a transaction handle so both sides of a transfer commit together.
type LedgerService struct{}

func NewLedgerService() *LedgerService {
	return &LedgerService{}
}

// Credit adds amount to the party's balance, creating the row at zero first
// if it does not exist. Returns the new balance.
func (s *LedgerService) Credit(tx *gorm.DB, clerkID string, amount float64) (float64, error) {
	bal, err := s.getOrCreate(tx, clerkID)
	if err != nil {
		return 0, err
	}
	err = tx.Model(&models.Balance{}).Where("clerk_id = ?", clerkID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
	if err != nil {
		return 0, fmt.Errorf("credit %s: %w", clerkID, err)
	}
	return bal.Balance + amount, nil
}

// Debit subtracts amount from the party's balance, creating the row at zero
// first if it does not exist. When enforceFloor is set the debit fails
// instead of driving the balance negative.
func (s *LedgerService) Debit(tx *gorm.DB, clerkID string, amount float64, enforceFloor bool) (float64, error) {
	bal, err := s.getOrCreate(tx, clerkID)
	if err != nil {
		return 0, err
	}
	if enforceFloor {
		res := tx.Model(&models.Balance{}).
			Where("clerk_id = ? AND balance >= ?", clerkID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return 0, fmt.Errorf("debit %s: %w", clerkID, res.Error)
		}
		if res.RowsAffected == 0 {
			return bal.Balance, fmt.Errorf("%w: balance %.2f below debit %.2f for %s", ErrConflict, bal.Balance, amount, clerkID)
		}
		return bal.Balance - amount, nil
	}
	err = tx.Model(&models.Balance{}).Where("clerk_id = ?", clerkID).
		Update("balance", gorm.Expr("balance - ?", amount)).Error
	if err != nil {
		return 0, fmt.Errorf("debit %s: %w", clerkID, err)
	}
	return bal.Balance - amount, nil
}

// GetBalance reads a party balance; a missing row reads as zero.
func (s *LedgerService) GetBalance(db *gorm.DB, clerkID string) (float64, error) {
	var bal models.Balance
	err := db.Where("clerk_id = ?", clerkID).First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return bal.Balance, nil
}

func (s *LedgerService) getOrCreate(tx *gorm.DB, clerkID string) (*models.Balance, error) {
	var bal models.Balance
	err := tx.Where("clerk_id = ?", clerkID).First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		bal = models.Balance{ClerkID: clerkID, Balance: 0}
		if err := tx.Create(&bal).Error; err != nil {
			return nil, fmt.Errorf("create balance for %s: %w", clerkID, err)
		}
		return &bal, nil
	}
	if err != nil {
		return nil, err
	}
	return &bal, nil
}
