package services

import (
	"errors"
	"fmt"
	"log"

	"waste-whirl-api/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	settlementsPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastewhirl_settlements_paid_total",
		Help: "Total number of bin collections settled with a payout.",
	})
	settlementsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastewhirl_settlements_skipped_total",
		Help: "Total number of settlements skipped (missing data or insufficient company funds).",
	})
)

// SettlementResult reports the terminal outcome of a settlement attempt.
// A skipped settlement is a valid outcome, not an error: the bin-empty
// transition already succeeded and must stay that way.
type SettlementResult struct {
	Paid             bool
	Reason           string
	RagpickerClerkID string
	Amount           float64
	NewBalance       float64
}

// SettlementService moves the fixed payout amount from the sensor's owning
// company to the ragpicker whose RFID is on the emptied log entry. It is the
// only place balances change because of a collection event.
type SettlementService struct {
	ledger *LedgerService
	payout float64
}

func NewSettlementService(ledger *LedgerService, payout float64) *SettlementService {
	return &SettlementService{ledger: ledger, payout: payout}
}

// Settle runs inside the caller's transaction so the company debit and the
// ragpicker credit commit atomically with the status flip that triggered
// them. Skips are logged and counted so unpaid work stays observable.
func (s *SettlementService) Settle(tx *gorm.DB, sensor *models.Sensor, event *models.SensorLog) (*SettlementResult, error) {
	if event.RFID == nil {
		settlementsSkipped.Inc()
		log.Printf("settlement skipped: sensor=%s log=%d has no RFID", sensor.SensorID, event.ID)
		return &SettlementResult{Reason: "no RFID on log entry"}, nil
	}

	var picker models.RagpickerDetails
	err := tx.Where("rfid = ?", *event.RFID).First(&picker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settlementsSkipped.Inc()
		log.Printf("settlement skipped: sensor=%s rfid=%s not registered", sensor.SensorID, *event.RFID)
		return &SettlementResult{Reason: "RFID not registered"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve rfid: %w", err)
	}

	if sensor.CompanyID == nil {
		settlementsSkipped.Inc()
		log.Printf("settlement skipped: sensor=%s has no owning company", sensor.SensorID)
		return &SettlementResult{Reason: "sensor has no owning company"}, nil
	}

	var company models.CompanyBalance
	err = tx.Where("id = ?", *sensor.CompanyID).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settlementsSkipped.Inc()
		log.Printf("settlement skipped: sensor=%s company=%d not found", sensor.SensorID, *sensor.CompanyID)
		return &SettlementResult{Reason: "company balance not found"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load company balance: %w", err)
	}

	// Guarded decrement: the balance check and the debit are one statement,
	// so a concurrent settlement against the same company cannot overdraw.
	res := tx.Model(&models.CompanyBalance{}).
		Where("id = ? AND balance >= ?", company.ID, s.payout).
		Update("balance", gorm.Expr("balance - ?", s.payout))
	if res.Error != nil {
		return nil, fmt.Errorf("debit company %d: %w", company.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		settlementsSkipped.Inc()
		log.Printf("settlement skipped: sensor=%s company=%d balance %.2f below payout %.2f",
			sensor.SensorID, company.ID, company.Balance, s.payout)
		return &SettlementResult{Reason: "insufficient company funds"}, nil
	}

	newBalance, err := s.ledger.Credit(tx, picker.ClerkID, s.payout)
	if err != nil {
		return nil, err
	}

	settlementsPaid.Inc()
	log.Printf("settlement paid: sensor=%s ragpicker=%s amount=%.2f new_balance=%.2f",
		sensor.SensorID, picker.ClerkID, s.payout, newBalance)

	return &SettlementResult{
		Paid:             true,
		RagpickerClerkID: picker.ClerkID,
		Amount:           s.payout,
		NewBalance:       newBalance,
	}, nil
}
