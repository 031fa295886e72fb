package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"waste-whirl-api/models"

	"gorm.io/gorm"
)

// RequestService handles the pickup request lifecycle. Completing a request
// moves the configured transfer amount from the customer to the ragpicker
// inside one transaction.
type RequestService struct {
	db           *gorm.DB
	ledger       *LedgerService
	notifier     Notifier
	transfer     float64
	enforceFloor bool
}

func NewRequestService(db *gorm.DB, ledger *LedgerService, notifier Notifier, transfer float64, enforceFloor bool) *RequestService {
	return &RequestService{
		db:           db,
		ledger:       ledger,
		notifier:     notifier,
		transfer:     transfer,
		enforceFloor: enforceFloor,
	}
}

func (s *RequestService) Create(ctx context.Context, customerID, ragpickerID string) (*models.Request, error) {
	req := models.Request{
		CustomerClerkID:  customerID,
		RagpickerClerkID: ragpickerID,
		Status:           models.RequestPending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&req).Error; err != nil {
		return nil, err
	}

	if !s.notifier.Send(fmt.Sprintf("New garbage collection request from %s.", customerID)) {
		log.Printf("request-created notification failed for request=%d", req.ID)
	}
	return &req, nil
}

// UpdateStatus moves a request through PENDING → ACCEPTED/REJECTED →
// COMPLETED. The COMPLETED transition performs the peer-to-peer transfer.
func (s *RequestService) UpdateStatus(ctx context.Context, requestID uint, status string) (*models.Request, error) {
	switch status {
	case models.RequestAccepted, models.RequestRejected, models.RequestCompleted:
	default:
		return nil, fmt.Errorf("%w: unknown request status %q", ErrConflict, status)
	}

	var req models.Request

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", requestID).First(&req).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: request %d", ErrNotFound, requestID)
		}
		if err != nil {
			return err
		}

		if req.Status == models.RequestCompleted {
			return fmt.Errorf("%w: request %d already completed", ErrConflict, requestID)
		}

		if status == models.RequestCompleted {
			if req.Status != models.RequestAccepted {
				return fmt.Errorf("%w: request %d must be accepted before completion", ErrConflict, requestID)
			}
			if _, err := s.ledger.Debit(tx, req.CustomerClerkID, s.transfer, s.enforceFloor); err != nil {
				return err
			}
			if _, err := s.ledger.Credit(tx, req.RagpickerClerkID, s.transfer); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		req.Status = status
		req.UpdatedAt = &now
		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatus(&req)
	return &req, nil
}

func (s *RequestService) Get(ctx context.Context, requestID uint) (*models.Request, error) {
	var req models.Request
	err := s.db.WithContext(ctx).Where("id = ?", requestID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: request %d", ErrNotFound, requestID)
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListForParty returns requests where the clerk id appears on the given
// side ("customer" or "ragpicker"), optionally filtered by status.
func (s *RequestService) ListForParty(ctx context.Context, side, clerkID, status string) ([]models.Request, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	switch side {
	case "customer":
		query = query.Where("customer_clerk_id = ?", clerkID)
	case "ragpicker":
		query = query.Where("ragpicker_clerk_id = ?", clerkID)
	default:
		return nil, fmt.Errorf("unknown party side %q", side)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reqs []models.Request
	if err := query.Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func (s *RequestService) notifyStatus(req *models.Request) {
	var msg string
	switch req.Status {
	case models.RequestAccepted:
		msg = fmt.Sprintf("Request %d accepted by ragpicker %s.", req.ID, req.RagpickerClerkID)
	case models.RequestRejected:
		msg = fmt.Sprintf("Request %d was rejected. Please try another ragpicker.", req.ID)
	case models.RequestCompleted:
		msg = fmt.Sprintf("Request %d completed. %.0f tokens transferred to %s.", req.ID, s.transfer, req.RagpickerClerkID)
	default:
		return
	}
	if !s.notifier.Send(msg) {
		log.Printf("request status notification failed for request=%d", req.ID)
	}
}
