package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"waste-whirl-api/models"

	"gorm.io/gorm"
)

// ReviewService creates reviews and keeps RagpickerDetails.AverageRating in
// step at write time, so read paths never have to default a missing rating.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

func (s *ReviewService) Create(ctx context.Context, customerID, ragpickerID string, rating float64, text string) (*models.Review, error) {
	if rating < 0 || rating > 5 {
		return nil, fmt.Errorf("%w: rating %.1f out of range", ErrConflict, rating)
	}

	review := models.Review{
		CustomerClerkID:  customerID,
		RagpickerClerkID: ragpickerID,
		Rating:           rating,
		Review:           text,
		CreatedAt:        time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var picker models.RagpickerDetails
		err := tx.Where("clerk_id = ?", ragpickerID).First(&picker).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: ragpicker %s", ErrNotFound, ragpickerID)
		}
		if err != nil {
			return err
		}

		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		var avg float64
		err = tx.Model(&models.Review{}).
			Where("ragpicker_clerk_id = ?", ragpickerID).
			Select("COALESCE(AVG(rating), 0)").
			Scan(&avg).Error
		if err != nil {
			return err
		}

		picker.AverageRating = avg
		return tx.Save(&picker).Error
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) ListForRagpicker(ctx context.Context, ragpickerID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Where("ragpicker_clerk_id = ?", ragpickerID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
