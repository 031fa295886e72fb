package services

import (
	"context"
	"errors"
	"testing"

	"waste-whirl-api/models"
)

func TestCreateReviewUpdatesAverageRating(t *testing.T) {
	db := newTestDB(t)
	seedCollection(t, db, 0)
	svc := NewReviewService(db)

	if _, err := svc.Create(context.Background(), "customer_1", "picker_1", 4, "quick pickup"); err != nil {
		t.Fatalf("create review: %v", err)
	}
	if _, err := svc.Create(context.Background(), "customer_2", "picker_1", 2, "late"); err != nil {
		t.Fatalf("create review: %v", err)
	}

	var picker models.RagpickerDetails
	if err := db.Where("clerk_id = ?", "picker_1").First(&picker).Error; err != nil {
		t.Fatalf("load ragpicker: %v", err)
	}
	if picker.AverageRating != 3 {
		t.Errorf("expected average rating 3, got %.2f", picker.AverageRating)
	}
}

func TestReviewForUnknownRagpickerRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	_, err := svc.Create(context.Background(), "customer_1", "ghost", 5, "great")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var count int64
	db.Model(&models.Review{}).Count(&count)
	if count != 0 {
		t.Errorf("review row created for unknown ragpicker")
	}
}

func TestReviewRatingOutOfRangeRejected(t *testing.T) {
	db := newTestDB(t)
	seedCollection(t, db, 0)
	svc := NewReviewService(db)

	for _, rating := range []float64{-1, 5.5} {
		if _, err := svc.Create(context.Background(), "customer_1", "picker_1", rating, ""); !errors.Is(err, ErrConflict) {
			t.Errorf("rating %.1f: expected ErrConflict, got %v", rating, err)
		}
	}
}

func TestListReviewsForRagpicker(t *testing.T) {
	db := newTestDB(t)
	seedCollection(t, db, 0)
	svc := NewReviewService(db)

	if _, err := svc.Create(context.Background(), "customer_1", "picker_1", 5, "spotless"); err != nil {
		t.Fatalf("create review: %v", err)
	}
	if _, err := svc.Create(context.Background(), "customer_2", "picker_1", 3, ""); err != nil {
		t.Fatalf("create review: %v", err)
	}

	reviews, err := svc.ListForRagpicker(context.Background(), "picker_1")
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(reviews) != 2 {
		t.Errorf("expected 2 reviews, got %d", len(reviews))
	}
}
