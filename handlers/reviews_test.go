package handlers

import (
	"net/http"
	"testing"

	"waste-whirl-api/models"
	"waste-whirl-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func newReviewsRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)

	tag := "RFID-123"
	picker := models.RagpickerDetails{ClerkID: "picker_1", RFID: &tag}
	if err := db.Create(&picker).Error; err != nil {
		t.Fatalf("seed ragpicker: %v", err)
	}

	router := gin.New()
	router.POST("/reviews", NewReviewHandler(services.NewReviewService(db)).Create)
	return router, db
}

func TestCreateReviewAcceptsZeroRating(t *testing.T) {
	router, db := newReviewsRouter(t)

	w := postJSON(t, router, "/reviews",
		`{"customer_clerk_id":"customer_1","ragpicker_clerk_id":"picker_1","rating":0,"review":"never showed up"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var review models.Review
	if err := db.First(&review).Error; err != nil {
		t.Fatalf("load review: %v", err)
	}
	if review.Rating != 0 {
		t.Errorf("rating = %f, want 0", review.Rating)
	}

	var picker models.RagpickerDetails
	if err := db.Where("clerk_id = ?", "picker_1").First(&picker).Error; err != nil {
		t.Fatalf("load ragpicker: %v", err)
	}
	if picker.AverageRating != 0 {
		t.Errorf("average rating = %f, want 0", picker.AverageRating)
	}
}

func TestCreateReviewMissingRatingRejected(t *testing.T) {
	router, _ := newReviewsRouter(t)

	w := postJSON(t, router, "/reviews",
		`{"customer_clerk_id":"customer_1","ragpicker_clerk_id":"picker_1","review":"no rating"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreateReviewOutOfRangeRejected(t *testing.T) {
	router, _ := newReviewsRouter(t)

	w := postJSON(t, router, "/reviews",
		`{"customer_clerk_id":"customer_1","ragpicker_clerk_id":"picker_1","rating":6}`)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d: %s", w.Code, http.StatusConflict, w.Body.String())
	}
}
