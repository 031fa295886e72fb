package handlers

import (
	"net/http"

	"waste-whirl-api/services"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Rating is a pointer so an explicit 0 passes the required check.
type ReviewCreateBody struct {
	CustomerClerkID  string   `json:"customer_clerk_id" binding:"required"`
	RagpickerClerkID string   `json:"ragpicker_clerk_id" binding:"required"`
	Rating           *float64 `json:"rating" binding:"required"`
	Review           string   `json:"review"`
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var body ReviewCreateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), body.CustomerClerkID, body.RagpickerClerkID, *body.Rating, body.Review)
	if err != nil {
		respondStateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}
