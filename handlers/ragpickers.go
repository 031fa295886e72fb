package handlers

import (
	"errors"
	"net/http"

	"waste-whirl-api/models"
	"waste-whirl-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RagpickerHandler struct {
	db      *gorm.DB
	ledger  *services.LedgerService
	reviews *services.ReviewService
}

func NewRagpickerHandler(db *gorm.DB, ledger *services.LedgerService, reviews *services.ReviewService) *RagpickerHandler {
	return &RagpickerHandler{db: db, ledger: ledger, reviews: reviews}
}

type RagpickerDetailsRequest struct {
	WalletAddress string  `json:"wallet_address"`
	RFID          *string `json:"rfid"`
}

type RagpickerListItem struct {
	ClerkID       string  `json:"clerk_id"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	AverageRating float64 `json:"average_rating"`
}

func (h *RagpickerHandler) List(c *gin.Context) {
	var items []RagpickerListItem
	err := h.db.Model(&models.User{}).
		Select("users.clerk_id, users.first_name, users.last_name, COALESCE(ragpicker_details.average_rating, 0) AS average_rating").
		Joins("LEFT JOIN ragpicker_details ON ragpicker_details.clerk_id = users.clerk_id").
		Where("users.role = ?", models.RoleRagpicker).
		Order("average_rating DESC").
		Scan(&items).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// PutDetails creates or updates the ragpicker's wallet and RFID binding.
// The unique index on rfid rejects a tag already bound to someone else.
func (h *RagpickerHandler) PutDetails(c *gin.Context) {
	var req RagpickerDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clerkID := c.Param("clerk_id")

	var details models.RagpickerDetails
	err := h.db.Where("clerk_id = ?", clerkID).First(&details).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		details = models.RagpickerDetails{ClerkID: clerkID}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	details.WalletAddress = req.WalletAddress
	if req.RFID != nil {
		details.RFID = req.RFID
	}
	if err := h.db.Save(&details).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "RFID already bound to another ragpicker"})
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *RagpickerHandler) GetDetails(c *gin.Context) {
	var details models.RagpickerDetails
	err := h.db.Where("clerk_id = ?", c.Param("clerk_id")).First(&details).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "ragpicker details not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *RagpickerHandler) GetBalance(c *gin.Context) {
	clerkID := c.Param("clerk_id")
	balance, err := h.ledger.GetBalance(h.db, clerkID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clerk_id": clerkID, "balance": balance})
}

func (h *RagpickerHandler) GetReviews(c *gin.Context) {
	reviews, err := h.reviews.ListForRagpicker(c.Request.Context(), c.Param("clerk_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, reviews)
}
