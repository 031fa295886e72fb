package handlers

import (
	"errors"
	"net/http"

	"waste-whirl-api/models"
	"waste-whirl-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CustomerHandler struct {
	db     *gorm.DB
	ledger *services.LedgerService
}

func NewCustomerHandler(db *gorm.DB, ledger *services.LedgerService) *CustomerHandler {
	return &CustomerHandler{db: db, ledger: ledger}
}

type CustomerDetailsRequest struct {
	WalletAddress string `json:"wallet_address"`
}

func (h *CustomerHandler) PutDetails(c *gin.Context) {
	var req CustomerDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	details := models.CustomerDetails{
		ClerkID:       c.Param("clerk_id"),
		WalletAddress: req.WalletAddress,
	}
	if err := h.db.Save(&details).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database update failed"})
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *CustomerHandler) GetDetails(c *gin.Context) {
	var details models.CustomerDetails
	err := h.db.Where("clerk_id = ?", c.Param("clerk_id")).First(&details).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer details not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, details)
}

// GetBalance reads as zero when no balance row exists yet.
func (h *CustomerHandler) GetBalance(c *gin.Context) {
	clerkID := c.Param("clerk_id")
	balance, err := h.ledger.GetBalance(h.db, clerkID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clerk_id": clerkID, "balance": balance})
}
