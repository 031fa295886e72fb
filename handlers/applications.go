package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"waste-whirl-api/models"
	"waste-whirl-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ApplicationHandler struct {
	db       *gorm.DB
	identity *services.IdentityService
}

func NewApplicationHandler(db *gorm.DB, identity *services.IdentityService) *ApplicationHandler {
	return &ApplicationHandler{db: db, identity: identity}
}

type ApplicationCreateBody struct {
	ClerkID     string `json:"clerk_id" binding:"required"`
	DocumentURL string `json:"document_url" binding:"required"`
	Notes       string `json:"notes"`
}

type ApplicationReviewBody struct {
	Status string `json:"status" binding:"required"`
}

func (h *ApplicationHandler) Create(c *gin.Context) {
	var body ApplicationCreateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app := models.RagpickerApplication{
		ClerkID:     body.ClerkID,
		DocumentURL: body.DocumentURL,
		Notes:       body.Notes,
		Status:      models.ApplicationPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.db.Create(&app).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "application submission failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":        "Application submitted successfully",
		"application_id": app.ID,
	})
}

func (h *ApplicationHandler) List(c *gin.Context) {
	query := h.db.Model(&models.RagpickerApplication{}).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var apps []models.RagpickerApplication
	if err := query.Find(&apps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, apps)
}

// Review accepts or rejects an application. Acceptance syncs the RAGPICKER
// role to the identity provider before the local role change commits, so a
// provider failure leaves both sides unchanged.
func (h *ApplicationHandler) Review(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}

	var body ApplicationReviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.Status != models.ApplicationAccepted && body.Status != models.ApplicationRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be ACCEPTED or REJECTED"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var app models.RagpickerApplication
		err := tx.Where("id = ?", id).First(&app).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.ErrNotFound
		}
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		app.Status = body.Status
		app.UpdatedAt = &now

		if body.Status == models.ApplicationAccepted {
			var user models.User
			err := tx.Where("clerk_id = ?", app.ClerkID).First(&user).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.ErrNotFound
			}
			if err != nil {
				return err
			}

			if err := h.identity.UpdateRole(c.Request.Context(), app.ClerkID, models.RoleRagpicker); err != nil {
				return err
			}

			user.Role = models.RoleRagpicker
			if err := tx.Save(&user).Error; err != nil {
				return err
			}
		}

		return tx.Save(&app).Error
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application or user not found"})
			return
		}
		log.Printf("application review failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "application review failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application " + body.Status + " successfully"})
}
