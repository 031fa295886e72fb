package handlers

import (
	"errors"
	"net/http"
	"time"

	"waste-whirl-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

type UserUpsertRequest struct {
	ClerkID   string `json:"clerk_id" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type UserDetailsRequest struct {
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Bio           string `json:"bio"`
	ProfilePicURL string `json:"profile_pic_url"`
}

// Upsert mirrors the identity provider's webhook: users are created there
// and synced here.
func (h *UserHandler) Upsert(c *gin.Context) {
	var req UserUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.db.Where("clerk_id = ?", req.ClerkID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role := req.Role
		if role == "" {
			role = models.RoleCustomer
		}
		user = models.User{
			ClerkID:   req.ClerkID,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Role:      role,
			CreatedAt: time.Now().UTC(),
		}
		if err := h.db.Create(&user).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusCreated, user)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	// A role-less upsert must not touch an existing role: the admin flow
	// promotes users to RAGPICKER and webhook payloads rarely carry a role.
	if req.Role != "" {
		user.Role = req.Role
	}
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database update failed"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	var user models.User
	err := h.db.Where("clerk_id = ?", c.Param("clerk_id")).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) PutDetails(c *gin.Context) {
	var req UserDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	details := models.UserDetails{
		ClerkID:       c.Param("clerk_id"),
		Phone:         req.Phone,
		Address:       req.Address,
		Bio:           req.Bio,
		ProfilePicURL: req.ProfilePicURL,
	}
	if err := h.db.Save(&details).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database update failed"})
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *UserHandler) GetDetails(c *gin.Context) {
	var details models.UserDetails
	err := h.db.Where("clerk_id = ?", c.Param("clerk_id")).First(&details).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user details not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, details)
}
