package handlers

import (
	"net/http"

	"waste-whirl-api/models"
	"waste-whirl-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler signs companies in. Customer/ragpicker auth lives with the
// external identity provider; only the company admin surface uses local
// credentials.
type AuthHandler struct {
	db          *gorm.DB
	authService *services.AuthService
}

func NewAuthHandler(db *gorm.DB, authService *services.AuthService) *AuthHandler {
	return &AuthHandler{db: db, authService: authService}
}

type CompanyRegisterRequest struct {
	CompanyName string  `json:"company_name" binding:"required"`
	Password    string  `json:"password" binding:"required,min=8"`
	Balance     float64 `json:"balance"`
}

type CompanyLoginRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type CompanyAuthResponse struct {
	Token   string                `json:"token"`
	Company models.CompanyBalance `json:"company"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req CompanyRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	company := models.CompanyBalance{
		CompanyName:     req.CompanyName,
		CompanyPassword: hash,
		Balance:         req.Balance,
	}
	if err := h.db.Create(&company).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "company already registered"})
		return
	}

	token, err := h.authService.GenerateToken(company.ID, company.CompanyName, "company")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, CompanyAuthResponse{Token: token, Company: company})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req CompanyLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var company models.CompanyBalance
	if err := h.db.Where("company_name = ?", req.CompanyName).First(&company).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !h.authService.CheckPassword(company.CompanyPassword, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.authService.GenerateToken(company.ID, company.CompanyName, "company")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, CompanyAuthResponse{Token: token, Company: company})
}
