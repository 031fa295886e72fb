package handlers

import (
	"net/http"
	"strconv"

	"waste-whirl-api/services"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requests *services.RequestService
}

func NewRequestHandler(requests *services.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

type RequestCreateBody struct {
	CustomerClerkID  string `json:"customer_clerk_id" binding:"required"`
	RagpickerClerkID string `json:"ragpicker_clerk_id" binding:"required"`
}

type RequestUpdateBody struct {
	Status string `json:"status" binding:"required"`
}

func (h *RequestHandler) Create(c *gin.Context) {
	var body RequestCreateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.requests.Create(c.Request.Context(), body.CustomerClerkID, body.RagpickerClerkID)
	if err != nil {
		respondStateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *RequestHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	req, err := h.requests.Get(c.Request.Context(), uint(id))
	if err != nil {
		respondStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var body RequestUpdateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.requests.UpdateStatus(c.Request.Context(), uint(id), body.Status)
	if err != nil {
		respondStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) ListForCustomer(c *gin.Context) {
	reqs, err := h.requests.ListForParty(c.Request.Context(), "customer", c.Param("clerk_id"), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (h *RequestHandler) ListForRagpicker(c *gin.Context) {
	reqs, err := h.requests.ListForParty(c.Request.Context(), "ragpicker", c.Param("clerk_id"), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, reqs)
}
