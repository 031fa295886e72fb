package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"waste-whirl-api/models"
	"waste-whirl-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SensorHandler struct {
	db       *gorm.DB
	bins     *services.BinStateService
	forecast *services.ForecastService
}

func NewSensorHandler(db *gorm.DB, bins *services.BinStateService, forecast *services.ForecastService) *SensorHandler {
	return &SensorHandler{db: db, bins: bins, forecast: forecast}
}

type SensorCreateRequest struct {
	SensorID   string `json:"sensor_id" binding:"required"`
	SensorName string `json:"sensor_name"`
	Location   string `json:"location"`
	CompanyID  *uint  `json:"company_id"`
}

type StatusUpdateRequest struct {
	SensorID string `json:"sensor_id" binding:"required"`
	Status   *bool  `json:"status" binding:"required"`
}

type RFIDAttachRequest struct {
	SensorID string `json:"sensor_id" binding:"required"`
	RFID     string `json:"rfid" binding:"required"`
}

func (h *SensorHandler) Create(c *gin.Context) {
	var req SensorCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sensor := models.Sensor{
		SensorID:   req.SensorID,
		SensorName: req.SensorName,
		Location:   req.Location,
		CompanyID:  req.CompanyID,
	}
	if err := h.db.Create(&sensor).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "sensor already exists"})
		return
	}
	c.JSON(http.StatusCreated, sensor)
}

func (h *SensorHandler) List(c *gin.Context) {
	var sensors []models.Sensor
	if err := h.db.Order("sensor_id").Find(&sensors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, sensors)
}

func (h *SensorHandler) Get(c *gin.Context) {
	var sensor models.Sensor
	err := h.db.Where("sensor_id = ?", c.Param("sensor_id")).First(&sensor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "sensor not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, sensor)
}

// UpdateStatus accepts the hardware bin-full / bin-empty signal. Redundant
// signals (including an empty with no prior full) come back 409; an empty
// whose open entry has no RFID yet comes back 412.
func (h *SensorHandler) UpdateStatus(c *gin.Context) {
	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, result, err := h.bins.UpdateStatus(c.Request.Context(), req.SensorID, *req.Status)
	if err != nil {
		respondStateError(c, err)
		return
	}

	resp := gin.H{"log": entry}
	if result != nil {
		resp["settlement"] = result
	}
	c.JSON(http.StatusOK, resp)
}

// AttachRFID accepts the collector's tap on the bin's reader.
func (h *SensorHandler) AttachRFID(c *gin.Context) {
	var req RFIDAttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.bins.AttachRFID(c.Request.Context(), req.SensorID, req.RFID)
	if err != nil {
		respondStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"log": entry})
}

func (h *SensorHandler) Logs(c *gin.Context) {
	p := ParsePagination(c)

	query := h.db.Model(&models.SensorLog{}).
		Where("sensor_id = ?", c.Param("sensor_id")).
		Order("timestamp DESC, id DESC").
		Limit(p.Limit + 1)
	if p.Before != nil {
		if p.BeforeID != nil {
			query = query.Where("timestamp < ? OR (timestamp = ? AND id < ?)", *p.Before, *p.Before, *p.BeforeID)
		} else {
			query = query.Where("timestamp < ?", *p.Before)
		}
	}

	var rows []models.SensorLog
	if err := query.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	hasMore := len(rows) > p.Limit
	if hasMore {
		rows = rows[:p.Limit]
	}

	var nextCursor string
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		nextCursor = fmt.Sprintf("%s|%d", last.Timestamp.Format(time.RFC3339Nano), last.ID)
	}

	c.JSON(http.StatusOK, CursorResponse{Data: rows, NextCursor: nextCursor, HasMore: hasMore})
}

func (h *SensorHandler) Forecast(c *gin.Context) {
	fc, err := h.forecast.NextFull(c.Request.Context(), c.Param("sensor_id"))
	if err != nil {
		respondStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

// respondStateError maps service sentinel errors onto HTTP statuses.
func respondStateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPrecondition):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
