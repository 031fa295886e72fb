package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"waste-whirl-api/models"

	"github.com/gin-gonic/gin"
)

type logsPage struct {
	Data       []models.SensorLog `json:"data"`
	NextCursor string             `json:"next_cursor"`
	HasMore    bool               `json:"has_more"`
}

func getLogsPage(t *testing.T, router *gin.Engine, sensorID string, limit int, cursor string) logsPage {
	t.Helper()

	path := fmt.Sprintf("/sensors/logs/%s?limit=%d", sensorID, limit)
	if cursor != "" {
		path += "&before=" + url.QueryEscape(cursor)
	}
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var page logsPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	return page
}

func TestLogsPaginationSplitsSharedTimestamps(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&models.Sensor{SensorID: "Bin1"}).Error; err != nil {
		t.Fatalf("seed sensor: %v", err)
	}

	// Three rows on one timestamp: a timestamp-only cursor would skip the
	// boundary rows between pages.
	ts := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := models.SensorLog{SensorID: "Bin1", SensorStatus: true, Timestamp: ts}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}

	router := gin.New()
	router.GET("/sensors/logs/:sensor_id", NewSensorHandler(db, nil, nil).Logs)

	first := getLogsPage(t, router, "Bin1", 2, "")
	if len(first.Data) != 2 {
		t.Fatalf("first page rows = %d, want 2", len(first.Data))
	}
	if !first.HasMore {
		t.Fatal("first page should report more rows")
	}
	if first.NextCursor == "" {
		t.Fatal("first page should carry a cursor")
	}

	second := getLogsPage(t, router, "Bin1", 2, first.NextCursor)
	if len(second.Data) != 1 {
		t.Fatalf("second page rows = %d, want 1", len(second.Data))
	}
	if second.HasMore {
		t.Error("second page should be the last")
	}

	seen := map[uint]bool{}
	for _, row := range append(first.Data, second.Data...) {
		if seen[row.ID] {
			t.Errorf("log %d returned twice", row.ID)
		}
		seen[row.ID] = true
	}
	if len(seen) != 3 {
		t.Errorf("distinct rows across pages = %d, want 3", len(seen))
	}
}

func TestLogsPaginationOrdersNewestFirst(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&models.Sensor{SensorID: "Bin1"}).Error; err != nil {
		t.Fatalf("seed sensor: %v", err)
	}

	base := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := models.SensorLog{SensorID: "Bin1", SensorStatus: true, Timestamp: base.Add(time.Duration(i) * time.Hour)}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}

	router := gin.New()
	router.GET("/sensors/logs/:sensor_id", NewSensorHandler(db, nil, nil).Logs)

	page := getLogsPage(t, router, "Bin1", 10, "")
	if len(page.Data) != 3 {
		t.Fatalf("rows = %d, want 3", len(page.Data))
	}
	for i := 1; i < len(page.Data); i++ {
		if page.Data[i].Timestamp.After(page.Data[i-1].Timestamp) {
			t.Errorf("rows not in newest-first order at index %d", i)
		}
	}
	if page.HasMore {
		t.Error("single page should not report more rows")
	}
}
