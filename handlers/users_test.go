package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"waste-whirl-api/models"

	"github.com/gin-gonic/gin"
)

func newUsersRouter(t *testing.T) (*gin.Engine, *UserHandler) {
	t.Helper()
	db := newTestDB(t)
	h := NewUserHandler(db)

	router := gin.New()
	router.POST("/users", h.Upsert)
	router.GET("/users/:clerk_id", h.Get)
	return router, h
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUpsertDefaultsRoleOnCreate(t *testing.T) {
	router, h := newUsersRouter(t)

	w := postJSON(t, router, "/users", `{"clerk_id":"u1","email":"a@b.c"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var user models.User
	if err := h.db.Where("clerk_id = ?", "u1").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Role != models.RoleCustomer {
		t.Errorf("role = %q, want %q", user.Role, models.RoleCustomer)
	}
}

func TestUpsertWithoutRoleKeepsExistingRole(t *testing.T) {
	router, h := newUsersRouter(t)

	w := postJSON(t, router, "/users", `{"clerk_id":"u1","email":"a@b.c","role":"RAGPICKER"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}

	// Webhook payloads often carry no role; the update must not demote.
	w = postJSON(t, router, "/users", `{"clerk_id":"u1","email":"a@b.c","first_name":"New"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body.String())
	}

	var user models.User
	if err := h.db.Where("clerk_id = ?", "u1").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Role != models.RoleRagpicker {
		t.Errorf("role after role-less upsert = %q, want %q", user.Role, models.RoleRagpicker)
	}
	if user.FirstName != "New" {
		t.Errorf("first name = %q, want %q", user.FirstName, "New")
	}
}

func TestUpsertWithRoleUpdatesRole(t *testing.T) {
	router, h := newUsersRouter(t)

	postJSON(t, router, "/users", `{"clerk_id":"u1","email":"a@b.c"}`)
	w := postJSON(t, router, "/users", `{"clerk_id":"u1","email":"a@b.c","role":"RAGPICKER"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body.String())
	}

	var user models.User
	if err := h.db.Where("clerk_id = ?", "u1").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Role != models.RoleRagpicker {
		t.Errorf("role = %q, want %q", user.Role, models.RoleRagpicker)
	}
}
