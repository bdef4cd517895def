package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"metro-routing/db"
	"metro-routing/model"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const testSecret = "test-secret-0123456789"

func newAuthRouter(t *testing.T) (*gin.Engine, *AuthHandler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := db.NewMemoryUserStore()
	if err := SeedAdmin(context.Background(), users, "admin123"); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}

	h := NewAuthHandler(users, testSecret, time.Hour, zap.NewNop())
	r := gin.New()
	r.POST("/api/login", h.Login)
	r.POST("/api/register", h.Register)
	r.GET("/api/private", h.AuthMiddleware(), RequireRole(model.RoleQuery), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString("username")})
	})
	return r, h
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getWithToken(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/private", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	w := postJSON(r, "/api/login", `{"username": "`+username+`", "password": "`+password+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", username, w.Code)
	}
	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.Token
}

func TestLoginAndRoleCheck(t *testing.T) {
	r, _ := newAuthRouter(t)

	token := login(t, r, "admin", "admin123")
	if w := getWithToken(r, token); w.Code != http.StatusOK {
		t.Errorf("admin should pass role check, got %d", w.Code)
	}
	if w := getWithToken(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token should be 401, got %d", w.Code)
	}
	if w := getWithToken(r, token+"x"); w.Code != http.StatusUnauthorized {
		t.Errorf("tampered token should be 401, got %d", w.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, _ := newAuthRouter(t)
	for _, body := range []string{
		`{"username": "admin", "password": "wrong"}`,
		`{"username": "ghost", "password": "admin123"}`,
	} {
		if w := postJSON(r, "/api/login", body); w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", body, w.Code)
		}
	}
	if w := postJSON(r, "/api/login", `{"username": "admin"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing password should be 400, got %d", w.Code)
	}
}

func TestRegister(t *testing.T) {
	r, _ := newAuthRouter(t)

	if w := postJSON(r, "/api/register", `{"username": "rider", "password": "secret1"}`); w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if w := postJSON(r, "/api/register", `{"username": "rider", "password": "secret1"}`); w.Code != http.StatusConflict {
		t.Errorf("duplicate should be 409, got %d", w.Code)
	}
	if w := postJSON(r, "/api/register", `{"username": "short", "password": "123"}`); w.Code != http.StatusBadRequest {
		t.Errorf("short password should be 400, got %d", w.Code)
	}

	// 新用户没有 query 角色
	token := login(t, r, "rider", "secret1")
	if w := getWithToken(r, token); w.Code != http.StatusForbidden {
		t.Errorf("user without role should be 403, got %d", w.Code)
	}
}

func TestExpiredToken(t *testing.T) {
	r, _ := newAuthRouter(t)
	expired := NewAuthHandler(db.NewMemoryUserStore(), testSecret, -time.Minute, zap.NewNop())
	token, err := expired.IssueToken(&model.User{Username: "admin", Roles: []string{model.RoleQuery}})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if w := getWithToken(r, token); w.Code != http.StatusUnauthorized {
		t.Errorf("expired token should be 401, got %d", w.Code)
	}
}
