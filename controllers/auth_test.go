package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/saifurrahmanctg/micro-earn-server/config"
	"github.com/saifurrahmanctg/micro-earn-server/ledger"
	"github.com/saifurrahmanctg/micro-earn-server/models"
	"github.com/saifurrahmanctg/micro-earn-server/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	err = db.AutoMigrate(&models.User{}, &models.Task{}, &models.Submission{},
		&models.Withdrawal{}, &models.Payment{}, &models.Notification{}, &models.Report{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func setupJWT(t *testing.T) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "micro-earn-server"
	cfg.JWT.ExpiryMin = 60
	if err := utils.SetupJWT(cfg); err != nil {
		t.Fatalf("setup jwt: %v", err)
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()
	var resp utils.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestRegisterGrantsStartingCoins(t *testing.T) {
	db := newTestDB(t)
	setupJWT(t)
	ctrl := NewAuthController(db)

	rec := postJSON(t, ctrl.Register, "/users", map[string]interface{}{
		"name":     "Worker One",
		"email":    "worker@example.com",
		"password": "secret1",
		"role":     "worker",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}

	var user models.User
	if err := db.Where("email = ?", "worker@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Coins != 10 {
		t.Fatalf("worker starting coins = %d, want 10", user.Coins)
	}
	if user.Password == "secret1" {
		t.Fatalf("password stored in plaintext")
	}

	rec = postJSON(t, ctrl.Register, "/users", map[string]interface{}{
		"name":     "Buyer One",
		"email":    "buyer@example.com",
		"password": "secret1",
		"role":     "buyer",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("buyer register status = %d", rec.Code)
	}
	// a fresh struct: reusing user would pin the query to the worker's id
	var buyer models.User
	if err := db.Where("email = ?", "buyer@example.com").First(&buyer).Error; err != nil {
		t.Fatalf("load buyer: %v", err)
	}
	if buyer.Coins != 50 {
		t.Fatalf("buyer starting coins = %d, want 50", buyer.Coins)
	}
}

func TestRegisterExistingEmailIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	setupJWT(t)
	ctrl := NewAuthController(db)

	body := map[string]interface{}{
		"name":     "Worker One",
		"email":    "worker@example.com",
		"password": "secret1",
		"role":     "worker",
	}
	if rec := postJSON(t, ctrl.Register, "/users", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}

	rec := postJSON(t, ctrl.Register, "/users", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat register status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Message != "user already exists" {
		t.Fatalf("repeat register message = %q", resp.Message)
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", "worker@example.com").Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one user row, got %d", count)
	}

	// Coins are not granted twice.
	var user models.User
	if err := db.Where("email = ?", "worker@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Coins != 10 {
		t.Fatalf("coins after repeat register = %d, want 10", user.Coins)
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	db := newTestDB(t)
	setupJWT(t)
	ctrl := NewAuthController(db)

	if rec := postJSON(t, ctrl.Register, "/users", map[string]interface{}{
		"name":     "Buyer One",
		"email":    "buyer@example.com",
		"password": "secret1",
		"role":     "buyer",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	rec := postJSON(t, ctrl.Login, "/jwt", map[string]interface{}{
		"email":    "buyer@example.com",
		"password": "secret1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("login data shape: %T", resp.Data)
	}
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatalf("login response missing token")
	}

	claims, err := utils.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims["email"] != "buyer@example.com" || claims["role"] != "buyer" {
		t.Fatalf("token claims = %v", claims)
	}

	rec = postJSON(t, ctrl.Login, "/jwt", map[string]interface{}{
		"email":    "buyer@example.com",
		"password": "wrongpass",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", rec.Code)
	}
}

func TestLogoutChecksPresentedToken(t *testing.T) {
	db := newTestDB(t)
	setupJWT(t)
	ctrl := NewAuthController(db)

	token, err := utils.GenerateToken("worker@example.com", "worker")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ctrl.Logout(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d, body %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	ctrl.Logout(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token logout status = %d, want 401", rec.Code)
	}
}

func TestTaskCreateOverBalanceIsRejected(t *testing.T) {
	db := newTestDB(t)
	setupJWT(t)
	authCtrl := NewAuthController(db)
	engine := ledger.New(db)
	taskCtrl := NewTaskController(db, engine)

	if rec := postJSON(t, authCtrl.Register, "/users", map[string]interface{}{
		"name":     "Buyer One",
		"email":    "buyer@example.com",
		"password": "secret1",
		"role":     "buyer",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	// Buyer has 50 coins; 10 slots at 10 coins needs 100.
	raw, _ := json.Marshal(map[string]interface{}{
		"task_title":       "Watch video",
		"task_detail":      "Watch and comment",
		"required_workers": 10,
		"payable_amount":   10,
		"completion_date":  "2026-10-01",
	})
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(context.WithValue(req.Context(), utils.UserEmailKey, "buyer@example.com"))
	rec := httptest.NewRecorder()
	taskCtrl.Create(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("over-balance create status = %d, want 400", rec.Code)
	}

	// 5 slots at 10 coins fits the 50 coin balance.
	raw, _ = json.Marshal(map[string]interface{}{
		"task_title":       "Watch video",
		"task_detail":      "Watch and comment",
		"required_workers": 5,
		"payable_amount":   10,
		"completion_date":  "2026-10-01",
	})
	req = httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(context.WithValue(req.Context(), utils.UserEmailKey, "buyer@example.com"))
	rec = httptest.NewRecorder()
	taskCtrl.Create(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}

	var buyer models.User
	if err := db.Where("email = ?", "buyer@example.com").First(&buyer).Error; err != nil {
		t.Fatalf("load buyer: %v", err)
	}
	if buyer.Coins != 0 {
		t.Fatalf("buyer coins after create = %d, want 0", buyer.Coins)
	}
}
