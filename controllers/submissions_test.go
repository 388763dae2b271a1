package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/saifurrahmanctg/micro-earn-server/ledger"
	"github.com/saifurrahmanctg/micro-earn-server/models"
	"github.com/saifurrahmanctg/micro-earn-server/utils"
)

func TestSubmissionRepeatIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	setupJWT(t)
	authCtrl := NewAuthController(db)
	engine := ledger.New(db)
	subCtrl := NewSubmissionController(db, engine)

	for _, u := range []map[string]interface{}{
		{"name": "Buyer One", "email": "buyer@example.com", "password": "secret1", "role": "buyer"},
		{"name": "Worker One", "email": "worker@example.com", "password": "secret1", "role": "worker"},
	} {
		if rec := postJSON(t, authCtrl.Register, "/users", u); rec.Code != http.StatusCreated {
			t.Fatalf("register %v status = %d", u["email"], rec.Code)
		}
	}

	task := &models.Task{
		BuyerEmail:      "buyer@example.com",
		TaskTitle:       "Watch video",
		RequiredWorkers: 5,
		PayableAmount:   10,
	}
	if err := engine.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	submit := func() *httptest.ResponseRecorder {
		raw, _ := json.Marshal(map[string]interface{}{
			"task_id":           task.ID,
			"submission_detail": "done, screenshot attached",
		})
		req := httptest.NewRequest(http.MethodPost, "/submissions", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(context.WithValue(req.Context(), utils.UserEmailKey, "worker@example.com"))
		rec := httptest.NewRecorder()
		subCtrl.Create(rec, req)
		return rec
	}

	if rec := submit(); rec.Code != http.StatusCreated {
		t.Fatalf("first submit status = %d, body %s", rec.Code, rec.Body.String())
	}

	// the repeat is recovered as a no-op, mirroring the repeat-register flow
	rec := submit()
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat submit status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if !resp.Success || resp.Message != "You have already submitted to this task" {
		t.Fatalf("repeat submit response = %+v", resp)
	}

	var count int64
	if err := db.Model(&models.Submission{}).Where("worker_email = ?", "worker@example.com").Count(&count).Error; err != nil {
		t.Fatalf("count submissions: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one submission row, got %d", count)
	}
}
