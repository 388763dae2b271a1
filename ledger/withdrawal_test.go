package ledger

import (
	"context"
	"testing"

	"github.com/saifurrahmanctg/micro-earn-server/models"
)

func TestRequestWithdrawalPreCheck(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, e, "worker@test.com", models.RoleWorker, 100)

	wd := &models.Withdrawal{WorkerEmail: "worker@test.com", WithdrawalCoin: 120, WithdrawalAmount: 6.0}
	if err := e.RequestWithdrawal(ctx, wd); err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	wd = &models.Withdrawal{WorkerEmail: "worker@test.com", WithdrawalCoin: 80, WithdrawalAmount: 4.0}
	if err := e.RequestWithdrawal(ctx, wd); err != nil {
		t.Fatalf("request: %v", err)
	}
	if wd.Status != models.WithdrawalPending {
		t.Fatalf("new withdrawal must be pending, got %s", wd.Status)
	}
	if wd.ReferenceID == "" {
		t.Fatal("reference id not assigned")
	}
	// the request alone moves no coins
	if got := mustBalance(t, e, "worker@test.com"); got != 100 {
		t.Fatalf("request must not debit, balance %d", got)
	}
}

func TestApproveWithdrawalDebitsWorker(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, e, "worker@test.com", models.RoleWorker, 100)

	wd := &models.Withdrawal{WorkerEmail: "worker@test.com", WithdrawalCoin: 80, WithdrawalAmount: 4.0}
	if err := e.RequestWithdrawal(ctx, wd); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := e.ApproveWithdrawal(ctx, wd.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := mustBalance(t, e, "worker@test.com"); got != 20 {
		t.Fatalf("expected balance 20 after approval, got %d", got)
	}

	if err := e.ApproveWithdrawal(ctx, wd.ID); err != ErrConflict {
		t.Fatalf("second approval must conflict, got %v", err)
	}
	if got := mustBalance(t, e, "worker@test.com"); got != 20 {
		t.Fatalf("double approval debited again, balance %d", got)
	}
}

// The balance is re-validated at approval time: if the worker's coins
// dropped below the requested amount since the request, the approval fails
// and the withdrawal stays pending.
func TestApproveWithdrawalRevalidatesBalance(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, e, "worker@test.com", models.RoleWorker, 100)

	wd := &models.Withdrawal{WorkerEmail: "worker@test.com", WithdrawalCoin: 80, WithdrawalAmount: 4.0}
	if err := e.RequestWithdrawal(ctx, wd); err != nil {
		t.Fatalf("request: %v", err)
	}

	// coins leave by some other path before the admin gets to it
	if err := debit(e.db, "worker@test.com", 50); err != nil {
		t.Fatalf("drain: %v", err)
	}

	if err := e.ApproveWithdrawal(ctx, wd.ID); err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	var fresh models.Withdrawal
	if err := e.db.First(&fresh, wd.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if fresh.Status != models.WithdrawalPending {
		t.Fatalf("failed approval must leave status pending, got %s", fresh.Status)
	}
	if got := mustBalance(t, e, "worker@test.com"); got != 50 {
		t.Fatalf("failed approval must not debit, balance %d", got)
	}
}

func TestPendingWithdrawalsQueue(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, e, "worker@test.com", models.RoleWorker, 100)

	first := &models.Withdrawal{WorkerEmail: "worker@test.com", WithdrawalCoin: 20, WithdrawalAmount: 1.0}
	second := &models.Withdrawal{WorkerEmail: "worker@test.com", WithdrawalCoin: 30, WithdrawalAmount: 1.5}
	for _, wd := range []*models.Withdrawal{first, second} {
		if err := e.RequestWithdrawal(ctx, wd); err != nil {
			t.Fatalf("request: %v", err)
		}
	}
	if err := e.ApproveWithdrawal(ctx, first.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	rows, err := e.PendingWithdrawals(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != second.ID {
		t.Fatalf("expected only the second request pending, got %+v", rows)
	}
}
