package ledger

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/saifurrahmanctg/micro-earn-server/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// a single connection keeps the shared in-memory database alive and
	// serializes concurrent transactions the way tests expect
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Submission{},
		&models.Withdrawal{},
		&models.Payment{},
		&models.Notification{},
		&models.Report{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func seedUser(t *testing.T, e *Engine, email, role string, coins int64) {
	t.Helper()
	user := models.User{
		Name:     email,
		Email:    email,
		Password: "x",
		Role:     role,
		Coins:    coins,
	}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
}

func seedTask(t *testing.T, e *Engine, buyer string, workers int, amount int64) *models.Task {
	t.Helper()
	task := &models.Task{
		BuyerEmail:      buyer,
		BuyerName:       buyer,
		TaskTitle:       "Watch and subscribe",
		TaskDetail:      "Watch the full video and send a screenshot",
		RequiredWorkers: workers,
		PayableAmount:   amount,
		CompletionDate:  "2026-12-31",
		SubmissionInfo:  "screenshot",
	}
	if err := e.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

func mustBalance(t *testing.T, e *Engine, email string) int64 {
	t.Helper()
	coins, err := e.Balance(context.Background(), email)
	if err != nil {
		t.Fatalf("balance %s: %v", email, err)
	}
	return coins
}

func TestDebitNeverGoesNegative(t *testing.T) {
	e := newTestEngine(t)
	seedUser(t, e, "w@test.com", models.RoleWorker, 10)

	if err := debit(e.db, "w@test.com", 11); err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if err := debit(e.db, "w@test.com", 10); err != nil {
		t.Fatalf("debit to zero should succeed: %v", err)
	}
	if got := mustBalance(t, e, "w@test.com"); got != 0 {
		t.Fatalf("expected balance 0, got %d", got)
	}
	if err := debit(e.db, "ghost@test.com", 1); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

// Ledger consistency: after a scripted sequence of operations the balance of
// each user equals the sum of credits minus the sum of debits applied to it.
func TestLedgerConsistency(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, e, "buyer@test.com", models.RoleBuyer, 100)
	seedUser(t, e, "worker@test.com", models.RoleWorker, 10)

	task := seedTask(t, e, "buyer@test.com", 4, 10) // buyer -40

	sub := &models.Submission{TaskID: task.ID, WorkerEmail: "worker@test.com", WorkerName: "Worker"}
	if err := e.Submit(ctx, sub); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := e.ApproveSubmission(ctx, sub.ID, "buyer@test.com"); err != nil { // worker +10
		t.Fatalf("approve: %v", err)
	}

	wd := &models.Withdrawal{WorkerEmail: "worker@test.com", WithdrawalCoin: 15, WithdrawalAmount: 0.75}
	if err := e.RequestWithdrawal(ctx, wd); err != nil {
		t.Fatalf("request withdrawal: %v", err)
	}
	if err := e.ApproveWithdrawal(ctx, wd.ID); err != nil { // worker -15
		t.Fatalf("approve withdrawal: %v", err)
	}

	pay := &models.Payment{BuyerEmail: "buyer@test.com", CoinsPurchased: 30, Price: 2.99, TransactionID: "pi_test_1"}
	if err := e.RecordPayment(ctx, pay); err != nil { // buyer +30
		t.Fatalf("record payment: %v", err)
	}

	if err := e.DeleteTask(ctx, task.ID, "buyer@test.com", models.RoleBuyer); err != nil { // buyer +30 (3 slots left)
		t.Fatalf("delete task: %v", err)
	}

	if got := mustBalance(t, e, "buyer@test.com"); got != 100-40+30+30 {
		t.Fatalf("buyer balance: want %d, got %d", 100-40+30+30, got)
	}
	if got := mustBalance(t, e, "worker@test.com"); got != 10+10-15 {
		t.Fatalf("worker balance: want %d, got %d", 10+10-15, got)
	}
}

func TestRecordPaymentCreditsBuyerOnce(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, e, "buyer@test.com", models.RoleBuyer, 0)

	pay := &models.Payment{BuyerEmail: "buyer@test.com", CoinsPurchased: 100, Price: 9.99, TransactionID: "pi_once"}
	if err := e.RecordPayment(ctx, pay); err != nil {
		t.Fatalf("record payment: %v", err)
	}
	// replayed capture with the same transaction id must not credit again
	replay := &models.Payment{BuyerEmail: "buyer@test.com", CoinsPurchased: 100, Price: 9.99, TransactionID: "pi_once"}
	if err := e.RecordPayment(ctx, replay); err != ErrConflict {
		t.Fatalf("expected ErrConflict on replay, got %v", err)
	}
	if got := mustBalance(t, e, "buyer@test.com"); got != 100 {
		t.Fatalf("expected 100 coins, got %d", got)
	}
}

func TestNotificationReadFlow(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	seedUser(t, e, "buyer@test.com", models.RoleBuyer, 50)
	seedUser(t, e, "worker@test.com", models.RoleWorker, 10)
	task := seedTask(t, e, "buyer@test.com", 1, 10)

	sub := &models.Submission{TaskID: task.ID, WorkerEmail: "worker@test.com", WorkerName: "Worker"}
	if err := e.Submit(ctx, sub); err != nil {
		t.Fatalf("submit: %v", err)
	}

	rows, err := e.NotificationsFor(ctx, "buyer@test.com")
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(rows))
	}
	if rows[0].IsRead {
		t.Fatal("new notification should be unread")
	}
	if err := e.MarkNotificationRead(ctx, rows[0].ID, "buyer@test.com"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := e.MarkNotificationRead(ctx, rows[0].ID, "other@test.com"); err != ErrNotFound {
		t.Fatalf("foreign notification should be not found, got %v", err)
	}
}
