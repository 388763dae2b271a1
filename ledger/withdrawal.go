package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saifurrahmanctg/micro-earn-server/models"
)

// RequestWithdrawal records a pending withdrawal after checking the worker
// can currently cover it. No coins move yet; the debit happens at admin
// approval, where the balance is checked again.
func (e *Engine) RequestWithdrawal(ctx context.Context, wd *models.Withdrawal) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("coins").Where("email = ?", wd.WorkerEmail).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if user.Coins < wd.WithdrawalCoin {
			return ErrInsufficientFunds
		}

		wd.Status = models.WithdrawalPending
		wd.ReferenceID = newReferenceID()
		wd.WithdrawDate = nowFunc()
		return tx.Create(wd).Error
	})
}

// ApproveWithdrawal debits the worker and marks the withdrawal approved.
// The status flip is conditional on pending, so a duplicate approval fails
// with ErrConflict, and the debit re-validates the balance: if the worker
// spent coins since requesting, the transaction rolls back and everything
// stays pending.
func (e *Engine) ApproveWithdrawal(ctx context.Context, id uint) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wd models.Withdrawal
		if err := tx.First(&wd, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		res := tx.Model(&models.Withdrawal{}).
			Where("id = ? AND status = ?", id, models.WithdrawalPending).
			Update("status", models.WithdrawalApproved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if err := debit(tx, wd.WorkerEmail, wd.WithdrawalCoin); err != nil {
			return err
		}

		msg := fmt.Sprintf("Your withdrawal request of $%.2f was approved!", wd.WithdrawalAmount)
		return notify(tx, wd.WorkerEmail, "Withdrawal Approved", msg, "/dashboard/worker-home")
	})
}

// PendingWithdrawals is the admin queue, oldest first.
func (e *Engine) PendingWithdrawals(ctx context.Context) ([]models.Withdrawal, error) {
	var rows []models.Withdrawal
	err := e.db.WithContext(ctx).
		Where("status = ?", models.WithdrawalPending).
		Order("withdraw_date ASC").
		Find(&rows).Error
	return rows, err
}

// WithdrawalsByWorker lists a worker's own withdrawal history.
func (e *Engine) WithdrawalsByWorker(ctx context.Context, email string) ([]models.Withdrawal, error) {
	var rows []models.Withdrawal
	err := e.db.WithContext(ctx).
		Where("worker_email = ?", email).
		Order("withdraw_date DESC").
		Find(&rows).Error
	return rows, err
}

func newReferenceID() string {
	return "WD-" + uuid.NewString()
}
