package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/saifurrahmanctg/micro-earn-server/models"
)

// Submit creates a pending submission for a worker. The payable amount and
// buyer identity are copied from the task server-side, never trusted from
// the request. A second submission for the same (task, worker) pair fails
// with ErrDuplicateSubmission even under a racing double-post: the unique
// index decides, not a pre-check.
func (e *Engine) Submit(ctx context.Context, sub *models.Submission) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, sub.TaskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if task.RequiredWorkers <= 0 {
			return ErrSlotUnderflow
		}

		sub.TaskTitle = task.TaskTitle
		sub.BuyerEmail = task.BuyerEmail
		sub.BuyerName = task.BuyerName
		sub.PayableAmount = task.PayableAmount
		sub.Status = models.SubmissionPending
		sub.CurrentDate = nowFunc()

		if err := tx.Create(sub).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateSubmission
			}
			return err
		}

		msg := fmt.Sprintf("A new submission for %q from %s", task.TaskTitle, sub.WorkerName)
		return notify(tx, task.BuyerEmail, "New Submission Received", msg, "/dashboard/buyer-home")
	})
}

// ApproveSubmission moves a pending submission to approved: the worker is
// credited the payable amount and one task slot is consumed. The status
// update is conditional on the current status, so a retried or racing
// approve finds zero rows and fails with ErrConflict instead of paying
// twice.
func (e *Engine) ApproveSubmission(ctx context.Context, id uint, buyerEmail string) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := lockSubmission(tx, id, buyerEmail)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Submission{}).
			Where("id = ? AND status = ?", id, models.SubmissionPending).
			Update("status", models.SubmissionApproved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		// consume one slot, guarded against underflow
		res = tx.Model(&models.Task{}).
			Where("id = ? AND required_workers > 0", sub.TaskID).
			Update("required_workers", gorm.Expr("required_workers - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSlotUnderflow
		}

		if err := credit(tx, sub.WorkerEmail, sub.PayableAmount); err != nil {
			return err
		}

		msg := fmt.Sprintf("You have earned %d coins from %s for completing %q", sub.PayableAmount, sub.BuyerName, sub.TaskTitle)
		return notify(tx, sub.WorkerEmail, "Submission Approved", msg, "/dashboard/worker-home")
	})
}

// RejectSubmission moves a pending submission to rejected and restores the
// slot it was competing for. No coins move: none were granted on submission.
// The same conditional-status guard prevents a double reject from restoring
// two slots.
func (e *Engine) RejectSubmission(ctx context.Context, id uint, buyerEmail string) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := lockSubmission(tx, id, buyerEmail)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Submission{}).
			Where("id = ? AND status = ?", id, models.SubmissionPending).
			Update("status", models.SubmissionRejected)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if err := tx.Model(&models.Task{}).
			Where("id = ?", sub.TaskID).
			Update("required_workers", gorm.Expr("required_workers + 1")).Error; err != nil {
			return err
		}

		msg := fmt.Sprintf("Your submission for %q was rejected by %s", sub.TaskTitle, sub.BuyerName)
		return notify(tx, sub.WorkerEmail, "Submission Rejected", msg, "/dashboard/worker-home")
	})
}

func lockSubmission(tx *gorm.DB, id uint, buyerEmail string) (*models.Submission, error) {
	var sub models.Submission
	if err := tx.First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sub.BuyerEmail != buyerEmail {
		return nil, ErrForbidden
	}
	return &sub, nil
}

// WorkerSubmissions pages through a worker's submissions. page is zero-based.
func (e *Engine) WorkerSubmissions(ctx context.Context, email string, page, size int) ([]models.Submission, int64, error) {
	if size < 1 {
		size = 10
	}
	if page < 0 {
		page = 0
	}
	var total int64
	if err := e.db.WithContext(ctx).Model(&models.Submission{}).Where("worker_email = ?", email).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var subs []models.Submission
	err := e.db.WithContext(ctx).
		Where("worker_email = ?", email).
		Order("submitted_at DESC").
		Offset(page * size).
		Limit(size).
		Find(&subs).Error
	return subs, total, err
}

// BuyerPendingSubmissions lists submissions waiting for the buyer's judgment.
func (e *Engine) BuyerPendingSubmissions(ctx context.Context, email string) ([]models.Submission, error) {
	var subs []models.Submission
	err := e.db.WithContext(ctx).
		Where("buyer_email = ? AND status = ?", email, models.SubmissionPending).
		Order("submitted_at ASC").
		Find(&subs).Error
	return subs, err
}
