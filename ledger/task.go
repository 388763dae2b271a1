package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/saifurrahmanctg/micro-earn-server/models"
)

// CreateTask reserves required_workers * payable_amount coins from the buyer
// and inserts the task in one transaction. The whole creation fails with
// ErrInsufficientFunds when the buyer cannot cover the reservation.
func (e *Engine) CreateTask(ctx context.Context, task *models.Task) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := debit(tx, task.BuyerEmail, task.TotalPayable()); err != nil {
			return err
		}
		task.ReservedWorkers = task.RequiredWorkers
		task.CreatedAt = time.Now()
		return tx.Create(task).Error
	})
}

// UpdateTask lets the owning buyer edit the descriptive fields. Slot counts
// and the payable amount are immutable after creation; money already moved
// for them.
func (e *Engine) UpdateTask(ctx context.Context, id uint, buyerEmail, title, detail, submissionInfo string) error {
	res := e.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND buyer_email = ?", id, buyerEmail).
		Updates(map[string]interface{}{
			"task_title":      title,
			"task_detail":     detail,
			"submission_info": submissionInfo,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := e.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrForbidden
	}
	return nil
}

// DeleteTask removes a task on behalf of its buyer or an admin. The buyer is
// refunded for slots that were never consumed: reserved_workers minus the
// approved submission count. required_workers cannot be used here because
// rejections restore slots and push it past the reserved count. Submissions
// still pending are voided in the same transaction so no active submission
// can outlive its task, and their workers are notified.
func (e *Engine) DeleteTask(ctx context.Context, id uint, actorEmail, actorRole string) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if actorRole != models.RoleAdmin && task.BuyerEmail != actorEmail {
			return ErrForbidden
		}

		var approved int64
		if err := tx.Model(&models.Submission{}).
			Where("task_id = ? AND status = ?", task.ID, models.SubmissionApproved).
			Count(&approved).Error; err != nil {
			return err
		}
		unconsumed := int64(task.ReservedWorkers) - approved
		if unconsumed < 0 {
			unconsumed = 0
		}
		if refund := unconsumed * task.PayableAmount; refund > 0 {
			if err := credit(tx, task.BuyerEmail, refund); err != nil {
				return err
			}
		}

		var pending []models.Submission
		if err := tx.Where("task_id = ? AND status = ?", task.ID, models.SubmissionPending).Find(&pending).Error; err != nil {
			return err
		}
		if len(pending) > 0 {
			if err := tx.Model(&models.Submission{}).
				Where("task_id = ? AND status = ?", task.ID, models.SubmissionPending).
				Update("status", models.SubmissionVoided).Error; err != nil {
				return err
			}
			for _, sub := range pending {
				msg := fmt.Sprintf("The task %q was removed by the buyer before your submission was reviewed", task.TaskTitle)
				if err := notify(tx, sub.WorkerEmail, "Task Removed", msg, "/dashboard/worker-home"); err != nil {
					return err
				}
			}
		}

		return tx.Delete(&models.Task{}, task.ID).Error
	})
}

// TaskQuery carries the worker-facing list filters.
type TaskQuery struct {
	Search    string
	Sort      string // "asc" or "desc" by payable_amount, default newest first
	MinReward int64
	MaxReward int64
}

// OpenTasks lists tasks that still have open worker slots.
func (e *Engine) OpenTasks(ctx context.Context, q TaskQuery) ([]models.Task, error) {
	db := e.db.WithContext(ctx).Where("required_workers > 0")
	if q.Search != "" {
		db = db.Where("task_title LIKE ?", "%"+q.Search+"%")
	}
	if q.MinReward > 0 {
		db = db.Where("payable_amount >= ?", q.MinReward)
	}
	if q.MaxReward > 0 {
		db = db.Where("payable_amount <= ?", q.MaxReward)
	}
	switch q.Sort {
	case "asc":
		db = db.Order("payable_amount ASC")
	case "desc":
		db = db.Order("payable_amount DESC")
	default:
		db = db.Order("created_at DESC")
	}
	var tasks []models.Task
	err := db.Find(&tasks).Error
	return tasks, err
}

// TasksByBuyer lists a buyer's own tasks, latest completion date first.
func (e *Engine) TasksByBuyer(ctx context.Context, email string) ([]models.Task, error) {
	var tasks []models.Task
	err := e.db.WithContext(ctx).
		Where("buyer_email = ?", email).
		Order("completion_date DESC").
		Find(&tasks).Error
	return tasks, err
}

// AllTasks is the admin view, every task regardless of slot count.
func (e *Engine) AllTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := e.db.WithContext(ctx).Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (e *Engine) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := e.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}
