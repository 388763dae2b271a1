// Package ledger holds the coin ledger and submission lifecycle: every
// balance move, slot count change and submission status transition runs
// through here, each compound transition as a single database transaction.
package ledger

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/saifurrahmanctg/micro-earn-server/models"
)

type Engine struct {
	db *gorm.DB
}

// nowFunc is swappable in tests.
var nowFunc = time.Now

func New(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// credit adds amount coins to a user's balance with a single atomic update.
func credit(tx *gorm.DB, email string, amount int64) error {
	res := tx.Model(&models.User{}).
		Where("email = ?", email).
		Update("coins", gorm.Expr("coins + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// debit subtracts amount coins, guarded so the balance can never go
// negative. The balance check and the decrement are one statement; there is
// no read-modify-write window.
func debit(tx *gorm.DB, email string, amount int64) error {
	res := tx.Model(&models.User{}).
		Where("email = ? AND coins >= ?", email, amount).
		Update("coins", gorm.Expr("coins - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrInsufficientFunds
	}
	return nil
}

// notify writes an outbox row inside the caller's transaction. Delivery of
// the actual email happens later in the notify worker and never affects the
// transition that produced the row.
func notify(tx *gorm.DB, toEmail, subject, message, actionRoute string) error {
	return tx.Create(&models.Notification{
		Message:     message,
		ToEmail:     toEmail,
		ActionRoute: actionRoute,
		Subject:     subject,
		Time:        time.Now(),
	}).Error
}

// Balance returns the current coin balance for a user.
func (e *Engine) Balance(ctx context.Context, email string) (int64, error) {
	var user models.User
	if err := e.db.WithContext(ctx).Select("coins").Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return user.Coins, nil
}

// NotificationsFor lists a user's notifications, newest first.
func (e *Engine) NotificationsFor(ctx context.Context, email string) ([]models.Notification, error) {
	var rows []models.Notification
	err := e.db.WithContext(ctx).
		Where("to_email = ?", email).
		Order("time DESC").
		Find(&rows).Error
	return rows, err
}

// MarkNotificationRead flags one of the user's notifications as read.
func (e *Engine) MarkNotificationRead(ctx context.Context, id uint, email string) error {
	res := e.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND to_email = ?", id, email).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
