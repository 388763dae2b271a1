package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/saifurrahmanctg/micro-earn-server/models"
)

// RecordPayment stores a completed coin purchase and credits the buyer in
// one transaction. The unique transaction id makes a replayed capture
// callback a conflict instead of a double credit.
func (e *Engine) RecordPayment(ctx context.Context, p *models.Payment) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p.CreatedAt = nowFunc()
		if err := tx.Create(p).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrConflict
			}
			return err
		}
		return credit(tx, p.BuyerEmail, p.CoinsPurchased)
	})
}

// PaymentsByBuyer lists a buyer's purchase history, newest first.
func (e *Engine) PaymentsByBuyer(ctx context.Context, email string) ([]models.Payment, error) {
	var rows []models.Payment
	err := e.db.WithContext(ctx).
		Where("buyer_email = ?", email).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
