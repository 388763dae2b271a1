package models

import "time"

// Payment records a completed coin purchase. TransactionID is the capture
// token returned by the payment provider.
type Payment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	BuyerEmail     string    `gorm:"size:191;not null;index" json:"buyer_email"`
	CoinsPurchased int64     `gorm:"not null" json:"coins_purchased"`
	Price          float64   `gorm:"type:decimal(15,2);not null" json:"price"`
	TransactionID  string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"transaction_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}
