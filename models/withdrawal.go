package models

import "time"

const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
)

// Withdrawal is a worker's request to cash out coins. Coins are not debited
// until an admin approves; the balance is re-validated at approval time.
type Withdrawal struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	WorkerEmail      string    `gorm:"size:191;not null;index" json:"worker_email"`
	WorkerName       string    `gorm:"size:100" json:"worker_name"`
	WithdrawalCoin   int64     `gorm:"not null" json:"withdrawal_coin"`
	WithdrawalAmount float64   `gorm:"type:decimal(15,2);not null" json:"withdrawal_amount"`
	PaymentSystem    string    `gorm:"type:varchar(32)" json:"payment_system"`
	AccountNumber    string    `gorm:"type:varchar(64)" json:"account_number"`
	ReferenceID      string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"reference_id"`
	Status           string    `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	WithdrawDate     time.Time `json:"withdraw_date"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
