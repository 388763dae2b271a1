package models

import "time"

// Notification rows double as an email outbox: the ledger inserts them inside
// the same transaction as the state transition they describe, and the notify
// worker delivers the email afterwards. EmailAttempts caps redelivery.
type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	ToEmail       string    `gorm:"size:191;not null;index" json:"to_email"`
	ActionRoute   string    `gorm:"type:varchar(100)" json:"action_route"`
	Subject       string    `gorm:"type:varchar(100)" json:"-"`
	Time          time.Time `json:"time"`
	IsRead        bool      `gorm:"not null;default:false" json:"is_read"`
	EmailSent     bool      `gorm:"not null;default:false;index" json:"-"`
	EmailAttempts int       `gorm:"not null;default:0" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
