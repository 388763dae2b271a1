package models

import "time"

// Task is a paid micro-task posted by a buyer. RequiredWorkers counts the
// open slots left; PayableAmount is the coin reward per approved submission.
// ReservedWorkers is the slot count at creation and never changes: approvals
// decrement required_workers and rejections restore a slot, so only
// reserved_workers keeps the amount the buyer actually paid for.
type Task struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	BuyerEmail      string    `gorm:"size:191;not null;index" json:"buyer_email"`
	BuyerName       string    `gorm:"size:100" json:"buyer_name"`
	TaskTitle       string    `gorm:"type:varchar(191);not null" json:"task_title"`
	TaskDetail      string    `gorm:"type:text" json:"task_detail"`
	RequiredWorkers int       `gorm:"not null" json:"required_workers"`
	ReservedWorkers int       `gorm:"not null" json:"reserved_workers"`
	PayableAmount   int64     `gorm:"not null" json:"payable_amount"`
	CompletionDate  string    `gorm:"type:varchar(32)" json:"completion_date"`
	SubmissionInfo  string    `gorm:"type:text" json:"submission_info"`
	TaskImageURL    *string   `gorm:"type:varchar(255)" json:"task_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// TotalPayable is the coin amount reserved from the buyer for this task.
func (t Task) TotalPayable() int64 {
	return int64(t.RequiredWorkers) * t.PayableAmount
}
