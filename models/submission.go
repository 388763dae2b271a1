package models

import "time"

const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
	// SubmissionVoided marks submissions that were still pending when the
	// task they belong to was deleted.
	SubmissionVoided = "voided"
)

// Submission is a worker's claim of having completed one task slot.
// PayableAmount and the buyer fields are copied from the task at submission
// time so the record stays meaningful after the task changes or is deleted.
// The (task_id, worker_email) pair is unique: a worker gets one shot per task.
type Submission struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TaskID           uint      `gorm:"not null;uniqueIndex:idx_task_worker" json:"task_id"`
	TaskTitle        string    `gorm:"type:varchar(191)" json:"task_title"`
	WorkerEmail      string    `gorm:"size:191;not null;uniqueIndex:idx_task_worker;index" json:"worker_email"`
	WorkerName       string    `gorm:"size:100" json:"worker_name"`
	BuyerEmail       string    `gorm:"size:191;not null;index" json:"buyer_email"`
	BuyerName        string    `gorm:"size:100" json:"buyer_name"`
	PayableAmount    int64     `gorm:"not null" json:"payable_amount"`
	SubmissionDetail string    `gorm:"type:text" json:"submission_detail"`
	Status           string    `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	// CURRENT_DATE is reserved in SQL, so the column is submitted_at
	CurrentDate time.Time `gorm:"column:submitted_at" json:"current_date"`
}

func (Submission) TableName() string {
	return "submissions"
}
