package models

import "time"

type Report struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReporterEmail string    `gorm:"size:191;not null;index" json:"reporter_email"`
	ReportedEmail string    `gorm:"size:191" json:"reported_email"`
	TaskID        *uint     `json:"task_id,omitempty"`
	Reason        string    `gorm:"type:text;not null" json:"reason"`
	ReportDate    time.Time `json:"report_date"`
}

func (Report) TableName() string {
	return "reports"
}
