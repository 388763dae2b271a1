package models

import "time"

const (
	RoleAdmin  = "admin"
	RoleBuyer  = "buyer"
	RoleWorker = "worker"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"type:varchar(16);not null;default:'worker'" json:"role"`
	Coins     int64     `gorm:"not null;default:0" json:"coins"`
	PhotoURL  *string   `gorm:"type:varchar(255)" json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	LastLogin time.Time `json:"last_login"`
}

func (User) TableName() string {
	return "users"
}

// SignupCoins is the starting balance granted at registration.
func SignupCoins(role string) int64 {
	switch role {
	case RoleWorker:
		return 10
	case RoleBuyer:
		return 50
	default:
		return 0
	}
}
