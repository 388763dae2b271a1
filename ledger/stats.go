package ledger

import (
	"context"

	"github.com/saifurrahmanctg/micro-earn-server/models"
)

type BuyerStats struct {
	TotalTasks     int64 `json:"totalTasks"`
	PendingWorkers int64 `json:"pendingWorkers"`
	TotalPaid      int64 `json:"totalPaid"`
}

type WorkerStats struct {
	TotalSubmissions   int64 `json:"totalSubmissions"`
	PendingSubmissions int64 `json:"pendingSubmissions"`
	TotalEarnings      int64 `json:"totalEarnings"`
}

type AdminStats struct {
	TotalWorkers  int64   `json:"totalWorkers"`
	TotalBuyers   int64   `json:"totalBuyers"`
	TotalCoins    int64   `json:"totalCoins"`
	TotalPayments float64 `json:"totalPayments"`
}

func (e *Engine) BuyerStats(ctx context.Context, email string) (*BuyerStats, error) {
	db := e.db.WithContext(ctx)
	var stats BuyerStats
	if err := db.Model(&models.Task{}).Where("buyer_email = ?", email).Count(&stats.TotalTasks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).
		Where("buyer_email = ?", email).
		Select("COALESCE(SUM(required_workers), 0)").
		Scan(&stats.PendingWorkers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Submission{}).
		Where("buyer_email = ? AND status = ?", email, models.SubmissionApproved).
		Select("COALESCE(SUM(payable_amount), 0)").
		Scan(&stats.TotalPaid).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func (e *Engine) WorkerStats(ctx context.Context, email string) (*WorkerStats, error) {
	db := e.db.WithContext(ctx)
	var stats WorkerStats
	if err := db.Model(&models.Submission{}).Where("worker_email = ?", email).Count(&stats.TotalSubmissions).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Submission{}).
		Where("worker_email = ? AND status = ?", email, models.SubmissionPending).
		Count(&stats.PendingSubmissions).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Submission{}).
		Where("worker_email = ? AND status = ?", email, models.SubmissionApproved).
		Select("COALESCE(SUM(payable_amount), 0)").
		Scan(&stats.TotalEarnings).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func (e *Engine) AdminStats(ctx context.Context) (*AdminStats, error) {
	db := e.db.WithContext(ctx)
	var stats AdminStats
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleWorker).Count(&stats.TotalWorkers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleBuyer).Count(&stats.TotalBuyers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).
		Select("COALESCE(SUM(coins), 0)").
		Scan(&stats.TotalCoins).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Payment{}).
		Select("COALESCE(SUM(price), 0)").
		Scan(&stats.TotalPayments).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// BestWorkers returns the six top-earning workers by coin balance.
func (e *Engine) BestWorkers(ctx context.Context) ([]models.User, error) {
	var workers []models.User
	err := e.db.WithContext(ctx).
		Where("role = ?", models.RoleWorker).
		Order("coins DESC").
		Limit(6).
		Find(&workers).Error
	return workers, err
}
