package services

import (
	"fmt"
	"time"

	"wheel-reward-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// AdminStats aggregates ledger data read-only for the dashboard.
type AdminStats struct {
	TotalUsers          int64   `json:"total_users"`
	TotalTasksCompleted int64   `json:"total_tasks_completed"`
	TotalSpinsConsumed  int64   `json:"total_spins_consumed"`
	JackpotItemsWon     int64   `json:"jackpot_items_won"`
	EstimatedRevenue    float64 `json:"estimated_revenue"`
}

// TaskInput is the admin-supplied shape for a new catalog entry.
type TaskInput struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	CPANetworkID string  `json:"cpa_network_id"`
	IconURL      string  `json:"icon_url"`
	RewardSpins  int64   `json:"reward_spins"`
	CPAPayout    float64 `json:"cpa_payout"`
	IsActive     bool    `json:"is_active"`
}

// AdminService backs the administrative surface: read-only stats plus task
// catalog management, manual balance corrections and broadcast enqueueing.
type AdminService struct {
	DB      *gorm.DB
	Balance *BalanceService
}

func NewAdminService(db *gorm.DB, balance *BalanceService) *AdminService {
	return &AdminService{DB: db, Balance: balance}
}

// Stats never mutates anything; estimated revenue joins completions against
// the per-task payout estimate, and spins consumed is the size of the
// reward audit log (one row per draw).
func (s *AdminService) Stats() (AdminStats, error) {
	var stats AdminStats
	if err := s.DB.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return AdminStats{}, err
	}
	if err := s.DB.Model(&models.TaskCompletion{}).Count(&stats.TotalTasksCompleted).Error; err != nil {
		return AdminStats{}, err
	}
	if err := s.DB.Model(&models.Reward{}).Count(&stats.TotalSpinsConsumed).Error; err != nil {
		return AdminStats{}, err
	}
	if err := s.DB.Model(&models.Reward{}).
		Where("prize_type = ?", models.PrizeTypeItem).
		Count(&stats.JackpotItemsWon).Error; err != nil {
		return AdminStats{}, err
	}
	var revenue *float64
	if err := s.DB.Model(&models.Task{}).
		Select("SUM(tasks.cpa_payout)").
		Joins("INNER JOIN task_completions ON task_completions.task_id = tasks.id").
		Scan(&revenue).Error; err != nil {
		return AdminStats{}, err
	}
	if revenue != nil {
		stats.EstimatedRevenue = *revenue
	}
	return stats, nil
}

// CreateTask adds a catalog entry. The tracking code is a slug of the name
// and network id, used in postback URLs; it is uniquely indexed, so two
// tasks cannot share one.
func (s *AdminService) CreateTask(input TaskInput) (*models.Task, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("task name is required")
	}
	if input.RewardSpins < 1 {
		return nil, fmt.Errorf("reward_spins must be at least 1")
	}
	task := models.Task{
		Name:         input.Name,
		Description:  input.Description,
		CPANetworkID: input.CPANetworkID,
		TrackingCode: slug.Make(input.Name + "-" + input.CPANetworkID),
		IconURL:      input.IconURL,
		RewardSpins:  input.RewardSpins,
		CPAPayout:    input.CPAPayout,
		IsActive:     input.IsActive,
	}
	if err := s.DB.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// SetTaskActive toggles the only mutable task field.
func (s *AdminService) SetTaskActive(taskID uint, active bool) error {
	res := s.DB.Model(&models.Task{}).Where("id = ?", taskID).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// AdjustBalance applies a signed manual correction and returns the updated
// user. Skips the sufficiency guard; the column check constraint still
// rejects a correction that would overdraw.
func (s *AdminService) AdjustBalance(userID uint, field BalanceField, delta float64) (*models.User, error) {
	if err := s.Balance.Adjust(s.DB, userID, field, delta); err != nil {
		return nil, err
	}
	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnqueueBroadcast queues an announcement. A future scheduledAt parks it as
// scheduled until the scheduler promotes it; otherwise the worker picks it
// up on its next poll.
func (s *AdminService) EnqueueBroadcast(message string, scheduledAt *time.Time) (*models.Broadcast, error) {
	if message == "" {
		return nil, fmt.Errorf("broadcast message is required")
	}
	b := models.Broadcast{
		ID:      uuid.NewString(),
		Message: message,
		Status:  models.BroadcastStatusPending,
	}
	if scheduledAt != nil && scheduledAt.After(time.Now()) {
		b.Status = models.BroadcastStatusScheduled
		b.ScheduledAt = scheduledAt
	}
	if err := s.DB.Create(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}
