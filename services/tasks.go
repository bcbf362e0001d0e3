package services

import (
	"errors"

	"wheel-reward-system/models"

	"gorm.io/gorm"
)

// TaskService reads the offer catalog. Writes belong to AdminService.
type TaskService struct {
	DB *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{DB: db}
}

// ListActive returns active tasks, deduplicated by (name, network) so the
// client never shows the same offer twice.
func (s *TaskService) ListActive() ([]models.Task, error) {
	var tasks []models.Task
	if err := s.DB.Where("is_active = ?", true).Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}

	type key struct {
		name    string
		network string
	}
	seen := make(map[key]bool, len(tasks))
	unique := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		k := key{t.Name, t.CPANetworkID}
		if !seen[k] {
			seen[k] = true
			unique = append(unique, t)
		}
	}
	return unique, nil
}

func (s *TaskService) GetByTrackingCode(code string) (*models.Task, error) {
	var task models.Task
	err := s.DB.Where("tracking_code = ?", code).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}
