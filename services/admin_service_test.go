package services

import (
	"testing"
	"time"

	"wheel-reward-system/models"

	"github.com/google/uuid"
)

func TestAdminStatsAggregation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAdminService(db, NewBalanceService(db))

	u1 := createTestUser(t, db, 100, 0, 0)
	u2 := createTestUser(t, db, 200, 0, 0)

	task := models.Task{Name: "Survey", CPANetworkID: "net1", TrackingCode: "survey-net1", RewardSpins: 2, CPAPayout: 1.5, IsActive: true}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}
	for i, u := range []*models.User{u1, u2} {
		tc := models.TaskCompletion{UserID: u.ID, TaskID: task.ID, TransactionID: uuid.NewString()}
		if err := db.Create(&tc).Error; err != nil {
			t.Fatalf("create completion %d: %v", i, err)
		}
	}
	rewards := []models.Reward{
		{ID: uuid.NewString(), UserID: u1.ID, PrizeType: models.PrizeTypePoints, PrizeValue: "100"},
		{ID: uuid.NewString(), UserID: u1.ID, PrizeType: models.PrizeTypeItem, PrizeValue: "iphone"},
		{ID: uuid.NewString(), UserID: u2.ID, PrizeType: models.PrizeTypeSpins, PrizeValue: "1"},
	}
	for _, r := range rewards {
		if err := db.Create(&r).Error; err != nil {
			t.Fatalf("create reward: %v", err)
		}
	}

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalUsers != 2 {
		t.Errorf("total users = %d, want 2", stats.TotalUsers)
	}
	if stats.TotalTasksCompleted != 2 {
		t.Errorf("completions = %d, want 2", stats.TotalTasksCompleted)
	}
	if stats.TotalSpinsConsumed != 3 {
		t.Errorf("spins consumed = %d, want 3", stats.TotalSpinsConsumed)
	}
	if stats.JackpotItemsWon != 1 {
		t.Errorf("jackpots = %d, want 1", stats.JackpotItemsWon)
	}
	if stats.EstimatedRevenue != 3.0 {
		t.Errorf("revenue = %f, want 3.0", stats.EstimatedRevenue)
	}
}

func TestCreateTaskBuildsTrackingCode(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAdminService(db, NewBalanceService(db))

	task, err := svc.CreateTask(TaskInput{
		Name:         "Download App",
		CPANetworkID: "ogads_456",
		RewardSpins:  3,
		CPAPayout:    0.8,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.TrackingCode != "download-app-ogads_456" {
		t.Fatalf("tracking code = %q", task.TrackingCode)
	}

	// Same name+network collides on the unique tracking code.
	if _, err := svc.CreateTask(TaskInput{Name: "Download App", CPANetworkID: "ogads_456", RewardSpins: 3}); err == nil {
		t.Fatal("duplicate tracking code accepted")
	}
}

func TestCreateTaskValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAdminService(db, NewBalanceService(db))

	if _, err := svc.CreateTask(TaskInput{RewardSpins: 1}); err == nil {
		t.Fatal("empty name accepted")
	}
	if _, err := svc.CreateTask(TaskInput{Name: "x", RewardSpins: 0}); err == nil {
		t.Fatal("zero reward accepted")
	}
}

func TestSetTaskActive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAdminService(db, NewBalanceService(db))

	task, err := svc.CreateTask(TaskInput{Name: "Survey", CPANetworkID: "net1", RewardSpins: 1, IsActive: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.SetTaskActive(task.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	var reloaded models.Task
	if err := db.First(&reloaded, task.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.IsActive {
		t.Fatal("task still active")
	}

	if err := svc.SetTaskActive(9999, true); err != ErrTaskNotFound {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}
}

func TestAdjustBalanceReturnsUpdatedUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAdminService(db, NewBalanceService(db))
	user := createTestUser(t, db, 100, 10, 0)

	updated, err := svc.AdjustBalance(user.ID, FieldSpins, -3)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if updated.Spins != 7 {
		t.Fatalf("spins = %d, want 7", updated.Spins)
	}

	if _, err := svc.AdjustBalance(9999, FieldSpins, 1); err != ErrUserNotFound {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestEnqueueBroadcastStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAdminService(db, NewBalanceService(db))

	now, err := svc.EnqueueBroadcast("hello", nil)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if now.Status != models.BroadcastStatusPending {
		t.Fatalf("status = %s, want pending", now.Status)
	}

	future := time.Now().Add(time.Hour)
	later, err := svc.EnqueueBroadcast("later", &future)
	if err != nil {
		t.Fatalf("enqueue scheduled: %v", err)
	}
	if later.Status != models.BroadcastStatusScheduled {
		t.Fatalf("status = %s, want scheduled", later.Status)
	}

	if _, err := svc.EnqueueBroadcast("", nil); err == nil {
		t.Fatal("empty message accepted")
	}
}
