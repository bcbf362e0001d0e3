package services

import (
	"log"
	"time"

	"wheel-reward-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartBroadcastScheduler promotes due scheduled broadcasts to pending so
// the delivery worker picks them up. The promotion is one conditional
// UPDATE, so overlapping runs cannot double-promote.
func (s *AdminService) StartBroadcastScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(30*time.Second),
		gocron.NewTask(func() {
			res := s.DB.Model(&models.Broadcast{}).
				Where("status = ? AND scheduled_at <= ?", models.BroadcastStatusScheduled, time.Now()).
				Update("status", models.BroadcastStatusPending)
			if res.Error != nil {
				log.Printf("[Scheduler] DB error promoting broadcasts: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("✅ Promoted %d scheduled broadcast(s) to pending", res.RowsAffected)
			}
		}),
	)
}
