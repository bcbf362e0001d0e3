package models

import (
	"time"
)

// User is the economic identity: one row per Telegram account, holding the
// two fungible balances. Rows are created on first contact and never deleted.
// Balances are mutated only through services.BalanceService, so the check
// constraints below are a backstop, not the enforcement mechanism.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TelegramID int64     `gorm:"uniqueIndex;not null" json:"telegram_id"`
	Username   string    `json:"username,omitempty"`
	Spins      int64     `gorm:"not null;default:0;check:spins >= 0" json:"spins"`
	Points     float64   `gorm:"not null;default:0;check:points >= 0" json:"points"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
