package services

import (
	"fmt"

	"wheel-reward-system/models"

	"gorm.io/gorm"
)

// BalanceField selects which of the two balances an operation touches.
type BalanceField string

const (
	FieldSpins  BalanceField = "spins"
	FieldPoints BalanceField = "points"
)

func (f BalanceField) column() (string, error) {
	switch f {
	case FieldSpins:
		return "spins", nil
	case FieldPoints:
		return "points", nil
	}
	return "", fmt.Errorf("unknown balance field %q", string(f))
}

// BalanceService is the only code allowed to mutate user balances. Every
// mutation is a single UPDATE statement, so per-row atomicity in the store
// is the synchronization point: there is no read-then-write window for
// concurrent requests to race through, and no in-process locking.
type BalanceService struct {
	DB *gorm.DB
}

func NewBalanceService(db *gorm.DB) *BalanceService {
	return &BalanceService{DB: db}
}

// TryDebit decrements field by amount only if the current value covers it.
// Returns false when the balance was insufficient (the row is untouched);
// that is the expected backpressure signal, not an error. Runs on tx so
// orchestrators can group it with their follow-up writes.
func (s *BalanceService) TryDebit(tx *gorm.DB, userID uint, field BalanceField, amount float64) (bool, error) {
	col, err := field.column()
	if err != nil {
		return false, err
	}
	res := tx.Model(&models.User{}).
		Where("id = ? AND "+col+" >= ?", userID, amount).
		UpdateColumn(col, gorm.Expr(col+" - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// TryDebitByTelegram is TryDebit keyed by Telegram ID, used by the spin path
// so the common success case costs exactly one statement and no lookup.
func (s *BalanceService) TryDebitByTelegram(tx *gorm.DB, telegramID int64, field BalanceField, amount float64) (bool, error) {
	col, err := field.column()
	if err != nil {
		return false, err
	}
	res := tx.Model(&models.User{}).
		Where("telegram_id = ? AND "+col+" >= ?", telegramID, amount).
		UpdateColumn(col, gorm.Expr(col+" - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Credit increments field unconditionally. Fails only if the user row does
// not exist.
func (s *BalanceService) Credit(tx *gorm.DB, userID uint, field BalanceField, amount float64) error {
	col, err := field.column()
	if err != nil {
		return err
	}
	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn(col, gorm.Expr(col+" + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Adjust applies a signed delta with no floor check. Privileged: only the
// admin surface reaches it, for manual corrections.
func (s *BalanceService) Adjust(tx *gorm.DB, userID uint, field BalanceField, delta float64) error {
	col, err := field.column()
	if err != nil {
		return err
	}
	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn(col, gorm.Expr(col+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
