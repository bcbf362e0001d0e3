package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"wheel-reward-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SpinResult is what the wheel endpoint returns to the client.
type SpinResult struct {
	PrizeType      models.PrizeType `json:"prize_type"`
	PrizeValue     string           `json:"prize_value"`
	RemainingSpins int64            `json:"remaining_spins"`
	Angle          int              `json:"angle"` // for the frontend animation
}

// PurchaseResult is the outcome of a points→spins conversion.
type PurchaseResult struct {
	SpinsPurchased  int64   `json:"spins_purchased"`
	RemainingSpins  int64   `json:"remaining_spins"`
	RemainingPoints float64 `json:"remaining_points"`
}

// GameService composes the balance primitives and the wheel into the two
// player-facing operations. Each operation is one GORM transaction, so a
// failure after the debit rolls the debit back too.
type GameService struct {
	DB      *gorm.DB
	Balance *BalanceService
	Wheel   *Wheel
	Economy EconomyConfig
}

func NewGameService(db *gorm.DB, balance *BalanceService, wheel *Wheel, economy EconomyConfig) *GameService {
	return &GameService{DB: db, Balance: balance, Wheel: wheel, Economy: economy}
}

// Spin debits one spin, draws a prize, logs the audit row and applies the
// prize. The debit is conditional on telegram_id so the success path costs
// no extra lookup; whether the failure was "unknown user" or "no spins" is
// resolved only after the debit already failed.
func (s *GameService) Spin(telegramID int64) (SpinResult, error) {
	var result SpinResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		ok, err := s.Balance.TryDebitByTelegram(tx, telegramID, FieldSpins, 1)
		if err != nil {
			return err
		}
		if !ok {
			var count int64
			if err := tx.Model(&models.User{}).Where("telegram_id = ?", telegramID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrUserNotFound
			}
			return ErrNoSpins
		}

		prize, _, angle, err := s.Wheel.Draw()
		if err != nil {
			return err
		}

		var user models.User
		if err := tx.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
			return err
		}

		reward := models.Reward{
			ID:         uuid.NewString(),
			UserID:     user.ID,
			PrizeType:  prize.Type,
			PrizeValue: prize.Value,
		}
		if err := tx.Create(&reward).Error; err != nil {
			return err
		}

		switch prize.Type {
		case models.PrizeTypeSpins:
			n, err := strconv.ParseInt(prize.Value, 10, 64)
			if err != nil {
				return fmt.Errorf("bad spins prize value %q: %w", prize.Value, err)
			}
			if err := s.Balance.Credit(tx, user.ID, FieldSpins, float64(n)); err != nil {
				return err
			}
		case models.PrizeTypePoints:
			v, err := strconv.ParseFloat(prize.Value, 64)
			if err != nil {
				return fmt.Errorf("bad points prize value %q: %w", prize.Value, err)
			}
			if err := s.Balance.Credit(tx, user.ID, FieldPoints, v); err != nil {
				return err
			}
		case models.PrizeTypeItem:
			// Audit row only; fulfillment is manual.
			log.Printf("🎁 Jackpot item %q won by user %d", prize.Value, user.ID)
		}

		var after models.User
		if err := tx.Where("id = ?", user.ID).First(&after).Error; err != nil {
			return err
		}
		result = SpinResult{
			PrizeType:      prize.Type,
			PrizeValue:     prize.Value,
			RemainingSpins: after.Spins,
			Angle:          angle,
		}
		return nil
	})
	if err != nil {
		return SpinResult{}, err
	}
	return result, nil
}

// BuySpins converts points to spins at Economy.CostPerSpin. The points debit
// is conditional, so concurrent purchases can never overdraw.
func (s *GameService) BuySpins(telegramID int64, amount int64) (PurchaseResult, error) {
	if amount < 1 || amount > 1000 {
		return PurchaseResult{}, fmt.Errorf("amount must be between 1 and 1000")
	}

	var result PurchaseResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		cost := s.Economy.CostPerSpin * float64(amount)
		ok, err := s.Balance.TryDebit(tx, user.ID, FieldPoints, cost)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientPoints
		}
		if err := s.Balance.Credit(tx, user.ID, FieldSpins, float64(amount)); err != nil {
			return err
		}

		var after models.User
		if err := tx.Where("id = ?", user.ID).First(&after).Error; err != nil {
			return err
		}
		result = PurchaseResult{
			SpinsPurchased:  amount,
			RemainingSpins:  after.Spins,
			RemainingPoints: after.Points,
		}
		return nil
	})
	if err != nil {
		return PurchaseResult{}, err
	}
	return result, nil
}
