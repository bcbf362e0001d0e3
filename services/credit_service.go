package services

import (
	"errors"
	"fmt"
	"log"

	"wheel-reward-system/models"

	"gorm.io/gorm"
)

// ErrInvalidPayout flags a postback payout outside the acceptable range.
var ErrInvalidPayout = errors.New("invalid payout")

// errDuplicateCompletion aborts the crediting transaction when the external
// key turns out to be already recorded; translated to a duplicate result.
var errDuplicateCompletion = errors.New("duplicate completion")

// CreditService is the idempotent crediting pipeline for externally reported
// task completions. The unique index on TaskCompletion.TransactionID is the
// only dedup mechanism: replayed postbacks hit it and credit nothing.
type CreditService struct {
	DB      *gorm.DB
	Balance *BalanceService
	Economy EconomyConfig
}

func NewCreditService(db *gorm.DB, balance *BalanceService, economy EconomyConfig) *CreditService {
	return &CreditService{DB: db, Balance: balance, Economy: economy}
}

// CompleteTask records a completion under transactionID and credits
// rewardSpins, exactly once per key. The duplicate return is true when the
// key was already recorded (including when two requests race: the loser's
// insert hits the unique index and its whole transaction rolls back).
//
// Referral cascade: if the user is the referred side of an unqualified
// referral, the qualification flag is flipped by a conditional UPDATE, and
// the referrer gets the bonus only when that UPDATE claimed the flip.
func (s *CreditService) CompleteTask(userID, taskID uint, transactionID string, rewardSpins int64) (*models.TaskCompletion, bool, error) {
	var completion models.TaskCompletion

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.TaskCompletion{}).
			Where("transaction_id = ?", transactionID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errDuplicateCompletion
		}

		completion = models.TaskCompletion{
			UserID:        userID,
			TaskID:        taskID,
			TransactionID: transactionID,
		}
		if err := tx.Create(&completion).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errDuplicateCompletion
			}
			return err
		}

		if err := s.Balance.Credit(tx, userID, FieldSpins, float64(rewardSpins)); err != nil {
			return err
		}

		var referral models.Referral
		err := tx.Where("referred_id = ?", userID).First(&referral).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		// Flip-where-false, not read-then-write: under concurrent first
		// completions only one transaction claims the flip.
		res := tx.Model(&models.Referral{}).
			Where("id = ? AND is_qualified = ?", referral.ID, false).
			Update("is_qualified", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			if err := s.Balance.Credit(tx, referral.ReferrerID, FieldSpins, float64(s.Economy.ReferralBonusSpins)); err != nil {
				return err
			}
			log.Printf("✅ Referral qualified: referrer %d awarded %d spins for user %d",
				referral.ReferrerID, s.Economy.ReferralBonusSpins, userID)
		}
		return nil
	})
	if errors.Is(err, errDuplicateCompletion) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &completion, false, nil
}

// PostbackReward converts an untrusted network payout (USD) into spins,
// clamped to the configured bounds. The network is only partially trusted,
// so the value is never used raw.
func (s *CreditService) PostbackReward(payout float64) (int64, error) {
	if payout < 0 {
		return 0, ErrInvalidPayout
	}
	spins := int64(payout * s.Economy.SpinsPerDollar)
	if spins < s.Economy.MinPostbackSpins {
		spins = s.Economy.MinPostbackSpins
	}
	if spins > s.Economy.MaxPostbackSpins {
		spins = s.Economy.MaxPostbackSpins
	}
	return spins, nil
}

// CPAGripTransactionKey synthesizes the dedup key for networks that send no
// native transaction id. Deliberately limits each offer to one completion
// per user.
func CPAGripTransactionKey(offerID string, telegramID int64) string {
	return fmt.Sprintf("cpagrip_%s_%d", offerID, telegramID)
}
