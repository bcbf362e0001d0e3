package services

import (
	"errors"
	"log"

	"wheel-reward-system/models"

	"gorm.io/gorm"
)

// UserService handles registration and lookups. Registration is the only
// place a Referral row is born; qualification is CreditService's job.
type UserService struct {
	DB      *gorm.DB
	Economy EconomyConfig
}

func NewUserService(db *gorm.DB, economy EconomyConfig) *UserService {
	return &UserService{DB: db, Economy: economy}
}

func (s *UserService) GetByTelegramID(telegramID int64) (*models.User, error) {
	var user models.User
	err := s.DB.Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates the user on first contact, granting the signup spins.
// Idempotent: an existing user is returned as-is and the referrer argument
// is ignored (a referral can only be attached at account birth).
// referrerID is the internal ID of the inviting user; self-references and
// unknown referrers are silently dropped, matching the bot's /start flow.
func (s *UserService) Register(telegramID int64, username string, referrerID *uint) (*models.User, error) {
	if existing, err := s.GetByTelegramID(telegramID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user := models.User{
		TelegramID: telegramID,
		Username:   username,
		Spins:      s.Economy.SignupSpins,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		if referrerID == nil {
			return nil
		}
		var referrer models.User
		if err := tx.Where("id = ?", *referrerID).First(&referrer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("⚠️  Referral dropped: referrer %d not found for new user %d", *referrerID, telegramID)
				return nil
			}
			return err
		}
		if referrer.ID == user.ID {
			return nil
		}
		referral := models.Referral{
			ReferrerID: referrer.ID,
			ReferredID: user.ID,
		}
		if err := tx.Create(&referral).Error; err != nil {
			return err
		}
		log.Printf("🤝 Referral registered: %d -> %d", referrer.ID, user.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
