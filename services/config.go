package services

import (
	"crypto/subtle"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config carries every secret and toggle the services need. Built once in
// main.go from the environment and passed by value; nothing reads ambient
// process state after construction.
type Config struct {
	DatabaseURL    string
	BotToken       string  // Telegram bot token, also the initData signing key
	CPASecretToken string  // shared secret authenticating CPA postbacks
	AdminIDs       []int64 // Telegram IDs allowed on /admin routes
	AllowedOrigins string
	TelegramAPIURL string // overridable for tests; defaults to api.telegram.org
}

// EconomyConfig names the reward-schedule constants so they are overridable
// without hunting literals. The defaults mirror the live values; no formula
// beyond them is implied.
type EconomyConfig struct {
	SignupSpins          int64   // free spins granted on registration
	ReferralBonusSpins   int64   // referrer bonus when a referral qualifies
	CostPerSpin          float64 // points debited per purchased spin
	SpinsPerDollar       float64 // postback payout → spin conversion rate
	MinPostbackSpins     int64   // clamp floor for postback rewards
	MaxPostbackSpins     int64   // clamp ceiling for postback rewards
	LegacyPostbackSpins  int64   // flat reward for the legacy GET postback
	LegacyPostbackTaskID uint    // catalog row credited by the legacy GET postback
	CPAGripTaskID        uint    // generic catalog row for CPAGrip completions
}

// DefaultEconomy is the production reward schedule.
var DefaultEconomy = EconomyConfig{
	SignupSpins:          5,
	ReferralBonusSpins:   3,
	CostPerSpin:          1000,
	SpinsPerDollar:       2, // 1 spin per $0.50
	MinPostbackSpins:     1,
	MaxPostbackSpins:     100,
	LegacyPostbackSpins:  3,
	LegacyPostbackTaskID: 1,
	CPAGripTaskID:        999,
}

// LoadConfig reads the environment into a Config. Missing required values
// are an error so main can refuse to start instead of limping along.
func LoadConfig() (Config, error) {
	cfg := Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		BotToken:       os.Getenv("BOT_TOKEN"),
		CPASecretToken: os.Getenv("CPA_SECRET_TOKEN"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		TelegramAPIURL: os.Getenv("TELEGRAM_API_URL"),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("BOT_TOKEN environment variable not set")
	}
	if cfg.CPASecretToken == "" {
		return Config{}, fmt.Errorf("CPA_SECRET_TOKEN environment variable not set")
	}
	if cfg.AllowedOrigins == "" {
		cfg.AllowedOrigins = "http://localhost:3000"
	}
	if cfg.TelegramAPIURL == "" {
		cfg.TelegramAPIURL = "https://api.telegram.org"
	}

	for _, part := range strings.Split(os.Getenv("ADMIN_IDS"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("ADMIN_IDS contains a non-numeric entry %q: %w", part, err)
		}
		cfg.AdminIDs = append(cfg.AdminIDs, id)
	}

	return cfg, nil
}

// CheckPostbackToken compares a caller-supplied postback token against the
// shared secret in constant time. Called before any database access so the
// endpoint cannot be used as an account-existence oracle.
func (c Config) CheckPostbackToken(token string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(c.CPASecretToken)) == 1
}

// IsAdmin reports whether the given Telegram ID is on the admin allow-list.
func (c Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
