package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"wheel-reward-system/models"
	"wheel-reward-system/services"

	"gorm.io/gorm"
)

// BroadcastClient delivers queued broadcasts through the Telegram Bot API.
// One instance per process; the queue assumes a single consumer.
type BroadcastClient struct {
	BaseURL    string
	BotToken   string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewBroadcastClient(db *gorm.DB, cfg services.Config) *BroadcastClient {
	return &BroadcastClient{
		BaseURL:  cfg.TelegramAPIURL,
		BotToken: cfg.BotToken,
		DB:       db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage posts one message to one chat.
func (c *BroadcastClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.BaseURL, c.BotToken)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read telegram response: %w", err)
	}
	var parsed sendMessageResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("unexpected telegram response (status %d)", resp.StatusCode)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram rejected message: %s", parsed.Description)
	}
	return nil
}

// ProcessPending fans each pending broadcast out to every user and records
// the outcome. Per-recipient failures are counted, not fatal: one blocked
// bot must not stall the queue.
func (c *BroadcastClient) ProcessPending(ctx context.Context) error {
	var broadcasts []models.Broadcast
	if err := c.DB.Where("status = ?", models.BroadcastStatusPending).
		Order("created_at").Find(&broadcasts).Error; err != nil {
		return fmt.Errorf("fetching pending broadcasts: %w", err)
	}

	for _, b := range broadcasts {
		var chatIDs []int64
		if err := c.DB.Model(&models.User{}).Pluck("telegram_id", &chatIDs).Error; err != nil {
			return fmt.Errorf("fetching recipients: %w", err)
		}

		var sent, failed int64
		for _, chatID := range chatIDs {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := c.SendMessage(ctx, chatID, b.Message); err != nil {
				failed++
				log.Printf("⚠️  Broadcast %s: send to %d failed: %v", b.ID, chatID, err)
				continue
			}
			sent++
		}

		status := models.BroadcastStatusSent
		if sent == 0 && failed > 0 {
			status = models.BroadcastStatusFailed
		}
		if err := c.DB.Model(&models.Broadcast{}).Where("id = ?", b.ID).
			Updates(map[string]interface{}{
				"status":       status,
				"sent_count":   sent,
				"failed_count": failed,
			}).Error; err != nil {
			return fmt.Errorf("recording broadcast outcome: %w", err)
		}
		log.Printf("📢 Broadcast %s delivered: %d sent, %d failed", b.ID, sent, failed)
	}
	return nil
}

// PollBroadcasts runs the delivery loop until ctx is cancelled.
func PollBroadcasts(ctx context.Context, client *BroadcastClient, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Println("Starting broadcast delivery worker...")
	for {
		select {
		case <-ctx.Done():
			log.Println("Broadcast worker stopped")
			return
		case <-ticker.C:
			if err := client.ProcessPending(ctx); err != nil && ctx.Err() == nil {
				log.Printf("❌ Broadcast worker error: %v", err)
			}
		}
	}
}
