package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mohamedkhairy/pricepulse/internal/config"
)

// TelegramNotifier sends messages via the Telegram Bot API
type TelegramNotifier struct {
	baseURL   string
	botToken  string
	channelID string
	client    *http.Client
}

// NewTelegramNotifier creates a Telegram notifier from config
func NewTelegramNotifier(cfg config.TelegramConfig) *TelegramNotifier {
	return &TelegramNotifier{
		baseURL:   "https://api.telegram.org",
		botToken:  cfg.BotToken,
		channelID: cfg.SignalChannelID,
		client: &http.Client{
			Timeout: cfg.SendTimeout,
		},
	}
}

// NewTelegramNotifierWithBaseURL overrides the API host, used by tests
func NewTelegramNotifierWithBaseURL(cfg config.TelegramConfig, baseURL string) *TelegramNotifier {
	n := NewTelegramNotifier(cfg)
	n.baseURL = baseURL
	return n
}

func (t *TelegramNotifier) Send(ctx context.Context, recipient string, text string) error {
	return t.sendMessage(ctx, recipient, text)
}

func (t *TelegramNotifier) Broadcast(ctx context.Context, text string) error {
	return t.sendMessage(ctx, t.channelID, text)
}

func (t *TelegramNotifier) sendMessage(ctx context.Context, chatID string, text string) error {
	body, err := json.Marshal(map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})
	if err != nil {
		return fmt.Errorf("telegram: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram: unexpected status %d", resp.StatusCode)
	}

	return nil
}
