package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/healthclarity/lead-intake-api/internal/models"
	"github.com/healthclarity/lead-intake-api/pkg/config"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier delivers advisory messages to the configured chat.
// When the token or chat id is missing every send is a silent no-op.
type TelegramNotifier struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewTelegramNotifier constructs the notifier with a bounded send timeout.
func NewTelegramNotifier(cfg config.TelegramConfig, logger *zap.Logger) *TelegramNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelegramNotifier{
		token:   cfg.BotToken,
		chatID:  cfg.ChatID,
		baseURL: telegramAPIBase,
		client:  &http.Client{Timeout: cfg.SendTimeout},
		logger:  logger,
	}
}

// Enabled reports whether sends will actually reach Telegram.
func (n *TelegramNotifier) Enabled() bool {
	return n.token != "" && n.chatID != ""
}

// Send posts one text message. Callers treat failures as advisory; the
// error is returned so the dispatch queue can retry, but it never reaches
// the submitting client.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	if !n.Enabled() {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id": n.chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("encode telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("send telegram message: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// LeadMessage renders the chat summary for an accepted submission.
func LeadMessage(r *models.LeadRecord) string {
	msg := fmt.Sprintf(`
🟢 %s | Health Clarity Form

👤 %s (%d, %s)
📞 %s
📍 %s

🎯 Goals: %s
🔥 Importance: %d/10
🧠 Challenges: %s
🕓 4–5 PM Comfort: %s
🗣 Languages: %s
`,
		r.Status, r.Name, r.Age, r.Gender, r.Contact, r.CityState,
		models.JoinList(r.PrimaryGoals), r.HealthImportanceScore,
		models.JoinList(r.BiggestChallenges), r.TimeComfort,
		models.JoinList(r.PreferredLanguages))
	return strings.TrimSpace(msg)
}
