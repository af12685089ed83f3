package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/ports"
)

// Notifier reports unresolved map references to a Telegram chat via bot
// API. Delivery is best effort; callers must not fail a pass on error.
type Notifier struct {
	botToken string
	chatID   string
	endpoint string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		endpoint: "https://api.telegram.org",
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// WithEndpoint points the notifier at a different host. Used by tests.
func (n *Notifier) WithEndpoint(endpoint string) *Notifier {
	n.endpoint = endpoint
	return n
}

// NotifyUnresolvedLocation posts a warning that a shared map link could
// not be matched to a known kajian location.
func (n *Notifier) NotifyUnresolvedLocation(ctx context.Context, mapURL, postCode string) error {
	if n.botToken == "" || n.chatID == "" {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	message := fmt.Sprintf("MapId untuk %s pada post https://instagram.com/p/%s tidak ditemukan", mapURL, postCode)

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimSuffix(n.endpoint, "/"), n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}
