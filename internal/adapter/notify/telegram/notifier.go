// Package telegram implements ports.Notifier via the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cafetip/internal/core/ports"

	"github.com/rs/zerolog"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier sends tip notifications to a cafe's Telegram chat. Delivery is
// best-effort; callers treat errors as log-only.
type Notifier struct {
	botToken   string
	apiBase    string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAPIBase overrides the Telegram API origin. Used by tests.
func WithAPIBase(base string) Option {
	return func(n *Notifier) { n.apiBase = base }
}

// NewNotifier creates a Telegram notifier.
func NewNotifier(botToken string, timeout time.Duration, log zerolog.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		botToken:   botToken,
		apiBase:    defaultAPIBase,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NotifyTip sends a formatted tip message to the given chat.
func (n *Notifier) NotifyTip(ctx context.Context, chatID string, tip ports.TipNotification) error {
	payload := sendMessageRequest{
		ChatID: chatID,
		Text:   formatTipMessage(tip),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call telegram: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var result sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode telegram response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram rejected message: %s", result.Description)
	}

	n.log.Debug().Str("chat_id", chatID).Msg("tip notification delivered")
	return nil
}

func formatTipMessage(tip ports.TipNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New tip for %s!\n", tip.CafeName)
	fmt.Fprintf(&b, "Amount: %d Toman\n", tip.Amount)
	if tip.Rating != nil {
		fmt.Fprintf(&b, "Rating: %s\n", strings.Repeat("⭐", *tip.Rating))
	}
	if tip.Nickname != nil && *tip.Nickname != "" {
		fmt.Fprintf(&b, "From: %s\n", *tip.Nickname)
	}
	if tip.Comment != nil && *tip.Comment != "" {
		fmt.Fprintf(&b, "Comment: %s\n", *tip.Comment)
	}
	return strings.TrimRight(b.String(), "\n")
}
