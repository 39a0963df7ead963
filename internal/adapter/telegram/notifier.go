// Package telegram delivers chat messages through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

// Notifier sends messages with inline keyboards via sendMessage.
type Notifier struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

type replyMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ChatID      int64        `json:"chat_id"`
	Text        string       `json:"text"`
	ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewNotifier builds a notifier for the bot token against the API base url.
func NewNotifier(baseURL, token string, logger *slog.Logger) (*Notifier, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse telegram url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("telegram url must be absolute")
	}
	parsed.Path = path.Join(parsed.Path, "bot"+token, "sendMessage")

	return &Notifier{
		endpoint:   parsed.String(),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}, nil
}

// Send delivers the message. Any failure is wrapped in ErrDelivery.
func (n *Notifier) Send(ctx context.Context, msg model.Message) error {
	body, err := json.Marshal(newRequest(msg))
	if err != nil {
		return fmt.Errorf("%w: encode message: %v", domainErrors.ErrDelivery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrDelivery, err)
	}
	defer resp.Body.Close()

	var out apiResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(data, &out)

	if resp.StatusCode != http.StatusOK || !out.OK {
		n.logger.Warn("telegram rejected message",
			slog.Int64("chat_id", msg.ChatID),
			slog.Int("status", resp.StatusCode),
			slog.String("description", out.Description),
		)
		return fmt.Errorf("%w: chat %d: %s", domainErrors.ErrDelivery, msg.ChatID, resp.Status)
	}
	return nil
}

func newRequest(msg model.Message) sendMessageRequest {
	req := sendMessageRequest{ChatID: msg.ChatID, Text: msg.Text}
	if len(msg.Buttons) == 0 {
		return req
	}

	// one button per row
	keyboard := make([][]inlineButton, 0, len(msg.Buttons))
	for _, b := range msg.Buttons {
		btn := inlineButton{Text: b.Label}
		if b.URL != "" {
			btn.URL = b.URL
		} else {
			btn.CallbackData = b.Action.String()
		}
		keyboard = append(keyboard, []inlineButton{btn})
	}
	req.ReplyMarkup = &replyMarkup{InlineKeyboard: keyboard}
	return req
}
