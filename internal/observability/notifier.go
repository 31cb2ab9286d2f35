package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valter-silva-au/ai-coder/pkg/models"
	"go.uber.org/zap"
)

// DefaultNotifyTimeout bounds a single notification request.
const DefaultNotifyTimeout = 10 * time.Second

// DefaultTelegramAPI is the Telegram Bot API base URL.
const DefaultTelegramAPI = "https://api.telegram.org"

// slackTextLimit is the maximum length of a Slack section text.
const slackTextLimit = 3000

// Notifier sends the run summary to an external channel. Send never
// fails: delivery problems are logged by the notifier itself.
type Notifier interface {
	Send(ctx context.Context, message string)
}

// NewNotifierFromConfig returns a notifier for every enabled channel.
// With none enabled it returns a notifier that does nothing.
func NewNotifierFromConfig(cfg models.NotificationConfig, logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}

	var notifiers MultiNotifier
	if cfg.Telegram.Enabled {
		notifiers = append(notifiers, NewTelegramNotifier(DefaultTelegramAPI, cfg.Telegram.BotToken, cfg.Telegram.ChatID, timeout, logger))
	}
	if cfg.Slack.Enabled {
		notifiers = append(notifiers, NewSlackNotifier(cfg.Slack.WebhookURL, timeout, logger))
	}
	if len(notifiers) == 0 {
		return NoopNotifier{}
	}
	if len(notifiers) == 1 {
		return notifiers[0]
	}
	return notifiers
}

// NoopNotifier discards messages.
type NoopNotifier struct{}

// Send does nothing.
func (NoopNotifier) Send(context.Context, string) {}

// MultiNotifier sends to every notifier in order.
type MultiNotifier []Notifier

// Send delivers message to each notifier.
func (m MultiNotifier) Send(ctx context.Context, message string) {
	for _, n := range m {
		n.Send(ctx, message)
	}
}

// telegramNotifier sends messages through the Telegram Bot API.
type telegramNotifier struct {
	apiURL string
	token  string
	chatID string
	client *http.Client
	logger *zap.Logger
}

// NewTelegramNotifier creates a Notifier posting to a Telegram chat.
func NewTelegramNotifier(apiURL, token, chatID string, timeout time.Duration, logger *zap.Logger) Notifier {
	return &telegramNotifier{
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  token,
		chatID: chatID,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Send posts message as Markdown. An incomplete configuration is logged
// as a warning and nothing is sent.
func (t *telegramNotifier) Send(ctx context.Context, message string) {
	if t.token == "" || t.chatID == "" {
		t.logger.Warn("telegram settings are incomplete")
		return
	}
	if err := t.deliver(ctx, message); err != nil {
		t.logger.Warn("telegram notification failed", zap.Error(err))
		return
	}
	t.logger.Info("telegram notification sent")
}

func (t *telegramNotifier) deliver(ctx context.Context, message string) error {
	form := url.Values{
		"chat_id":    {t.chatID},
		"text":       {message},
		"parse_mode": {"Markdown"},
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		// The URL embeds the bot token; keep it out of the logs.
		return fmt.Errorf("posting to telegram: %w", redactURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("telegram returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// slackNotifier sends messages to a Slack incoming webhook.
type slackNotifier struct {
	webhookURL string
	client     *http.Client
	logger     *zap.Logger
}

// NewSlackNotifier creates a Notifier posting to the given Slack webhook URL.
func NewSlackNotifier(webhookURL string, timeout time.Duration, logger *zap.Logger) Notifier {
	return &slackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Send posts message to the webhook.
func (s *slackNotifier) Send(ctx context.Context, message string) {
	if s.webhookURL == "" {
		s.logger.Warn("slack webhook URL is not configured")
		return
	}
	if err := s.deliver(ctx, message); err != nil {
		s.logger.Warn("slack notification failed", zap.Error(err))
		return
	}
	s.logger.Info("slack notification sent")
}

func (s *slackNotifier) deliver(ctx context.Context, message string) error {
	body, err := json.Marshal(s.buildMessage(message))
	if err != nil {
		return fmt.Errorf("marshaling slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to slack webhook: %w", redactURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *slackNotifier) buildMessage(message string) slackMessage {
	text := strings.TrimSpace(message)
	if runes := []rune(text); len(runes) > slackTextLimit {
		text = string(runes[:slackTextLimit-1]) + "…"
	}
	return slackMessage{Blocks: []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "ai-coder run report"},
		},
		{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: text},
		},
	}}
}
