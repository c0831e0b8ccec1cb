package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/ordercheck/packages/http"
)

// SlackNotifier sends notifications to Slack via webhook
type SlackNotifier struct {
	webhookURL string
	channel    string
	username   string
	iconEmoji  string
	client     *http.Client
}

type SlackOption func(*SlackNotifier)

func WithSlackChannel(channel string) SlackOption {
	return func(s *SlackNotifier) {
		s.channel = channel
	}
}

func WithSlackUsername(username string) SlackOption {
	return func(s *SlackNotifier) {
		s.username = username
	}
}

func WithSlackIconEmoji(emoji string) SlackOption {
	return func(s *SlackNotifier) {
		s.iconEmoji = emoji
	}
}

// WithSlackClient replaces the HTTP client used to reach the webhook
func WithSlackClient(c *http.Client) SlackOption {
	return func(s *SlackNotifier) {
		s.client = c
	}
}

func NewSlackNotifier(webhookURL string, opts ...SlackOption) *SlackNotifier {
	s := &SlackNotifier{
		webhookURL: webhookURL,
		username:   "ordercheck",
		iconEmoji:  ":package:",
		client:     http.NewClient(http.WithTimeout(10 * time.Second)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *SlackNotifier) Name() string {
	return "slack"
}

type slackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text,omitempty"`
	Fields []slackField `json:"fields,omitempty"`
	Footer string       `json:"footer,omitempty"`
	TS     int64        `json:"ts,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

func (s *SlackNotifier) Notify(ctx context.Context, summary *RunSummary) error {
	color := "good"
	title := "All order service checks passed"
	emoji := ":white_check_mark:"

	if summary.Summary.Failed > 0 {
		color = "danger"
		title = fmt.Sprintf("%d check(s) failed", summary.Summary.Failed)
		emoji = ":x:"
	} else if summary.IsRecovery {
		title = "Order service checks recovered"
		emoji = ":tada:"
	}

	fields := []slackField{
		{Title: "Target", Value: summary.BaseURL, Short: false},
		{Title: "Passed", Value: fmt.Sprintf("%d", summary.Summary.Passed), Short: true},
		{Title: "Failed", Value: fmt.Sprintf("%d", summary.Summary.Failed), Short: true},
		{Title: "Skipped", Value: fmt.Sprintf("%d", summary.Summary.Skipped), Short: true},
		{Title: "Success Rate", Value: fmt.Sprintf("%.1f%%", summary.Summary.SuccessRate), Short: true},
		{Title: "Duration", Value: summary.Duration.Round(time.Millisecond).String(), Short: true},
	}

	var text strings.Builder
	if len(summary.FailedResults) > 0 {
		text.WriteString("*Failed checks:*\n")
		for _, fc := range summary.FailedResults {
			fmt.Fprintf(&text, "• `%s`", fc.Name)
			if fc.Details != "" {
				fmt.Fprintf(&text, ": %s", fc.Details)
			}
			text.WriteString("\n")
		}
	}

	msg := slackMessage{
		Channel:   s.channel,
		Username:  s.username,
		IconEmoji: s.iconEmoji,
		Attachments: []slackAttachment{{
			Color:  color,
			Title:  fmt.Sprintf("%s %s", emoji, title),
			Text:   text.String(),
			Fields: fields,
			Footer: "ordercheck " + summary.RunID,
			TS:     time.Now().Unix(),
		}},
	}

	return s.send(ctx, msg)
}

func (s *SlackNotifier) send(ctx context.Context, msg slackMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	resp, err := s.client.Post(ctx, s.webhookURL, data, map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return fmt.Errorf("failed to send Slack notification: %w", err)
	}

	if resp.StatusCode != 200 {
		return fmt.Errorf("slack API returned status %d: %s", resp.StatusCode, resp.Text())
	}

	return nil
}
