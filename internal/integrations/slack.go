// Package integrations pushes task updates to Slack and Google Sheets.
package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var ErrInvalidWebhook = errors.New("webhook must be an absolute http(s) URL")

type SlackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type SlackBlock struct {
	Type     string      `json:"type"`
	Text     *SlackText  `json:"text,omitempty"`
	Elements []SlackText `json:"elements,omitempty"`
}

// SlackMessage is an incoming-webhook payload with block kit sections.
type SlackMessage struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

// TaskUpdateMessage formats a task notification sent on behalf of from.
func TaskUpdateMessage(taskTitle, message, from string, at time.Time) SlackMessage {
	return SlackMessage{
		Text: "🎯 OurTasker Update",
		Blocks: []SlackBlock{
			{
				Type: "section",
				Text: &SlackText{Type: "mrkdwn", Text: fmt.Sprintf("*Task Update:* %s\n%s", taskTitle, message)},
			},
			{
				Type: "context",
				Elements: []SlackText{{
					Type: "mrkdwn",
					Text: fmt.Sprintf("From: %s | Time: %s", from, at.Format(time.RFC1123)),
				}},
			},
		},
	}
}

func testMessage() SlackMessage {
	return SlackMessage{
		Text: "🎯 OurTasker Integration Test",
		Blocks: []SlackBlock{{
			Type: "section",
			Text: &SlackText{
				Type: "mrkdwn",
				Text: "*Integration Test Successful!*\nYour OurTasker notifications are now connected to this Slack channel.",
			},
		}},
	}
}

type Slack struct {
	client *http.Client
}

func NewSlack(timeout time.Duration) *Slack {
	return &Slack{client: &http.Client{Timeout: timeout}}
}

// NewSlackWithHTTPClient is used by tests.
func NewSlackWithHTTPClient(c *http.Client) *Slack {
	return &Slack{client: c}
}

func (s *Slack) Post(ctx context.Context, webhook string, msg SlackMessage) error {
	u, err := url.Parse(webhook)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return ErrInvalidWebhook
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
