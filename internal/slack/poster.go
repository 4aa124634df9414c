package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/chilly/internal/dataset"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// PostRunSummary posts a dataset run summary to the configured channel.
// Returns the message timestamp.
func (p *Poster) PostRunSummary(ctx context.Context, m *dataset.Manifest) (string, error) {
	text := formatRunSummary(m)

	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{
						"type": "mrkdwn",
						"text": "run " + m.RunID.String(),
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted run summary to slack", "ts", slackResp.TS, "run_id", m.RunID)
	return slackResp.TS, nil
}

func formatRunSummary(m *dataset.Manifest) string {
	var sb strings.Builder
	r := m.Result

	fmt.Fprintf(&sb, "*Dataset generated* (profile `%s`, %s)\n", m.Profile, m.FinishedAt.Sub(m.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(&sb, "*Input:* %s (%d channels, %d files)\n", m.InputDir, r.Channels, r.Files)
	fmt.Fprintf(&sb, "*Conversations:* %d segmented, %d complete, %d under %d chars\n",
		r.Conversations, r.Complete, r.Survivors, m.Options.TextMaxLen)
	fmt.Fprintf(&sb, "*Split:* %d train / %d val", r.Train, r.Val)

	if r.Train < m.Options.TrainLen {
		fmt.Fprintf(&sb, "\n_Train set is short: %d of %d requested._", r.Train, m.Options.TrainLen)
	}
	return sb.String()
}
