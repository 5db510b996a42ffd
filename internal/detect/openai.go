package detect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	altai "github.com/sashabaranov/go-openai"

	"logdam/internal/util"
)

var ErrDisabled = errors.New("openai disabled")

const maxPromptLines = 50

type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
}

func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey, baseURL: baseURL, model: model, timeout: timeout}
}

type aiResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// SuggestStrategy asks the model which of labels fits the sample best.
// Lines are redacted before they leave the process.
func (c *OpenAIClient) SuggestStrategy(ctx context.Context, lines, labels []string) (Guess, error) {
	if c == nil || c.apiKey == "" {
		return Guess{}, ErrDisabled
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.call(ctx, buildStrategyPrompt(lines, labels))
	if err != nil {
		return Guess{}, fmt.Errorf("detect: openai: %w", err)
	}
	var out aiResponse
	if err := json.Unmarshal([]byte(resp), &out); err != nil {
		return Guess{}, fmt.Errorf("detect: openai reply: %w", err)
	}
	for _, l := range labels {
		if strings.EqualFold(l, strings.TrimSpace(out.Label)) {
			return Guess{Label: l, Confidence: out.Confidence}, nil
		}
	}
	return Guess{}, fmt.Errorf("detect: openai suggested unknown strategy %q", out.Label)
}

func (c *OpenAIClient) call(ctx context.Context, prompt string) (string, error) {
	cfg := altai.DefaultConfig(c.apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	cli := altai.NewClientWithConfig(cfg)
	resp, err := cli.CreateChatCompletion(ctx, altai.ChatCompletionRequest{
		Model: c.model,
		Messages: []altai.ChatCompletionMessage{
			{Role: altai.ChatMessageRoleSystem, Content: "You classify log lines into one of a fixed set of parsing strategies and return ONLY strict JSON. No prose, no code fences."},
			{Role: altai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:    0.0,
		ResponseFormat: &altai.ChatCompletionResponseFormat{Type: altai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildStrategyPrompt(lines, labels []string) string {
	n := len(lines)
	if n > maxPromptLines {
		n = maxPromptLines
	}
	var b strings.Builder
	b.WriteString("Pick the parsing strategy that best fits the log lines below. ")
	b.WriteString("Strategies: " + strings.Join(labels, ", ") + ". ")
	b.WriteString("Default splits on tabs. Return {label, confidence, reason}.\n")
	b.WriteString("Lines:\n")
	for i := 0; i < n; i++ {
		b.WriteString(util.RedactPII(lines[i]))
		b.WriteByte('\n')
	}
	return b.String()
}
