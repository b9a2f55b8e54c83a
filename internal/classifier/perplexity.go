package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/domain"
)

const systemPrompt = "You are an expert AI that classifies user activity based on a JSON object. " +
	"I will provide an 'app' and a 'title'. Your response must be a valid JSON object " +
	"containing a single key, 'category', with a value of either 'Work' or 'Private'. " +
	"Do not include any other text, explanations, or markdown. " +
	"If the category is ambiguous, always default to 'Private'."

// PerplexityClient labels browser activity through a chat-completions
// endpoint. Every failure mode resolves to Private; callers never see an
// error from this type.
type PerplexityClient struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	logger   zerolog.Logger
}

// NewPerplexityClient constructs a client with a bounded per-call timeout.
func NewPerplexityClient(endpoint, apiKey, model string, timeout time.Duration, logger zerolog.Logger) *PerplexityClient {
	return &PerplexityClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "ai_labeler").Logger(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Label asks the upstream model for a Work/Private decision. Any transport
// error, non-2xx status, or response that is not exactly a single-key
// category object degrades to Private.
func (p *PerplexityClient) Label(ctx context.Context, app, title string) domain.Category {
	category, err := p.call(ctx, app, title)
	if err != nil {
		recordLabelFailure()
		p.logger.Warn().Err(err).Str("app", app).Msg("ai classification degraded to Private")
		return domain.CategoryPrivate
	}
	return category
}

func (p *PerplexityClient) call(ctx context.Context, app, title string) (domain.Category, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("ai api key not configured")
	}

	userInput, err := json.Marshal(map[string]string{"app": app, "title": title})
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(userInput)},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	observeLabelDuration(time.Since(start))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ai endpoint status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}

	content := strings.TrimSpace(out.Choices[0].Message.Content)

	var label struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(content), &label); err != nil {
		return "", fmt.Errorf("unparseable label %q: %w", content, err)
	}

	switch label.Category {
	case string(domain.CategoryWork):
		return domain.CategoryWork, nil
	case string(domain.CategoryPrivate):
		return domain.CategoryPrivate, nil
	default:
		return "", fmt.Errorf("unexpected label %q", label.Category)
	}
}
