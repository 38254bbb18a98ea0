// Package gemini generates building insights through Gemini's
// OpenAI-compatible chat completion API.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/sathizz7/Street-View-Analysis/internal/domain"
	"github.com/sathizz7/Street-View-Analysis/internal/metrics"
)

const provider = "gemini"

// Config holds the vision model provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// Analyzer is a multi-modal vision analyzer backed by an OpenAI-compatible API.
type Analyzer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewAnalyzer creates a Gemini vision analyzer.
func NewAnalyzer(cfg *Config) *Analyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Analyzer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Analyze sends building attributes plus an optional street-level photo to
// the vision model and parses the structured JSON reply. A nil photo yields
// a text-only analysis.
func (a *Analyzer) Analyze(ctx context.Context, attrs map[string]string, photo []byte) (domain.Insights, error) {
	userParts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: "Analyze this building and provide comprehensive insights based on the data provided.",
		},
	}
	if len(photo) > 0 {
		userParts = append(userParts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(photo),
			},
		})
	}

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildPrompt(attrs, len(photo) > 0)},
			{Role: openai.ChatMessageRoleUser, MultiContent: userParts},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.InsightRequestsTotal.WithLabelValues(provider, a.model, "error").Inc()
		metrics.InsightErrorsTotal.WithLabelValues(provider, a.model, "api_error").Inc()
		return domain.Insights{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.InsightRequestsTotal.WithLabelValues(provider, a.model, "error").Inc()
		metrics.InsightErrorsTotal.WithLabelValues(provider, a.model, "empty_response").Inc()
		return domain.Insights{}, fmt.Errorf("empty completion response: %w", domain.ErrInsightProviderError)
	}

	metrics.InsightRequestsTotal.WithLabelValues(provider, a.model, "success").Inc()
	metrics.InsightRequestDuration.WithLabelValues(provider, a.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.InsightTokensTotal.WithLabelValues(provider, a.model, "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.InsightTokensTotal.WithLabelValues(provider, a.model, "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	content := resp.Choices[0].Message.Content
	a.logger.Debug("Vision model responded",
		zap.Int("content_length", len(content)),
		zap.Duration("latency", duration),
	)

	insights, err := parseInsights(content)
	if err != nil {
		metrics.InsightErrorsTotal.WithLabelValues(provider, a.model, "parse_error").Inc()
		return domain.Insights{}, err
	}
	return insights, nil
}

// parseInsights decodes the model reply. The model occasionally wraps the
// object in a single-element array; both shapes are accepted.
func parseInsights(content string) (domain.Insights, error) {
	var insights domain.Insights
	if err := json.Unmarshal([]byte(content), &insights); err == nil {
		return insights, nil
	}

	var list []domain.Insights
	if err := json.Unmarshal([]byte(content), &list); err == nil && len(list) > 0 {
		return list[0], nil
	}

	return domain.Insights{}, fmt.Errorf("unparseable model reply: %w", domain.ErrInsightProviderError)
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrInsightProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrInsightProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("vision API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("vision API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("vision request failed: %v: %w", err, wrap)
}
