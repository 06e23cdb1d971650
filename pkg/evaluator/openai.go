package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/noah-isme/essayq-go-api/internal/scoring"
)

var (
	evalDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "essayq",
		Subsystem: "evaluator",
		Name:      "duration_seconds",
		Help:      "Duration of essay evaluation requests",
	}, []string{"model"})

	evalFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "essayq",
		Subsystem: "evaluator",
		Name:      "failures_total",
		Help:      "Number of essay evaluation failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI essay evaluator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIEvaluator grades essays against the OpenAI chat completion API.
type OpenAIEvaluator struct {
	client *openai.Client
	cfg    OpenAIConfig
	logger zerolog.Logger
}

// NewOpenAIEvaluator builds a new evaluator using the provided configuration.
func NewOpenAIEvaluator(cfg OpenAIConfig) (*OpenAIEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 768
	}

	return &OpenAIEvaluator{
		client: openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey)),
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "openai_evaluator").Logger(),
	}, nil
}

// Evaluate sends the essay to OpenAI and parses the rubric scores.
func (e *OpenAIEvaluator) Evaluate(ctx context.Context, payload scoring.Payload) (Evaluation, error) {
	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(payload),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt(payload),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := e.client.CreateChatCompletion(ctx, request)
	evalDuration.WithLabelValues(e.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		evalFailures.WithLabelValues(e.cfg.Model).Inc()
		return Evaluation{}, fmt.Errorf("openai evaluate: %w", err)
	}

	if len(resp.Choices) == 0 {
		evalFailures.WithLabelValues(e.cfg.Model).Inc()
		return Evaluation{}, fmt.Errorf("no choices returned from openai")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	evaluation, err := parseEvaluation(content, payload.Config.Scoring)
	if err != nil {
		evalFailures.WithLabelValues(e.cfg.Model).Inc()
		return Evaluation{}, err
	}

	e.logger.Info().
		Str("request_id", payload.Meta.RequestID).
		Float64("raw", evaluation.Raw).
		Float64("normalized", evaluation.Normalized).
		Msg("essay evaluated")

	return evaluation, nil
}

func systemPrompt(payload scoring.Payload) string {
	instructions := strings.TrimSpace(payload.Prompt.Instructions)
	if instructions == "" {
		instructions = "You are a writing examiner. Evaluate the essay based on grammar, vocabulary, coherence & cohesion, and task response."
	}
	return instructions + " Respond with a JSON object: {\"categories\": {<category id>: <score>}, \"feedback\": <string>}. " +
		fmt.Sprintf("Score each category on a %.0f-%.0f scale.", payload.Config.Scoring.ScaleMin, payload.Config.Scoring.ScaleMax)
}

func userPrompt(payload scoring.Payload) string {
	builder := strings.Builder{}
	builder.WriteString("# Categories\n")
	for _, category := range payload.Config.Scoring.Categories {
		builder.WriteString(fmt.Sprintf("- %s (%s, weight %.2f)\n", category.ID, category.Label, category.Weight))
	}
	builder.WriteString("\n# Language\n")
	builder.WriteString(payload.Config.Language)
	builder.WriteString(fmt.Sprintf("\n\n# Limits\n%d-%d words, max %d characters\n", payload.Config.Limits.MinWords, payload.Config.Limits.MaxWords, payload.Config.Limits.MaxChars))
	builder.WriteString("\n# Essay\n")
	builder.WriteString(payload.Essay.Text)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

// parseEvaluation folds per-category scores into the weighted raw total and
// its normalized form. Scores are clamped to the configured scale.
func parseEvaluation(content string, rubric scoring.RubricConfig) (Evaluation, error) {
	type reply struct {
		Categories map[string]float64 `json:"categories"`
		Feedback   string             `json:"feedback"`
	}

	var data reply
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return Evaluation{}, fmt.Errorf("parse evaluation json: %w", err)
	}

	raw := 0.0
	for _, category := range rubric.Categories {
		score := clamp(data.Categories[category.ID], rubric.ScaleMin, rubric.ScaleMax)
		raw += score * category.Weight
	}
	raw = clamp(raw, rubric.ScaleMin, rubric.ScaleMax)

	normalized := 0.0
	if span := rubric.ScaleMax - rubric.ScaleMin; span > 0 {
		normalized = (raw - rubric.ScaleMin) / span
	}

	return Evaluation{
		Raw:        raw,
		Normalized: normalized,
		ScaleMin:   rubric.ScaleMin,
		ScaleMax:   rubric.ScaleMax,
		Categories: data.Categories,
		Feedback:   data.Feedback,
	}, nil
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
