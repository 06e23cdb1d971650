package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	bodyPreviewLimit = 500
	maxResponseBytes = 1 << 20
)

var (
	scoringDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "essayq",
		Subsystem: "scoring",
		Name:      "request_duration_seconds",
		Help:      "Duration of scoring backend requests",
	}, []string{"outcome"})

	scoringFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "essayq",
		Subsystem: "scoring",
		Name:      "request_failures_total",
		Help:      "Number of scoring backend failures by error code",
	}, []string{"code"})
)

// Client performs one scoring round-trip. Implementations never return a Go
// error: every failure is folded into the uniform error document so nothing
// escapes past the submission workflow.
type Client interface {
	Score(ctx context.Context, url string, payload Payload) Result
}

// HTTPClient calls the scoring backend over HTTP with a bounded timeout.
type HTTPClient struct {
	client *http.Client
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewHTTPClient builds a scoring client. A zero timeout falls back to 20s so
// a submission can never hang the handling request indefinitely.
func NewHTTPClient(timeout time.Duration, logger zerolog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "scoring_client").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/essayq-go-api/internal/scoring"),
	}
}

// Score posts the payload to the backend and normalizes the answer into a
// Result tagged ok or error.
func (c *HTTPClient) Score(parent context.Context, url string, payload Payload) Result {
	requestID := payload.Meta.RequestID

	url = strings.TrimSpace(url)
	if url == "" {
		c.logger.Error().Str("request_id", requestID).Msg("scoring backend url is not configured")
		scoringFailures.WithLabelValues(CodeBackendNotConfigured).Inc()
		return ErrorResult(CodeBackendNotConfigured, "Scoring service URL is not configured.", http.StatusInternalServerError, requestID, nil)
	}

	ctx, span := c.tracer.Start(parent, "scoring.score", trace.WithAttributes(
		attribute.String("scoring.url", url),
		attribute.String("scoring.request_id", requestID),
	))
	defer span.End()

	c.logger.Info().Str("url", url).Str("request_id", requestID).Msg("calling scoring backend")

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		scoringFailures.WithLabelValues(CodeBackendUnavailable).Inc()
		return c.unavailable(url, requestID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		scoringFailures.WithLabelValues(CodeBackendUnavailable).Inc()
		return c.unavailable(url, requestID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		scoringDuration.WithLabelValues("transport_error").Observe(time.Since(start).Seconds())
		scoringFailures.WithLabelValues(CodeBackendUnavailable).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error().Err(err).Str("url", url).Str("request_id", requestID).Msg("transport error calling scoring backend")
		return c.unavailable(url, requestID, err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	scoringDuration.WithLabelValues("response").Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("scoring.status_code", resp.StatusCode))

	c.logger.Info().
		Str("url", url).
		Str("request_id", requestID).
		Int("status_code", resp.StatusCode).
		Str("body_preview", preview(raw, 300)).
		Msg("scoring backend HTTP response")

	var result Result
	if readErr != nil || json.Unmarshal(raw, &result) != nil || result == nil {
		scoringFailures.WithLabelValues(CodeInvalidResponse).Inc()
		span.SetStatus(codes.Error, "non-json scoring response")
		c.logger.Error().
			Str("url", url).
			Str("request_id", requestID).
			Int("status_code", resp.StatusCode).
			Str("body_preview", preview(raw, 300)).
			Msg("scoring backend returned non-JSON body")

		statusCode := resp.StatusCode
		if statusCode == 0 {
			statusCode = http.StatusInternalServerError
		}

		return ErrorResult(CodeInvalidResponse, "Scoring service returned an invalid response.", statusCode, requestID, map[string]any{
			"text": preview(raw, bodyPreviewLimit),
			"url":  url,
		})
	}

	// An HTTP error status forces an error tag, without clobbering whatever
	// fields the backend did provide.
	if resp.StatusCode >= http.StatusBadRequest && result.Status() != StatusError {
		result.SetDefault("status", StatusError)
		result.SetDefault("status_code", resp.StatusCode)
	}

	result.SetDefault("request_id", requestID)

	if code := result.ErrorCode(); code != "" {
		scoringFailures.WithLabelValues(code).Inc()
	}

	c.logger.Info().
		Str("url", url).
		Str("request_id", requestID).
		Str("status", result.Status()).
		Int("status_code", resp.StatusCode).
		Str("error_code", result.ErrorCode()).
		Msg("scoring backend response parsed")

	return result
}

func (c *HTTPClient) unavailable(url, requestID string, err error) Result {
	return ErrorResult(CodeBackendUnavailable, "Scoring service is currently unavailable. Please try again later.", http.StatusServiceUnavailable, requestID, map[string]any{
		"exception": err.Error(),
		"url":       url,
	})
}

func preview(body []byte, limit int) string {
	text := string(body)
	if len(text) > limit {
		return text[:limit]
	}
	return text
}
