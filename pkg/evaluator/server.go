package evaluator

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/essayq-go-api/internal/scoring"
)

// Handler serves the scoring wire contract: POST with a request payload,
// JSON document with status ok/error back.
func Handler(ev Evaluator, logger zerolog.Logger) fiber.Handler {
	handlerLogger := logger.With().Str("component", "evaluator_handler").Logger()

	return func(c *fiber.Ctx) error {
		var payload scoring.Payload
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(scoring.ErrorResult(
				"INVALID_REQUEST",
				"Request body is not a valid scoring payload.",
				fiber.StatusBadRequest,
				"",
				nil,
			))
		}

		evaluation, err := ev.Evaluate(c.UserContext(), payload)
		if err != nil {
			handlerLogger.Error().Err(err).Str("request_id", payload.Meta.RequestID).Msg("evaluation failed")
			return c.Status(fiber.StatusBadGateway).JSON(scoring.ErrorResult(
				"EVALUATION_FAILED",
				"The essay could not be evaluated.",
				fiber.StatusBadGateway,
				payload.Meta.RequestID,
				map[string]any{"exception": err.Error()},
			))
		}

		return c.JSON(scoring.Result{
			"status":     scoring.StatusOK,
			"request_id": payload.Meta.RequestID,
			"score": map[string]any{
				"raw":        evaluation.Raw,
				"normalized": evaluation.Normalized,
				"scale_min":  evaluation.ScaleMin,
				"scale_max":  evaluation.ScaleMax,
				"categories": evaluation.Categories,
			},
			"feedback": evaluation.Feedback,
		})
	}
}
