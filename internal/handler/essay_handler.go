package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/essayq-go-api/internal/dto"
	"github.com/noah-isme/essayq-go-api/internal/service"
	"github.com/noah-isme/essayq-go-api/internal/utils"
)

// EssayHandler exposes the student-facing submit and state endpoints.
type EssayHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewEssayHandler builds an essay handler instance.
func NewEssayHandler(service service.SubmissionService, logger zerolog.Logger) *EssayHandler {
	return &EssayHandler{
		service: service,
		logger:  logger.With().Str("component", "essay_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *EssayHandler) Register(router fiber.Router) {
	router.Get("/:id/state", h.state)
	router.Post("/:id/submit", h.submit)
}

// submit returns the scoring document verbatim. Unlike the author endpoints
// there is no success envelope: the document's own status/status_code fields
// are the contract, and the HTTP status mirrors status_code so plain clients
// behave sensibly too.
func (h *EssayHandler) submit(c *fiber.Ctx) error {
	questionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "student identity required")
	}

	var payload dto.EssaySubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Submit(c.UserContext(), questionID, studentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	status := fiber.StatusOK
	if !result.IsOK() {
		if code := result.StatusCode(); code >= 400 {
			status = code
		} else {
			status = fiber.StatusBadGateway
		}
	}

	return c.Status(status).JSON(result)
}

func (h *EssayHandler) state(c *fiber.Ctx) error {
	questionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "student identity required")
	}

	state, err := h.service.State(c.UserContext(), questionID, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "question state retrieved", state)
}

func (h *EssayHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "question not found")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
