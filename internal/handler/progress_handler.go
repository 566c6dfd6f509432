package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduworld-api/internal/dto"
	"github.com/noah-isme/eduworld-api/internal/middleware"
	"github.com/noah-isme/eduworld-api/internal/service"
	"github.com/noah-isme/eduworld-api/internal/utils"
)

// ProgressHandler exposes progress views and completion logging.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(service service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// RegisterStudent wires the authenticated student's own progress routes.
// writeLimit guards the two logging endpoints and may be nil.
func (h *ProgressHandler) RegisterStudent(router fiber.Router, writeLimit fiber.Handler) {
	writes := []fiber.Handler{}
	if writeLimit != nil {
		writes = append(writes, writeLimit)
	}

	router.Post("/resource-progress", append(writes, h.logResource)...)
	router.Post("/quiz-progress", append(writes, h.recordQuiz)...)
	router.Get("/progress", h.aggregated())
	router.Get("/progress-detailed", h.detailed())
	router.Get("/quiz-history", h.quizHistory())
}

// RegisterAdmin wires per-student progress views under /students/:id.
func (h *ProgressHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/students/:id/progress", h.aggregated())
	router.Get("/students/:id/progress-detailed", h.detailed())
	router.Get("/students/:id/quiz-history", h.quizHistory())
}

func (h *ProgressHandler) logResource(c *fiber.Ctx) error {
	studentID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	var payload dto.ResourceProgressRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.LogResourceProgress(c.UserContext(), studentID, payload)
	if err != nil {
		return handleError(c, h.logger, err, "log resource progress")
	}

	return utils.SendSuccess(c, "progress recorded", result)
}

func (h *ProgressHandler) recordQuiz(c *fiber.Ctx) error {
	studentID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	var payload dto.QuizResultRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.RecordQuizResult(c.UserContext(), studentID, payload)
	if err != nil {
		return handleError(c, h.logger, err, "record quiz result")
	}

	return utils.SendSuccess(c, "quiz result recorded", result)
}

// studentView loads one read model for a student.
type studentView func(ctx context.Context, studentID uint) (interface{}, error)

// view serves a read model for the :id param on admin routes and for the caller otherwise.
func (h *ProgressHandler) view(action, message string, load studentView) fiber.Handler {
	return func(c *fiber.Ctx) error {
		studentID, ok := middleware.UserID(c)
		if c.Params("id") != "" {
			id, err := parseUintParam(c, "id")
			if err != nil {
				return utils.SendError(c, fiber.StatusBadRequest, err.Error())
			}
			studentID, ok = id, true
		}
		if !ok {
			return unauthorized(c)
		}

		result, err := load(c.UserContext(), studentID)
		if err != nil {
			return handleError(c, h.logger, err, action)
		}

		return utils.SendSuccess(c, message, result)
	}
}

func (h *ProgressHandler) aggregated() fiber.Handler {
	return h.view("load progress", "progress retrieved", func(ctx context.Context, id uint) (interface{}, error) {
		return h.service.GetAggregatedProgress(ctx, id)
	})
}

func (h *ProgressHandler) detailed() fiber.Handler {
	return h.view("load detailed progress", "detailed progress retrieved", func(ctx context.Context, id uint) (interface{}, error) {
		return h.service.GetDetailedProgress(ctx, id)
	})
}

func (h *ProgressHandler) quizHistory() fiber.Handler {
	return h.view("load quiz history", "quiz history retrieved", func(ctx context.Context, id uint) (interface{}, error) {
		return h.service.GetQuizHistory(ctx, id)
	})
}
