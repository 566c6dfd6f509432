package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduworld-api/internal/dto"
	"github.com/noah-isme/eduworld-api/internal/middleware"
	"github.com/noah-isme/eduworld-api/internal/service"
	"github.com/noah-isme/eduworld-api/internal/utils"
)

// QuizHandler wires quiz endpoints.
type QuizHandler struct {
	service service.QuizService
	logger  zerolog.Logger
}

// NewQuizHandler constructs the handler.
func NewQuizHandler(service service.QuizService, logger zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		service: service,
		logger:  logger.With().Str("component", "quiz_handler").Logger(),
	}
}

// Register attaches quiz routes. Students only see enabled quizzes without answers.
func (h *QuizHandler) Register(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("/:unitId", h.listByUnit)
	router.Post("", adminOnly, h.create)
	router.Put("/:id", adminOnly, h.update)
	router.Patch("/:id/toggle", adminOnly, h.toggle)
	router.Delete("/:id", adminOnly, h.delete)
}

// RegisterAdmin attaches the flat quiz listing.
func (h *QuizHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/quizzes", h.listAll)
}

func (h *QuizHandler) listByUnit(c *fiber.Ctx) error {
	unitID, err := parseUintParam(c, "unitId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	quizzes, err := h.service.ListByUnit(c.UserContext(), unitID, middleware.IsAdmin(c))
	if err != nil {
		return handleError(c, h.logger, err, "list quizzes")
	}

	return utils.SendSuccess(c, "quizzes retrieved", quizzes)
}

func (h *QuizHandler) listAll(c *fiber.Ctx) error {
	quizzes, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err, "list quizzes")
	}

	return utils.OK(c, quizzes, "quizzes retrieved", fiber.Map{"count": len(quizzes)})
}

func (h *QuizHandler) create(c *fiber.Ctx) error {
	var payload dto.QuizCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	quiz, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return handleError(c, h.logger, err, "create quiz")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "quiz created", quiz)
}

func (h *QuizHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.QuizUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	quiz, err := h.service.Update(c.UserContext(), id, payload)
	if err != nil {
		return handleError(c, h.logger, err, "update quiz")
	}

	return utils.SendSuccess(c, "quiz updated", quiz)
}

func (h *QuizHandler) toggle(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	quiz, err := h.service.Toggle(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.logger, err, "toggle quiz")
	}

	return utils.SendSuccess(c, "quiz toggled", quiz)
}

func (h *QuizHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return handleError(c, h.logger, err, "delete quiz")
	}

	return utils.SendSuccess(c, "quiz deleted", fiber.Map{"id": id})
}
