package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduworld-api/internal/dto"
	"github.com/noah-isme/eduworld-api/internal/middleware"
	"github.com/noah-isme/eduworld-api/internal/service"
	"github.com/noah-isme/eduworld-api/internal/utils"
)

// StudentHandler serves the student's own profile and the admin student management routes.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// RegisterStudent attaches profile and enrolled class routes for the caller.
func (h *StudentHandler) RegisterStudent(router fiber.Router) {
	router.Get("/profile", h.profile)
	router.Put("/profile", h.updateProfile)
	router.Get("/classes", h.classes)
}

// RegisterAdmin attaches student management routes.
func (h *StudentHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/students", h.list)
	router.Post("/students", h.create)
	router.Get("/students/:id", h.get)
	router.Put("/students/:id", h.update)
	router.Delete("/students/:id", h.delete)
}

func (h *StudentHandler) profile(c *fiber.Ctx) error {
	studentID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	student, err := h.service.Get(c.UserContext(), studentID)
	if err != nil {
		return handleError(c, h.logger, err, "load profile")
	}

	return utils.SendSuccess(c, "profile retrieved", student)
}

func (h *StudentHandler) updateProfile(c *fiber.Ctx) error {
	studentID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.service.UpdateProfile(c.UserContext(), studentID, payload)
	if err != nil {
		return handleError(c, h.logger, err, "update profile")
	}

	return utils.SendSuccess(c, "profile updated", student)
}

func (h *StudentHandler) classes(c *fiber.Ctx) error {
	studentID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	classes, err := h.service.EnrolledClasses(c.UserContext(), studentID)
	if err != nil {
		return handleError(c, h.logger, err, "load enrolled classes")
	}

	return utils.SendSuccess(c, "classes retrieved", classes)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	students, err := h.service.List(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err, "list students")
	}

	return utils.OK(c, students, "students retrieved", fiber.Map{"count": len(students)})
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	student, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.logger, err, "fetch student")
	}

	return utils.SendSuccess(c, "student retrieved", student)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return handleError(c, h.logger, err, "create student")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", student)
}

func (h *StudentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.StudentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.service.Update(c.UserContext(), id, payload)
	if err != nil {
		return handleError(c, h.logger, err, "update student")
	}

	return utils.SendSuccess(c, "student updated", student)
}

func (h *StudentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return handleError(c, h.logger, err, "delete student")
	}

	return utils.SendSuccess(c, "student deleted", fiber.Map{"id": id})
}
