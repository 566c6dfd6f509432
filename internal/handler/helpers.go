package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduworld-api/internal/middleware"
	"github.com/noah-isme/eduworld-api/internal/service"
	"github.com/noah-isme/eduworld-api/internal/utils"
)

var errInvalidIdentifier = errors.New("invalid identifier")

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errInvalidIdentifier
	}
	return uint(parsed), nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := middleware.RequestLogger(base, c)
	return &logger
}

func unauthorized(c *fiber.Ctx) error {
	return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
}

func uploaderID(c *fiber.Ctx) *uint {
	if id, ok := middleware.UserID(c); ok {
		return &id
	}
	return nil
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) []fiber.Map {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make([]fiber.Map, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details = append(details, fiber.Map{
			"field": fieldErr.Field(),
			"rule":  fieldErr.Tag(),
		})
	}
	return details
}

// handleError maps service errors onto the response envelope. Unknown errors are logged and hidden.
func handleError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
	case errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrClassNotFound),
		errors.Is(err, service.ErrSubjectNotFound),
		errors.Is(err, service.ErrUnitNotFound),
		errors.Is(err, service.ErrQuizNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrClassNameTaken),
		errors.Is(err, service.ErrStudentIdentityTaken):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidResourceType),
		errors.Is(err, service.ErrUnitRequiresVideo),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrQuizAnswerNotInOptions),
		errors.Is(err, service.ErrUploadTooLarge),
		errors.Is(err, service.ErrUploadTypeNotAllowed),
		errors.Is(err, service.ErrUploadMissing):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(logger, c).Error().Err(err).Msg("failed to " + action)
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to "+action)
	}
}
