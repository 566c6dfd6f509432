package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduworld-api/internal/service"
	"github.com/noah-isme/eduworld-api/internal/utils"
)

// AdminStatsHandler serves platform counters.
type AdminStatsHandler struct {
	service service.AdminStatsService
	logger  zerolog.Logger
}

// NewAdminStatsHandler constructs the handler.
func NewAdminStatsHandler(service service.AdminStatsService, logger zerolog.Logger) *AdminStatsHandler {
	return &AdminStatsHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_stats_handler").Logger(),
	}
}

// Register attaches the stats route.
func (h *AdminStatsHandler) Register(router fiber.Router) {
	router.Get("/stats", h.stats)
}

// InvalidateOnWrite drops the cached counters once a mutating request succeeds.
func (h *AdminStatsHandler) InvalidateOnWrite() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil || c.Method() == fiber.MethodGet || c.Response().StatusCode() >= fiber.StatusMultipleChoices {
			return err
		}
		h.service.Invalidate(c.UserContext())
		return nil
	}
}

func (h *AdminStatsHandler) stats(c *fiber.Ctx) error {
	stats, err := h.service.GetStats(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err, "load stats")
	}

	return utils.SendSuccess(c, "stats retrieved", stats)
}
