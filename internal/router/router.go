package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/eduworld-api/internal/config"
	"github.com/noah-isme/eduworld-api/internal/handler"
	"github.com/noah-isme/eduworld-api/internal/middleware"
	"github.com/noah-isme/eduworld-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProgressHandler   *handler.ProgressHandler
	StudentHandler    *handler.StudentHandler
	ClassHandler      *handler.ClassHandler
	SubjectHandler    *handler.SubjectHandler
	UnitHandler       *handler.UnitHandler
	QuizHandler       *handler.QuizHandler
	AdminStatsHandler *handler.AdminStatsHandler
	JWTMiddleware     fiber.Handler
	// WriteLimiter throttles progress logging; nil disables it.
	WriteLimiter fiber.Handler
	// DB is probed by the health endpoint when set.
	DB handler.Pinger
	// UploadDir is served under cfg.UploadPublicPath when media is stored locally.
	UploadDir string
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	if deps.UploadDir != "" {
		app.Static(cfg.UploadPublicPath, deps.UploadDir, fiber.Static{ByteRange: true})
	}

	// Common v1 group for health & headers
	v1 := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	v1.Get("/health", handler.HealthCheck(cfg, deps.DB))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	anyRole := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleStudent)
	adminOnly := middleware.RequireRole(middleware.RoleAdmin)
	invalidateStats := func(c *fiber.Ctx) error { return c.Next() }
	if deps.AdminStatsHandler != nil {
		invalidateStats = deps.AdminStatsHandler.InvalidateOnWrite()
	}

	// Student self-service
	student := app.Group("/api/student", jwtMiddleware, middleware.RequireRole(middleware.RoleStudent))
	if deps.StudentHandler != nil {
		deps.StudentHandler.RegisterStudent(student)
	}
	if deps.ProgressHandler != nil {
		deps.ProgressHandler.RegisterStudent(student, deps.WriteLimiter)
	}

	// Catalog, readable by both roles
	if deps.ClassHandler != nil {
		deps.ClassHandler.Register(app.Group("/api/classes", jwtMiddleware, anyRole, invalidateStats), adminOnly)
	}
	if deps.SubjectHandler != nil {
		deps.SubjectHandler.Register(app.Group("/api/subjects", jwtMiddleware, anyRole, invalidateStats), adminOnly)
	}
	if deps.UnitHandler != nil {
		deps.UnitHandler.Register(app.Group("/api/units", jwtMiddleware, anyRole, invalidateStats), adminOnly)
	}
	if deps.QuizHandler != nil {
		deps.QuizHandler.Register(app.Group("/api/quizzes", jwtMiddleware, anyRole, invalidateStats), adminOnly)
	}

	// Admin
	admin := app.Group("/api/admin", jwtMiddleware, adminOnly, invalidateStats)
	if deps.AdminStatsHandler != nil {
		deps.AdminStatsHandler.Register(admin)
	}
	if deps.StudentHandler != nil {
		deps.StudentHandler.RegisterAdmin(admin)
	}
	if deps.ProgressHandler != nil {
		deps.ProgressHandler.RegisterAdmin(admin)
	}
	if deps.QuizHandler != nil {
		deps.QuizHandler.RegisterAdmin(admin)
	}
}
