package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduworld-api/internal/dto"
	"github.com/noah-isme/eduworld-api/internal/handler"
)

type stubStatsService struct {
	stats       dto.AdminStatsResponse
	invalidated int
}

func (s *stubStatsService) GetStats(ctx context.Context) (dto.AdminStatsResponse, error) {
	return s.stats, nil
}

func (s *stubStatsService) Invalidate(ctx context.Context) {
	s.invalidated++
}

func TestAdminStatsInvalidateOnWrite(t *testing.T) {
	svc := &stubStatsService{stats: dto.AdminStatsResponse{Classes: 3}}
	h := handler.NewAdminStatsHandler(svc, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/classes", h.InvalidateOnWrite())
	group.Get("", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	group.Post("", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })
	group.Post("/taken", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusConflict) })
	group.Delete("/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	h.Register(app.Group("/api/admin"))

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/classes", 0},
		{http.MethodPost, "/api/classes/taken", 0},
		{http.MethodPost, "/api/classes", 1},
		{http.MethodDelete, "/api/classes/4", 2},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(tc.method, tc.path, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, tc.want, svc.invalidated, "%s %s", tc.method, tc.path)
	}

	resp, env := doJSON(t, app, http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, env.Success)
}
