package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func withIdentity(userID uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals(LocalUserID, userID)
		}
		if role != "" {
			c.Locals(LocalUserRole, role)
		}
		return c.Next()
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name   string
		userID uint
		role   string
		status int
	}{
		{"admin allowed", 1, "admin", fiber.StatusOK},
		{"role is case insensitive", 1, " Student ", fiber.StatusOK},
		{"other role forbidden", 1, "parent", fiber.StatusForbidden},
		{"missing user", 0, "admin", fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(withIdentity(tc.userID, tc.role))
			app.Use(RequireRole(RoleAdmin, RoleStudent))
			app.Get("/classes", func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/classes", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestIsAdmin(t *testing.T) {
	app := fiber.New()
	app.Use(withIdentity(7, "ADMIN"))
	app.Get("/", func(c *fiber.Ctx) error {
		if IsAdmin(c) {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
