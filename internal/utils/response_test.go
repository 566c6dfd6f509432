package utils_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduworld-api/internal/utils"
)

func call(t *testing.T, handler fiber.Handler) (int, string) {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestEnvelopes(t *testing.T) {
	cases := []struct {
		name    string
		handler fiber.Handler
		status  int
		body    string
	}{
		{
			name: "progress percent",
			handler: func(c *fiber.Ctx) error {
				return utils.SendSuccess(c, "Progress recorded", map[string]int{"percent": 50})
			},
			status: fiber.StatusOK,
			body:   `{"success":true,"data":{"percent":50},"message":"Progress recorded"}`,
		},
		{
			name: "degraded write omits data",
			handler: func(c *fiber.Ctx) error {
				return utils.SendSuccess(c, "Progress recorded", nil)
			},
			status: fiber.StatusOK,
			body:   `{"success":true,"message":"Progress recorded"}`,
		},
		{
			name: "created student",
			handler: func(c *fiber.Ctx) error {
				return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "", map[string]string{"username": "ada"})
			},
			status: fiber.StatusCreated,
			body:   `{"success":true,"data":{"username":"ada"},"message":"success"}`,
		},
		{
			name: "class list with count",
			handler: func(c *fiber.Ctx) error {
				return utils.OK(c, []string{"Grade 7"}, "Classes retrieved", map[string]int{"count": 1})
			},
			status: fiber.StatusOK,
			body:   `{"success":true,"data":["Grade 7"],"meta":{"count":1},"message":"Classes retrieved"}`,
		},
		{
			name: "validation failure",
			handler: func(c *fiber.Ctx) error {
				return utils.Fail(c, fiber.StatusBadRequest, "Validation failed", map[string]string{"resourceType": "oneof"})
			},
			status: fiber.StatusBadRequest,
			body:   `{"success":false,"details":{"resourceType":"oneof"},"message":"Validation failed"}`,
		},
		{
			name: "missing student",
			handler: func(c *fiber.Ctx) error {
				return utils.SendError(c, fiber.StatusNotFound, "")
			},
			status: fiber.StatusNotFound,
			body:   `{"success":false,"message":"error"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := call(t, tc.handler)
			require.Equal(t, tc.status, status)
			require.JSONEq(t, tc.body, body)
		})
	}
}
