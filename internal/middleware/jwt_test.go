package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newJWTApp() *fiber.App {
	app := fiber.New()
	app.Use(JWTProtected(testSecret))
	app.Get("/me", func(c *fiber.Ctx) error {
		id, _ := UserID(c)
		return c.JSON(fiber.Map{"id": id, "role": UserRole(c)})
	})
	return app
}

func TestJWTProtectedExposesIdentity(t *testing.T) {
	app := newJWTApp()
	token := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "42",
		"roles": []string{"Student"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		ID   uint   `json:"id"`
		Role string `json:"role"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, uint(42), body.ID)
	require.Equal(t, "student", body.Role)
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	app := newJWTApp()

	expired := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": 1, "exp": time.Now().Add(-time.Hour).Unix()})
	noSubject := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"})
	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": 1}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"expired":      "Bearer " + expired,
		"no subject":   "Bearer " + noSubject,
		"wrong secret": "Bearer " + other,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}
