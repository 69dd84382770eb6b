package middleware

import (
	"net/http/httptest"
	"testing"

	"backend-hms/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/api/ping", JWTAuth(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"role":    c.Locals("role"),
		})
	})
	return app
}

func TestJWTAuthMissingHeader(t *testing.T) {
	app := protectedApp()

	req := httptest.NewRequest("GET", "/api/ping", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestJWTAuthBadToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := protectedApp()

	req := httptest.NewRequest("GET", "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestJWTAuthValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := protectedApp()

	token, err := config.GenerateToken(7, "Front Desk", "reception", "receptionist", nil, "")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRoleAuth(t *testing.T) {
	newApp := func(role string) *fiber.App {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("role", role)
			return c.Next()
		})
		app.Get("/api/admin", RoleAuth("super_admin"), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		return app
	}

	cases := []struct {
		role string
		want int
	}{
		{"super_admin", 200},
		{"receptionist", 403},
		{"doctor", 403},
	}

	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/admin", nil)
			resp, err := newApp(tc.role).Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
