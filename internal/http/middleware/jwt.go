package middleware

import (
	"strings"

	"backend-hms/internal/config"

	"github.com/gofiber/fiber/v2"
)

func JWTAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization format",
			})
		}

		claims, err := config.ValidateToken(tokenParts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		// Logout revokes the Redis session; a valid JWT with a dead
		// session is rejected. Skipped when Redis is not wired (tests).
		if claims.SessionID != "" && config.Redis != nil {
			exists, err := config.Redis.Exists(config.Ctx, "session:"+claims.SessionID).Result()
			if err == nil && exists == 0 {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Session expired, please login again",
				})
			}
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("name", claims.Name)
		c.Locals("username", claims.Username)
		c.Locals("role", claims.Role)
		c.Locals("session_id", claims.SessionID)
		if claims.DoctorID != nil {
			c.Locals("doctor_id", *claims.DoctorID)
		}

		return c.Next()
	}
}

func RoleAuth(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := c.Locals("role").(string)

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You do not have access to this resource",
		})
	}
}
