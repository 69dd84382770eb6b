package handler

import (
	"time"

	"backend-hms/internal/config"
	"backend-hms/internal/helper"
	"backend-hms/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 24 * time.Hour

func Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username and password are required",
		})
	}

	if config.RecaptchaEnabled() {
		if req.RecaptchaToken == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid reCAPTCHA token",
			})
		}

		ok, score, err := config.VerifyRecaptcha(req.RecaptchaToken)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "reCAPTCHA verification failed",
			})
		}

		if !ok || score < 0.5 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Suspicious activity detected",
			})
		}
	}

	user, err := helper.GetUserByUsername(req.Username)
	if err == helper.ErrUserNotFound {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Wrong username or password",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Database error",
		})
	}

	if user.IsActive != "y" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Your account has been deactivated",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Wrong username or password",
		})
	}

	// Handle nullable doctor link
	var doctorID *int64
	if user.DoctorID.Valid {
		doctorID = &user.DoctorID.Int64
	}

	// Session lives in Redis so logout can revoke it before the JWT expires
	sessionID := uuid.NewString()
	if config.Redis != nil {
		err = config.Redis.Set(config.Ctx, "session:"+sessionID, user.ID, sessionTTL).Err()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create session",
			})
		}
	}

	token, err := config.GenerateToken(user.ID, user.Name, user.Username, user.Role, doctorID, sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(fiber.Map{
		"token":   token,
		"user":    models.ToUserResponse(user),
		"message": "Welcome back, " + user.Name,
	})
}

func Logout(c *fiber.Ctx) error {
	sessionID, _ := c.Locals("session_id").(string)
	if sessionID != "" && config.Redis != nil {
		config.Redis.Del(config.Ctx, "session:"+sessionID)
	}

	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}
