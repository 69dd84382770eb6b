package handler

import (
	"database/sql"
	"regexp"

	"backend-hms/internal/config"
	"backend-hms/internal/models"

	"github.com/gofiber/fiber/v2"
)

var timeRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]:[0-5][0-9]$`)

// GetSettings - public; the token desk shows OPD hours before login
func GetSettings(c *fiber.Ctx) error {
	var s models.Setting
	query := "SELECT id, opening_time, closing_time FROM settings LIMIT 1"

	err := config.DB.QueryRow(query).Scan(
		&s.ID,
		&s.OpeningTime,
		&s.ClosingTime,
	)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "OPD hours not configured yet",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch settings",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    s,
	})
}

// CreateSettings - first-time setup only
func CreateSettings(c *fiber.Ctx) error {
	var req struct {
		OpeningTime string `json:"opening_time"`
		ClosingTime string `json:"closing_time"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.OpeningTime == "" || req.ClosingTime == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "opening_time and closing_time are required",
		})
	}

	if !timeRegex.MatchString(req.OpeningTime) || !timeRegex.MatchString(req.ClosingTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Time must be HH:MM:SS (e.g. 08:00:00)",
		})
	}

	var count int
	err := config.DB.QueryRow("SELECT COUNT(*) FROM settings").Scan(&count)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to validate settings",
		})
	}

	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Settings already exist, use update instead",
		})
	}

	query := "INSERT INTO settings (opening_time, closing_time) VALUES (?, ?)"
	result, err := config.DB.Exec(query, req.OpeningTime, req.ClosingTime)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create settings",
		})
	}

	id, _ := result.LastInsertId()

	var s models.Setting
	config.DB.QueryRow(
		"SELECT id, opening_time, closing_time FROM settings WHERE id = ?",
		id,
	).Scan(&s.ID, &s.OpeningTime, &s.ClosingTime)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Settings created",
		"data":    s,
	})
}

// UpdateSettings
func UpdateSettings(c *fiber.Ctx) error {
	var req struct {
		OpeningTime string `json:"opening_time"`
		ClosingTime string `json:"closing_time"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.OpeningTime == "" || req.ClosingTime == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "opening_time and closing_time are required",
		})
	}

	if !timeRegex.MatchString(req.OpeningTime) || !timeRegex.MatchString(req.ClosingTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Time must be HH:MM:SS (e.g. 08:00:00)",
		})
	}

	result, err := config.DB.Exec(
		"UPDATE settings SET opening_time = ?, closing_time = ? LIMIT 1",
		req.OpeningTime, req.ClosingTime,
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update settings",
		})
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Settings not configured yet, create them first",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Settings updated",
	})
}
