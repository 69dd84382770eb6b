package handler

import (
	"fmt"
	"time"

	"backend-hms/internal/config"

	"github.com/gofiber/fiber/v2"
)

// GetDisplayBoard - public endpoint for the waiting-area screen: the
// token now in consultation and the waiting count per doctor
func GetDisplayBoard(c *fiber.Ctx) error {
	type BoardRow struct {
		DoctorID   int64  `json:"doctor_id"`
		DoctorName string `json:"doctor_name"`
		Department string `json:"department"`
		NowServing int    `json:"now_serving"`
		Waiting    int    `json:"waiting"`
	}

	rows, err := config.DB.Query(`
		SELECT
			d.id,
			d.name,
			dep.name,
			COALESCE(SUM(t.status = 'waiting'), 0),
			COALESCE(MAX(CASE WHEN t.status = 'in-consultation' THEN t.token_number ELSE 0 END), 0)
		FROM doctors d
		INNER JOIN departments dep ON d.department_id = dep.id
		LEFT JOIN tokens t ON t.doctor_id = d.id AND t.visit_date = CURDATE()
		WHERE d.is_available = 'y'
		GROUP BY d.id, d.name, dep.name
		ORDER BY d.name ASC
	`)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch display board",
		})
	}
	defer rows.Close()

	board := []BoardRow{}
	for rows.Next() {
		var row BoardRow
		if err := rows.Scan(&row.DoctorID, &row.DoctorName, &row.Department, &row.Waiting, &row.NowServing); err != nil {
			continue
		}

		// Redis carries the fresher now-serving number when a
		// consultation was just started
		if config.Redis != nil {
			servingKey := fmt.Sprintf("opd:serving:doctor:%d", row.DoctorID)
			if val, err := config.Redis.Get(config.Ctx, servingKey).Int(); err == nil && val > 0 {
				row.NowServing = val
			}
		}

		board = append(board, row)
	}

	// Daily visit counter maintained at issuance
	totalToday := 0
	if config.Redis != nil {
		dayKey := fmt.Sprintf("opd:visits:%s", time.Now().Format("2006-01-02"))
		if val, err := config.Redis.Get(config.Ctx, dayKey).Int(); err == nil {
			totalToday = val
		}
	}

	if totalToday == 0 {
		config.DB.QueryRow(
			"SELECT COUNT(*) FROM tokens WHERE visit_date = CURDATE()",
		).Scan(&totalToday)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"board":        board,
			"total_today":  totalToday,
			"generated_at": time.Now().Format(time.RFC3339),
		},
	})
}
