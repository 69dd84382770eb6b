package handler

import (
	"time"

	"backend-hms/internal/config"

	"github.com/gofiber/fiber/v2"
)

// GetDashboard - today's OPD summary across all doctors
func GetDashboard(c *fiber.Ctx) error {
	today := time.Now().Format("2006-01-02")

	// ===========================
	// 1. SUMMARY DATA
	// ===========================

	var totalTokens int
	err := config.DB.QueryRow(`
		SELECT COUNT(t.id)
		FROM tokens t
		WHERE t.visit_date = ?
	`, today).Scan(&totalTokens)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch total tokens",
		})
	}

	statusCounts := map[string]int{}
	rows, err := config.DB.Query(`
		SELECT t.status, COUNT(t.id)
		FROM tokens t
		WHERE t.visit_date = ?
		GROUP BY t.status
	`, today)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch status counts",
		})
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			continue
		}
		statusCounts[status] = count
	}

	// Revenue from tokens already marked paid
	var revenue int64
	err = config.DB.QueryRow(`
		SELECT COALESCE(SUM(t.fee), 0)
		FROM tokens t
		WHERE t.visit_date = ?
		AND t.payment_status = 'paid'
	`, today).Scan(&revenue)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch revenue",
		})
	}

	// ===========================
	// 2. DEPARTMENT DATA (today's visits per department)
	// ===========================
	type DepartmentData struct {
		Name  string `json:"name"`
		Total int    `json:"total"`
	}

	deptRows, err := config.DB.Query(`
		SELECT
			dep.name as name,
			COUNT(t.id) as total
		FROM tokens t
		INNER JOIN doctors d ON t.doctor_id = d.id
		INNER JOIN departments dep ON d.department_id = dep.id
		WHERE t.visit_date = ?
		GROUP BY dep.id, dep.name
		HAVING total > 0
		ORDER BY total DESC
	`, today)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch department data",
		})
	}
	defer deptRows.Close()

	departmentData := []DepartmentData{}
	for deptRows.Next() {
		var dd DepartmentData
		if err := deptRows.Scan(&dd.Name, &dd.Total); err != nil {
			continue
		}
		departmentData = append(departmentData, dd)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"summary": fiber.Map{
				"total_tokens":    totalTokens,
				"waiting":         statusCounts["waiting"],
				"in_consultation": statusCounts["in-consultation"],
				"completed":       statusCounts["completed"],
				"cancelled":       statusCounts["cancelled"],
				"revenue":         revenue,
			},
			"departments": departmentData,
			"date":        today,
		},
	})
}
