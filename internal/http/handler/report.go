package handler

import (
	"time"

	"backend-hms/internal/config"

	"github.com/gofiber/fiber/v2"
)

// GetOPDStatistics - visit statistics over a date range for the reports
// screen
func GetOPDStatistics(c *fiber.Ctx) error {
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	if startDate == "" || endDate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "start_date and end_date parameters are required",
		})
	}

	start, err1 := time.Parse("2006-01-02", startDate)
	end, err2 := time.Parse("2006-01-02", endDate)
	if err1 != nil || err2 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Dates must be YYYY-MM-DD (e.g. 2026-08-01)",
		})
	}

	if end.Before(start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "end_date must not be before start_date",
		})
	}

	diffDays := int(end.Sub(start).Hours()/24) + 1

	// ===========================
	// 1. SUMMARY
	// ===========================
	var totalVisits, totalCompleted, totalCancelled int
	var totalRevenue int64

	err := config.DB.QueryRow(`
		SELECT
			COUNT(t.id),
			COALESCE(SUM(t.status = 'completed'), 0),
			COALESCE(SUM(t.status = 'cancelled'), 0),
			COALESCE(SUM(CASE WHEN t.payment_status = 'paid' THEN t.fee ELSE 0 END), 0)
		FROM tokens t
		WHERE t.visit_date BETWEEN ? AND ?
	`, startDate, endDate).Scan(&totalVisits, &totalCompleted, &totalCancelled, &totalRevenue)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch visit summary",
		})
	}

	// ===========================
	// 2. DAILY SERIES (for the chart)
	// ===========================
	type DailyData struct {
		Date  string `json:"date"`
		Total int    `json:"total"`
	}

	dailyRows, err := config.DB.Query(`
		SELECT t.visit_date, COUNT(t.id)
		FROM tokens t
		WHERE t.visit_date BETWEEN ? AND ?
		GROUP BY t.visit_date
		ORDER BY t.visit_date ASC
	`, startDate, endDate)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch daily series",
		})
	}
	defer dailyRows.Close()

	dailyData := []DailyData{}
	for dailyRows.Next() {
		var dd DailyData
		if err := dailyRows.Scan(&dd.Date, &dd.Total); err != nil {
			continue
		}
		dailyData = append(dailyData, dd)
	}

	// ===========================
	// 3. TOP DOCTORS
	// ===========================
	type DoctorData struct {
		Name       string `json:"name"`
		Department string `json:"department"`
		Total      int    `json:"total"`
	}

	doctorRows, err := config.DB.Query(`
		SELECT
			d.name as name,
			dep.name as department,
			COUNT(t.id) as total
		FROM tokens t
		INNER JOIN doctors d ON t.doctor_id = d.id
		INNER JOIN departments dep ON d.department_id = dep.id
		WHERE t.visit_date BETWEEN ? AND ?
		GROUP BY d.id, d.name, dep.name
		HAVING total > 0
		ORDER BY total DESC
		LIMIT 10
	`, startDate, endDate)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch doctor data",
		})
	}
	defer doctorRows.Close()

	doctorData := []DoctorData{}
	for doctorRows.Next() {
		var dd DoctorData
		if err := doctorRows.Scan(&dd.Name, &dd.Department, &dd.Total); err != nil {
			continue
		}
		doctorData = append(doctorData, dd)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"summary": fiber.Map{
				"total_visits":    totalVisits,
				"total_completed": totalCompleted,
				"total_cancelled": totalCancelled,
				"total_revenue":   totalRevenue,
				"days":            diffDays,
			},
			"daily":   dailyData,
			"doctors": doctorData,
			"range": fiber.Map{
				"start_date": startDate,
				"end_date":   endDate,
			},
		},
	})
}
