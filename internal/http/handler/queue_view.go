package handler

import (
	"database/sql"

	"backend-hms/internal/config"
	"backend-hms/internal/helper"
	"backend-hms/internal/models"

	"github.com/gofiber/fiber/v2"
)

// fetchDoctorQueue loads today's tokens for one doctor, decorated with
// patient info. statusFilter narrows to one status when non-empty.
func fetchDoctorQueue(doctorID int64, statusFilter string) ([]models.QueueRow, error) {
	query := `
		SELECT t.id, t.token_number, t.patient_id, t.doctor_id, t.visit_date,
		       t.status, t.payment_status, t.fee, t.created_at, t.updated_at,
		       p.name, p.mr_number
		FROM tokens t
		INNER JOIN patients p ON t.patient_id = p.id
		WHERE t.doctor_id = ?
		AND t.visit_date = CURDATE()
	`
	args := []interface{}{doctorID}

	if statusFilter != "" {
		query += " AND t.status = ?"
		args = append(args, statusFilter)
	}

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	queue := []models.QueueRow{}
	for rows.Next() {
		var row models.QueueRow
		err := rows.Scan(
			&row.ID,
			&row.TokenNumber,
			&row.PatientID,
			&row.DoctorID,
			&row.VisitDate,
			&row.Status,
			&row.PaymentStatus,
			&row.Fee,
			&row.CreatedAt,
			&row.UpdatedAt,
			&row.PatientName,
			&row.MRNumber,
		)
		if err != nil {
			continue
		}
		queue = append(queue, row)
	}

	// token_number ASC, created_at as the tiebreak for duplicates
	helper.SortQueue(queue)

	return queue, nil
}

// GetDoctorQueue - today's queue for one doctor, ordered by token number
func GetDoctorQueue(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("doctorId")
	if err != nil || doctorID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid doctor id",
		})
	}

	var doctorName string
	err = config.DB.QueryRow("SELECT name FROM doctors WHERE id = ?", doctorID).Scan(&doctorName)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Doctor not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch doctor",
		})
	}

	queue, err := fetchDoctorQueue(int64(doctorID), c.Query("status"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch queue",
		})
	}

	summary := helper.CountByStatus(queue)
	summary.DoctorID = int64(doctorID)
	summary.DoctorName = doctorName

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"doctor_id":   int64(doctorID),
			"doctor_name": doctorName,
			"summary":     summary,
			"queue":       queue,
		},
	})
}

// queueOverview builds per-doctor token counts for today.
func queueOverview() ([]models.DoctorQueueSummary, error) {
	rows, err := config.DB.Query(`
		SELECT d.id, d.name, dep.name
		FROM doctors d
		INNER JOIN departments dep ON d.department_id = dep.id
		ORDER BY d.name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []models.DoctorQueueSummary{}
	index := map[int64]int{}
	for rows.Next() {
		var s models.DoctorQueueSummary
		if err := rows.Scan(&s.DoctorID, &s.DoctorName, &s.Department); err != nil {
			continue
		}
		index[s.DoctorID] = len(summaries)
		summaries = append(summaries, s)
	}

	tokenRows, err := config.DB.Query(`
		SELECT doctor_id, status
		FROM tokens
		WHERE visit_date = CURDATE()
	`)
	if err != nil {
		return nil, err
	}
	defer tokenRows.Close()

	for tokenRows.Next() {
		var doctorID int64
		var status string
		if err := tokenRows.Scan(&doctorID, &status); err != nil {
			continue
		}
		i, ok := index[doctorID]
		if !ok {
			continue
		}
		summaries[i].Total++
		switch status {
		case models.StatusWaiting:
			summaries[i].Waiting++
		case models.StatusInConsultation:
			summaries[i].InConsultation++
		case models.StatusCompleted:
			summaries[i].Completed++
		case models.StatusCancelled:
			summaries[i].Cancelled++
		}
	}

	return summaries, nil
}

// GetQueueOverview - today's token counts for all doctors
func GetQueueOverview(c *fiber.Ctx) error {
	summaries, err := queueOverview()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to build queue overview",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summaries,
	})
}

// GetMyQueue - doctor self-view. Prefers the explicit users.doctor_id
// link; falls back to a case-insensitive name match against the signed-in
// user's full name. No match renders the overview instead.
func GetMyQueue(c *fiber.Ctx) error {
	if doctorID, ok := c.Locals("doctor_id").(int64); ok && doctorID > 0 {
		return renderSelfQueue(c, doctorID)
	}

	actorName, _ := c.Locals("name").(string)

	rows, err := config.DB.Query("SELECT id, name FROM doctors")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch doctors",
		})
	}
	defer rows.Close()

	doctors := []models.Doctor{}
	for rows.Next() {
		var d models.Doctor
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			continue
		}
		doctors = append(doctors, d)
	}

	matched := helper.MatchDoctorSelf(actorName, doctors)
	if matched == nil {
		summaries, err := queueOverview()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to build queue overview",
			})
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"overview": true,
			"data":     summaries,
		})
	}

	return renderSelfQueue(c, matched.ID)
}

func renderSelfQueue(c *fiber.Ctx, doctorID int64) error {
	queue, err := fetchDoctorQueue(doctorID, "")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch queue",
		})
	}

	summary := helper.CountByStatus(queue)
	summary.DoctorID = doctorID

	return c.JSON(fiber.Map{
		"success":  true,
		"overview": false,
		"data": fiber.Map{
			"doctor_id": doctorID,
			"summary":   summary,
			"queue":     queue,
		},
	})
}
