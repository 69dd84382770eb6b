package handler

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"backend-hms/internal/config"
	"backend-hms/internal/helper"
	"backend-hms/internal/models"

	"github.com/gofiber/fiber/v2"
)

// IssueToken - create an OPD token for a (patient, doctor) pair
func IssueToken(c *fiber.Ctx) error {
	var req models.IssueTokenRequest
	userID := c.Locals("user_id").(int64)
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.PatientID == 0 || req.DoctorID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "patient_id and doctor_id are required",
		})
	}

	// Declined consent writes nothing
	if !req.Consent {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Patient consent is required before issuing a token",
		})
	}

	if req.PaymentStatus == "" {
		req.PaymentStatus = models.PaymentPending
	}
	if req.PaymentStatus != models.PaymentPending && req.PaymentStatus != models.PaymentPaid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "payment_status must be pending or paid",
		})
	}

	// 1. Patient must exist
	var patientName, mrNumber string
	err := config.DB.QueryRow(
		"SELECT name, mr_number FROM patients WHERE id = ?",
		req.PatientID,
	).Scan(&patientName, &mrNumber)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Patient not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to validate patient",
		})
	}

	// 2. Doctor must exist and be available; fee is copied from here
	var doctorName, doctorAvailable string
	var doctorFee int64
	err = config.DB.QueryRow(
		"SELECT name, fee, is_available FROM doctors WHERE id = ?",
		req.DoctorID,
	).Scan(&doctorName, &doctorFee, &doctorAvailable)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Doctor not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to validate doctor",
		})
	}

	if doctorAvailable != "y" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Dr. %s is not available today", doctorName),
		})
	}

	// 3. OPD must be open (skipped when hours were never configured)
	var openingTime, closingTime string
	err = config.DB.QueryRow(
		"SELECT opening_time, closing_time FROM settings LIMIT 1",
	).Scan(&openingTime, &closingTime)

	if err == nil && !helper.IsClinicOpen(openingTime, closingTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("OPD is closed (hours %s - %s)", openingTime, closingTime),
		})
	}

	// 4. Count today's tokens for this doctor.
	// Read-then-write with no lock: concurrent issuance can hand out the
	// same number. Accepted for a single front-desk terminal.
	var todayCount int
	err = config.DB.QueryRow(`
		SELECT COUNT(*)
		FROM tokens
		WHERE doctor_id = ?
		AND visit_date = CURDATE()
	`, req.DoctorID).Scan(&todayCount)

	if err != nil {
		log.Printf("[IssueToken] Error counting today's tokens: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to count today's queue",
		})
	}

	tokenNumber := helper.NextTokenNumber(todayCount)

	// 5. Insert the token, fee frozen at issuance
	query := `
		INSERT INTO tokens
		(token_number, patient_id, doctor_id, visit_date, status, payment_status, fee, created_at, updated_at)
		VALUES (?, ?, ?, CURDATE(), 'waiting', ?, ?, NOW(), NOW())
	`

	result, err := config.DB.Exec(query, tokenNumber, req.PatientID, req.DoctorID, req.PaymentStatus, doctorFee)
	if err != nil {
		log.Printf("[IssueToken] Error inserting token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to issue token",
		})
	}

	tokenID, _ := result.LastInsertId()

	// 6. Audit event (event: issue)
	_, err = config.DB.Exec(`
		INSERT INTO token_events
		(token_id, event, actor_user_id, created_at)
		VALUES (?, 'issue', ?, NOW())
	`, tokenID, userID)

	if err != nil {
		log.Printf("[IssueToken] Error inserting event: %v", err)
		// Roll the token back so the queue never shows an unaudited entry
		config.DB.Exec("DELETE FROM tokens WHERE id = ?", tokenID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to record token event",
		})
	}

	// 7. Daily visit counter for the display board
	if config.Redis != nil {
		dayKey := fmt.Sprintf("opd:visits:%s", time.Now().Format("2006-01-02"))
		config.Redis.Incr(config.Ctx, dayKey)
	}

	// 8. Fetch the created token
	var token models.Token
	err = config.DB.QueryRow(`
		SELECT id, token_number, patient_id, doctor_id, visit_date, status,
		       payment_status, fee, created_at, updated_at
		FROM tokens
		WHERE id = ?
	`, tokenID).Scan(
		&token.ID,
		&token.TokenNumber,
		&token.PatientID,
		&token.DoctorID,
		&token.VisitDate,
		&token.Status,
		&token.PaymentStatus,
		&token.Fee,
		&token.CreatedAt,
		&token.UpdatedAt,
	)

	if err != nil {
		log.Printf("[IssueToken] Error fetching token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch issued token",
		})
	}

	// Push the new queue state to display boards
	BroadcastQueueUpdate()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Token issued",
		"data": fiber.Map{
			"token":        token,
			"patient_name": patientName,
			"mr_number":    mrNumber,
			"doctor_name":  doctorName,
			"queue_number": tokenNumber,
		},
	})
}
