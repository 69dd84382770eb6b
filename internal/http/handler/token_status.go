package handler

import (
	"database/sql"
	"fmt"
	"log"

	"backend-hms/internal/config"
	"backend-hms/internal/helper"
	"backend-hms/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// StartConsultation - waiting -> in-consultation
func StartConsultation(c *fiber.Ctx) error {
	return transitionToken(c, models.StatusInConsultation, "start")
}

// CompleteConsultation - in-consultation -> completed
func CompleteConsultation(c *fiber.Ctx) error {
	return transitionToken(c, models.StatusCompleted, "complete")
}

// CancelToken - waiting -> cancelled
func CancelToken(c *fiber.Ctx) error {
	return transitionToken(c, models.StatusCancelled, "cancel")
}

// transitionToken validates the requested move against the transition
// table before writing. A same-status request is an idempotent re-write.
func transitionToken(c *fiber.Ctx, target, event string) error {
	tokenID, err := c.ParamsInt("id")
	if err != nil || tokenID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid token id",
		})
	}

	userID := c.Locals("user_id").(int64)

	var currentStatus string
	var tokenNumber int
	var doctorID int64
	err = config.DB.QueryRow(
		"SELECT status, token_number, doctor_id FROM tokens WHERE id = ?",
		tokenID,
	).Scan(&currentStatus, &tokenNumber, &doctorID)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Token not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch token",
		})
	}

	if !helper.CanTransition(currentStatus, target) {
		msg := fmt.Sprintf("Cannot move token from %s to %s", currentStatus, target)
		if helper.IsTerminal(currentStatus) {
			msg = fmt.Sprintf("Token is already %s", currentStatus)
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   msg,
		})
	}

	_, err = config.DB.Exec(
		"UPDATE tokens SET status = ?, updated_at = NOW() WHERE id = ?",
		target, tokenID,
	)

	if err != nil {
		log.Printf("[TokenStatus] Error updating token %d: %v", tokenID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update token status",
		})
	}

	_, _ = config.DB.Exec(`
		INSERT INTO token_events
		(token_id, event, actor_user_id, created_at)
		VALUES (?, ?, ?, NOW())
	`, tokenID, event, userID)

	// Keep the display board's now-serving number current
	if config.Redis != nil {
		servingKey := fmt.Sprintf("opd:serving:doctor:%d", doctorID)
		switch target {
		case models.StatusInConsultation:
			config.Redis.Set(config.Ctx, servingKey, tokenNumber, 0)
		case models.StatusCompleted, models.StatusCancelled:
			config.Redis.Del(config.Ctx, servingKey)
		}
	}

	BroadcastQueueUpdate()

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"token_id":     int64(tokenID),
			"token_number": tokenNumber,
			"doctor_id":    doctorID,
			"from":         currentStatus,
			"status":       target,
		},
	})
}

// GetTokenEvents - audit trail for one token, oldest first
func GetTokenEvents(c *fiber.Ctx) error {
	tokenID, err := c.ParamsInt("id")
	if err != nil || tokenID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid token id",
		})
	}

	var exists int
	err = config.DB.QueryRow("SELECT COUNT(*) FROM tokens WHERE id = ?", tokenID).Scan(&exists)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch token",
		})
	}

	if exists == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Token not found",
		})
	}

	rows, err := config.DB.Query(`
		SELECT id, token_id, event, actor_user_id, created_at
		FROM token_events
		WHERE token_id = ?
		ORDER BY created_at ASC, id ASC
	`, tokenID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch token events",
		})
	}
	defer rows.Close()

	events := []models.TokenEvent{}
	for rows.Next() {
		var e models.TokenEvent
		if err := rows.Scan(&e.ID, &e.TokenID, &e.Event, &e.ActorUserID, &e.CreatedAt); err != nil {
			continue
		}
		events = append(events, e)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    events,
	})
}

// MarkTokenPaid - payment axis, independent of clinical status
func MarkTokenPaid(c *fiber.Ctx) error {
	tokenID, err := c.ParamsInt("id")
	if err != nil || tokenID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid token id",
		})
	}

	userID := c.Locals("user_id").(int64)

	var paymentStatus string
	var fee int64
	err = config.DB.QueryRow(
		"SELECT payment_status, fee FROM tokens WHERE id = ?",
		tokenID,
	).Scan(&paymentStatus, &fee)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Token not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch token",
		})
	}

	if paymentStatus == models.PaymentPaid {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Token already paid",
		})
	}

	receiptNo := uuid.NewString()
	_, err = config.DB.Exec(
		"UPDATE tokens SET payment_status = 'paid', receipt_no = ?, updated_at = NOW() WHERE id = ?",
		receiptNo, tokenID,
	)

	if err != nil {
		log.Printf("[TokenPayment] Error updating token %d: %v", tokenID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update payment status",
		})
	}

	_, _ = config.DB.Exec(`
		INSERT INTO token_events
		(token_id, event, actor_user_id, created_at)
		VALUES (?, 'payment', ?, NOW())
	`, tokenID, userID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment recorded",
		"data": fiber.Map{
			"token_id":       int64(tokenID),
			"payment_status": models.PaymentPaid,
			"receipt_no":     receiptNo,
			"amount":         fee,
		},
	})
}
