package handler

import (
	"database/sql"
	"encoding/json"
	"strings"

	"backend-hms/internal/config"
	"backend-hms/internal/helper"
	"backend-hms/internal/models"
	"backend-hms/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const doctorColumns = "id, name, department_id, specialization, fee, is_available, created_at, updated_at"

func scanDoctor(row interface{ Scan(...interface{}) error }, d *models.Doctor) error {
	return row.Scan(
		&d.ID,
		&d.Name,
		&d.DepartmentID,
		&d.Specialization,
		&d.Fee,
		&d.IsAvailable,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
}

// GetAllDoctors - public list for the token desk; ?is_available=y narrows
// to doctors accepting patients right now
func GetAllDoctors(c *fiber.Ctx) error {
	isAvailable := c.Query("is_available")

	query := "SELECT " + doctorColumns + " FROM doctors WHERE 1=1"
	args := []interface{}{}

	if isAvailable != "" {
		query += " AND is_available = ?"
		args = append(args, isAvailable)
	}

	query += " ORDER BY name ASC"

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch doctors",
		})
	}
	defer rows.Close()

	doctors := []models.Doctor{}
	for rows.Next() {
		var d models.Doctor
		if err := scanDoctor(rows, &d); err != nil {
			continue
		}
		doctors = append(doctors, d)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    doctors,
	})
}

// GetAllDoctorsPagination - paginated with search over name and
// specialization
func GetAllDoctorsPagination(c *fiber.Ctx) error {
	isAvailable := c.Query("is_available")
	search := c.Query("search")
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	offset := (page - 1) * limit

	countQuery := "SELECT COUNT(*) FROM doctors WHERE 1=1"
	countArgs := []interface{}{}

	if isAvailable != "" {
		countQuery += " AND is_available = ?"
		countArgs = append(countArgs, isAvailable)
	}

	if search != "" {
		search = "%" + strings.TrimSpace(search) + "%"
		countQuery += " AND (name LIKE ? OR specialization LIKE ?)"
		countArgs = append(countArgs, search, search)
	}

	var totalData int
	err := config.DB.QueryRow(countQuery, countArgs...).Scan(&totalData)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count doctors",
		})
	}

	query := "SELECT " + doctorColumns + " FROM doctors WHERE 1=1"
	args := []interface{}{}

	if isAvailable != "" {
		query += " AND is_available = ?"
		args = append(args, isAvailable)
	}

	if search != "" {
		query += " AND (name LIKE ? OR specialization LIKE ?)"
		args = append(args, search, search)
	}

	query += " ORDER BY name ASC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch doctors",
		})
	}
	defer rows.Close()

	doctors := []models.Doctor{}
	for rows.Next() {
		var d models.Doctor
		if err := scanDoctor(rows, &d); err != nil {
			continue
		}
		doctors = append(doctors, d)
	}

	totalPages := (totalData + limit - 1) / limit

	return c.JSON(fiber.Map{
		"success": true,
		"data":    doctors,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total_data":  totalData,
			"total_pages": totalPages,
		},
	})
}

// GetDoctorByID
func GetDoctorByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid doctor id",
		})
	}

	var d models.Doctor
	err = scanDoctor(config.DB.QueryRow("SELECT "+doctorColumns+" FROM doctors WHERE id = ?", id), &d)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Doctor not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch doctor",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    d,
	})
}

// CreateDoctor
func CreateDoctor(c *fiber.Ctx) error {
	var req models.CreateDoctorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Name) == "" || req.DepartmentID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name and department_id are required",
		})
	}

	if req.Fee < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "fee cannot be negative",
		})
	}

	// Department must exist
	var deptCount int
	err := config.DB.QueryRow("SELECT COUNT(*) FROM departments WHERE id = ?", req.DepartmentID).Scan(&deptCount)
	if err != nil || deptCount == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Department not found",
		})
	}

	if req.IsAvailable == "" {
		req.IsAvailable = "y"
	}

	result, err := config.DB.Exec(`
		INSERT INTO doctors (name, department_id, specialization, fee, is_available, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NOW(), NOW())
	`, req.Name, req.DepartmentID, req.Specialization, req.Fee, req.IsAvailable)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create doctor",
		})
	}

	id, _ := result.LastInsertId()

	var d models.Doctor
	err = scanDoctor(config.DB.QueryRow("SELECT "+doctorColumns+" FROM doctors WHERE id = ?", id), &d)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch created doctor",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Doctor created",
		"data":    d,
	})
}

// UpdateDoctor - fee changes here never touch already issued tokens
func UpdateDoctor(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid doctor id",
		})
	}

	var req models.UpdateDoctorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	sets := []string{}
	args := []interface{}{}

	if req.Name != "" {
		sets = append(sets, "name = ?")
		args = append(args, req.Name)
	}
	if req.DepartmentID != nil {
		sets = append(sets, "department_id = ?")
		args = append(args, *req.DepartmentID)
	}
	if req.Specialization != "" {
		sets = append(sets, "specialization = ?")
		args = append(args, req.Specialization)
	}
	if req.Fee != nil {
		if *req.Fee < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "fee cannot be negative",
			})
		}
		sets = append(sets, "fee = ?")
		args = append(args, *req.Fee)
	}
	if req.IsAvailable != "" {
		if req.IsAvailable != "y" && req.IsAvailable != "n" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "is_available must be y or n",
			})
		}
		sets = append(sets, "is_available = ?")
		args = append(args, req.IsAvailable)
	}

	if len(sets) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Nothing to update",
		})
	}

	args = append(args, id)
	query := "UPDATE doctors SET " + strings.Join(sets, ", ") + ", updated_at = NOW() WHERE id = ?"

	result, err := config.DB.Exec(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update doctor",
		})
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Doctor not found",
		})
	}

	// Availability flips matter to the token desk right away
	if req.IsAvailable != "" {
		msg, _ := json.Marshal(fiber.Map{
			"type":         "availability",
			"doctor_id":    int64(id),
			"is_available": req.IsAvailable,
		})
		select {
		case realtime.Availability.Broadcast <- msg:
		default:
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Doctor updated",
	})
}

// DeleteDoctor - refused while the doctor still has tokens on record
func DeleteDoctor(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid doctor id",
		})
	}

	var tokenCount int
	err = config.DB.QueryRow("SELECT COUNT(*) FROM tokens WHERE doctor_id = ?", id).Scan(&tokenCount)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check doctor history",
		})
	}

	if tokenCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Doctor has queue history and cannot be deleted",
		})
	}

	result, err := config.DB.Exec("DELETE FROM doctors WHERE id = ?", id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete doctor",
		})
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Doctor not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Doctor deleted",
	})
}

// AvailabilityWS - reception dashboards subscribe for doctor
// availability flips
func AvailabilityWS(c *websocket.Conn) {
	realtime.Availability.Register <- c
	defer func() {
		realtime.Availability.Unregister <- c
	}()

	var opening, closing string
	err := config.DB.QueryRow(`
		SELECT opening_time, closing_time
		FROM settings
		LIMIT 1
	`).Scan(&opening, &closing)

	if err == nil && !helper.IsClinicOpen(opening, closing) {
		_ = c.WriteJSON(fiber.Map{
			"type":         "status",
			"opd":          "closed",
			"opening_time": opening,
			"closing_time": closing,
		})
	}

	// listen until the client goes away
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
