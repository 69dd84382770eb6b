package handler

import (
	"database/sql"
	"strings"

	"backend-hms/internal/config"
	"backend-hms/internal/helper"
	"backend-hms/internal/models"

	"github.com/gofiber/fiber/v2"
)

const patientColumns = "id, mr_number, name, cnic, phone, age, gender, address, created_at, updated_at"

func scanPatient(row interface{ Scan(...interface{}) error }, p *models.Patient) error {
	return row.Scan(
		&p.ID,
		&p.MRNumber,
		&p.Name,
		&p.CNIC,
		&p.Phone,
		&p.Age,
		&p.Gender,
		&p.Address,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

// GetAllPatients - full list, newest first
func GetAllPatients(c *fiber.Ctx) error {
	rows, err := config.DB.Query("SELECT " + patientColumns + " FROM patients ORDER BY created_at DESC")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch patients",
		})
	}
	defer rows.Close()

	patients := []models.Patient{}
	for rows.Next() {
		var p models.Patient
		if err := scanPatient(rows, &p); err != nil {
			continue
		}
		patients = append(patients, p)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    patients,
	})
}

// GetAllPatientsPagination - paginated list with search over name, MR
// number and CNIC
func GetAllPatientsPagination(c *fiber.Ctx) error {
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

	countQuery := "SELECT COUNT(*) FROM patients WHERE 1=1"
	countArgs := []interface{}{}

	if search != "" {
		search = "%" + strings.TrimSpace(search) + "%"
		countQuery += " AND (name LIKE ? OR mr_number LIKE ? OR cnic LIKE ?)"
		countArgs = append(countArgs, search, search, search)
	}

	var totalData int
	err := config.DB.QueryRow(countQuery, countArgs...).Scan(&totalData)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count patients",
		})
	}

	query := "SELECT " + patientColumns + " FROM patients WHERE 1=1"
	args := []interface{}{}

	if search != "" {
		query += " AND (name LIKE ? OR mr_number LIKE ? OR cnic LIKE ?)"
		args = append(args, search, search, search)
	}

	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch patients",
		})
	}
	defer rows.Close()

	patients := []models.Patient{}
	for rows.Next() {
		var p models.Patient
		if err := scanPatient(rows, &p); err != nil {
			continue
		}
		patients = append(patients, p)
	}

	totalPages := (totalData + limit - 1) / limit

	return c.JSON(fiber.Map{
		"success": true,
		"data":    patients,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total_data":  totalData,
			"total_pages": totalPages,
		},
	})
}

// GetPatientByID
func GetPatientByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid patient id",
		})
	}

	var p models.Patient
	err = scanPatient(config.DB.QueryRow("SELECT "+patientColumns+" FROM patients WHERE id = ?", id), &p)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Patient not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch patient",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    p,
	})
}

// CreatePatient - registration. Assigns the MR number from this year's
// registration count (same count-then-write pattern as token numbers).
func CreatePatient(c *fiber.Ctx) error {
	var req models.CreatePatientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Patient name is required",
		})
	}

	if req.CNIC != "" && !helper.ValidCNIC(req.CNIC) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "CNIC must match #####-#######-# (e.g. 42101-1234567-1)",
		})
	}

	year := helper.CurrentMRYear()

	var yearCount int
	err := config.DB.QueryRow(
		"SELECT COUNT(*) FROM patients WHERE YEAR(created_at) = ?",
		year,
	).Scan(&yearCount)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to allocate MR number",
		})
	}

	mrNumber := helper.FormatMRNumber(year, yearCount)

	result, err := config.DB.Exec(`
		INSERT INTO patients (mr_number, name, cnic, phone, age, gender, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, mrNumber, req.Name, req.CNIC, req.Phone, req.Age, req.Gender, req.Address)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register patient",
		})
	}

	id, _ := result.LastInsertId()

	var p models.Patient
	err = scanPatient(config.DB.QueryRow("SELECT "+patientColumns+" FROM patients WHERE id = ?", id), &p)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch registered patient",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Patient registered with MR number " + mrNumber,
		"data":    p,
	})
}

// UpdatePatient
func UpdatePatient(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid patient id",
		})
	}

	var req models.UpdatePatientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.CNIC != "" && !helper.ValidCNIC(req.CNIC) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "CNIC must match #####-#######-# (e.g. 42101-1234567-1)",
		})
	}

	sets := []string{}
	args := []interface{}{}

	if req.Name != "" {
		sets = append(sets, "name = ?")
		args = append(args, req.Name)
	}
	if req.CNIC != "" {
		sets = append(sets, "cnic = ?")
		args = append(args, req.CNIC)
	}
	if req.Phone != "" {
		sets = append(sets, "phone = ?")
		args = append(args, req.Phone)
	}
	if req.Age != nil {
		sets = append(sets, "age = ?")
		args = append(args, *req.Age)
	}
	if req.Gender != "" {
		sets = append(sets, "gender = ?")
		args = append(args, req.Gender)
	}
	if req.Address != "" {
		sets = append(sets, "address = ?")
		args = append(args, req.Address)
	}

	if len(sets) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Nothing to update",
		})
	}

	args = append(args, id)
	query := "UPDATE patients SET " + strings.Join(sets, ", ") + ", updated_at = NOW() WHERE id = ?"

	result, err := config.DB.Exec(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update patient",
		})
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Patient not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Patient updated",
	})
}

// DeletePatient - refused while the patient still has tokens on record
func DeletePatient(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid patient id",
		})
	}

	var tokenCount int
	err = config.DB.QueryRow("SELECT COUNT(*) FROM tokens WHERE patient_id = ?", id).Scan(&tokenCount)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check patient history",
		})
	}

	if tokenCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Patient has visit history and cannot be deleted",
		})
	}

	result, err := config.DB.Exec("DELETE FROM patients WHERE id = ?", id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete patient",
		})
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Patient not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Patient deleted",
	})
}
