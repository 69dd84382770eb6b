package handler

import (
	"database/sql"
	"strings"

	"backend-hms/internal/config"
	"backend-hms/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAllDepartments - public endpoint, active departments only
func GetAllDepartments(c *fiber.Ctx) error {
	query := `
		SELECT id, code, name, is_active, created_at, updated_at
		FROM departments
		WHERE is_active = 'y'
		ORDER BY name ASC
	`

	rows, err := config.DB.Query(query)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch departments",
		})
	}
	defer rows.Close()

	departments := []models.Department{}
	for rows.Next() {
		var d models.Department
		err := rows.Scan(
			&d.ID,
			&d.Code,
			&d.Name,
			&d.IsActive,
			&d.CreatedAt,
			&d.UpdatedAt,
		)
		if err != nil {
			continue
		}
		departments = append(departments, d)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    departments,
	})
}

// CreateDepartment
func CreateDepartment(c *fiber.Ctx) error {
	var req models.CreateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "code and name are required",
		})
	}

	var count int
	err := config.DB.QueryRow("SELECT COUNT(*) FROM departments WHERE code = ?", req.Code).Scan(&count)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to validate department code",
		})
	}

	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Department code already in use",
		})
	}

	if req.IsActive == "" {
		req.IsActive = "y"
	}

	result, err := config.DB.Exec(`
		INSERT INTO departments (code, name, is_active, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
	`, req.Code, req.Name, req.IsActive)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create department",
		})
	}

	id, _ := result.LastInsertId()

	var d models.Department
	err = config.DB.QueryRow(
		"SELECT id, code, name, is_active, created_at, updated_at FROM departments WHERE id = ?",
		id,
	).Scan(&d.ID, &d.Code, &d.Name, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)

	if err != nil && err != sql.ErrNoRows {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch created department",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Department created",
		"data":    d,
	})
}

// UpdateDepartment
func UpdateDepartment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid department id",
		})
	}

	var req models.UpdateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	sets := []string{}
	args := []interface{}{}

	if req.Code != "" {
		sets = append(sets, "code = ?")
		args = append(args, req.Code)
	}
	if req.Name != "" {
		sets = append(sets, "name = ?")
		args = append(args, req.Name)
	}
	if req.IsActive != "" {
		if req.IsActive != "y" && req.IsActive != "n" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "is_active must be y or n",
			})
		}
		sets = append(sets, "is_active = ?")
		args = append(args, req.IsActive)
	}

	if len(sets) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Nothing to update",
		})
	}

	args = append(args, id)
	query := "UPDATE departments SET " + strings.Join(sets, ", ") + ", updated_at = NOW() WHERE id = ?"

	result, err := config.DB.Exec(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update department",
		})
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Department not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Department updated",
	})
}

// DeleteDepartment - refused while doctors are still assigned
func DeleteDepartment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid department id",
		})
	}

	var doctorCount int
	err = config.DB.QueryRow("SELECT COUNT(*) FROM doctors WHERE department_id = ?", id).Scan(&doctorCount)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check department doctors",
		})
	}

	if doctorCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Department still has doctors assigned",
		})
	}

	result, err := config.DB.Exec("DELETE FROM departments WHERE id = ?", id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete department",
		})
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Department not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Department deleted",
	})
}
