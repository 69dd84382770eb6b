package handler

import (
	"database/sql"
	"strings"

	"backend-hms/internal/config"
	"backend-hms/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = "id, name, username, password, role, is_active, doctor_id, created_at, updated_at"

func scanUser(row interface{ Scan(...interface{}) error }, u *models.User) error {
	return row.Scan(
		&u.ID,
		&u.Name,
		&u.Username,
		&u.Password,
		&u.Role,
		&u.IsActive,
		&u.DoctorID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

func validRole(role string) bool {
	switch role {
	case "super_admin", "receptionist", "doctor":
		return true
	}
	return false
}

// GetAllUsers
func GetAllUsers(c *fiber.Ctx) error {
	rows, err := config.DB.Query("SELECT " + userColumns + " FROM users ORDER BY name ASC")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}
	defer rows.Close()

	users := []models.UserResponse{}
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			continue
		}
		users = append(users, models.ToUserResponse(u))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
	})
}

// GetAllUsersPagination
func GetAllUsersPagination(c *fiber.Ctx) error {
	role := c.Query("role")
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

	countQuery := "SELECT COUNT(*) FROM users WHERE 1=1"
	countArgs := []interface{}{}

	if role != "" {
		countQuery += " AND role = ?"
		countArgs = append(countArgs, role)
	}

	if search != "" {
		search = "%" + strings.TrimSpace(search) + "%"
		countQuery += " AND (name LIKE ? OR username LIKE ?)"
		countArgs = append(countArgs, search, search)
	}

	var totalData int
	err := config.DB.QueryRow(countQuery, countArgs...).Scan(&totalData)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count users",
		})
	}

	query := "SELECT " + userColumns + " FROM users WHERE 1=1"
	args := []interface{}{}

	if role != "" {
		query += " AND role = ?"
		args = append(args, role)
	}

	if search != "" {
		query += " AND (name LIKE ? OR username LIKE ?)"
		args = append(args, search, search)
	}

	query += " ORDER BY name ASC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}
	defer rows.Close()

	users := []models.UserResponse{}
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			continue
		}
		users = append(users, models.ToUserResponse(u))
	}

	totalPages := (totalData + limit - 1) / limit

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total_data":  totalData,
			"total_pages": totalPages,
		},
	})
}

// GetUserByID
func GetUserByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	var u models.User
	err = scanUser(config.DB.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id), &u)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch user",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.ToUserResponse(u),
	})
}

// CreateUser
func CreateUser(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name == "" || req.Username == "" || req.Password == "" || req.Role == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name, username, password and role are required",
		})
	}

	if len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Password must be at least 8 characters",
		})
	}

	if !validRole(req.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "role must be super_admin, receptionist or doctor",
		})
	}

	var count int
	err := config.DB.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", req.Username).Scan(&count)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to validate username",
		})
	}

	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Username already in use",
		})
	}

	// Doctor accounts should point at their doctor record so the
	// self-view never falls back to name matching
	if req.DoctorID != nil {
		var doctorCount int
		err := config.DB.QueryRow("SELECT COUNT(*) FROM doctors WHERE id = ?", *req.DoctorID).Scan(&doctorCount)
		if err != nil || doctorCount == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Linked doctor not found",
			})
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	result, err := config.DB.Exec(`
		INSERT INTO users (name, username, password, role, is_active, doctor_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'y', ?, NOW(), NOW())
	`, req.Name, req.Username, string(hashed), req.Role, req.DoctorID)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	id, _ := result.LastInsertId()

	var u models.User
	err = scanUser(config.DB.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id), &u)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch created user",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User created",
		"data":    models.ToUserResponse(u),
	})
}

// UpdateUser
func UpdateUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	var req models.UpdateUserRequest
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
	if req.Username != "" {
		var count int
		err := config.DB.QueryRow(
			"SELECT COUNT(*) FROM users WHERE username = ? AND id != ?",
			req.Username, id,
		).Scan(&count)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to validate username",
			})
		}
		if count > 0 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Username already in use",
			})
		}
		sets = append(sets, "username = ?")
		args = append(args, req.Username)
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Password must be at least 8 characters",
			})
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to hash password",
			})
		}
		sets = append(sets, "password = ?")
		args = append(args, string(hashed))
	}
	if req.Role != "" {
		if !validRole(req.Role) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "role must be super_admin, receptionist or doctor",
			})
		}
		sets = append(sets, "role = ?")
		args = append(args, req.Role)
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
	if req.DoctorID != nil {
		var doctorCount int
		err := config.DB.QueryRow("SELECT COUNT(*) FROM doctors WHERE id = ?", *req.DoctorID).Scan(&doctorCount)
		if err != nil || doctorCount == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Linked doctor not found",
			})
		}
		sets = append(sets, "doctor_id = ?")
		args = append(args, *req.DoctorID)
	}

	if len(sets) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Nothing to update",
		})
	}

	args = append(args, id)
	query := "UPDATE users SET " + strings.Join(sets, ", ") + ", updated_at = NOW() WHERE id = ?"

	result, err := config.DB.Exec(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update user",
		})
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User updated",
	})
}

// HardDeleteUser - permanent removal, super admin only
func HardDeleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	actorID := c.Locals("user_id").(int64)
	if actorID == int64(id) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You cannot delete your own account",
		})
	}

	result, err := config.DB.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete user",
		})
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User deleted",
	})
}
