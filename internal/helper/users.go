package helper

import (
	"database/sql"
	"errors"

	"backend-hms/internal/config"
	"backend-hms/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// GetUserByUsername is the single auth lookup every login path goes
// through. Password hash included; callers must not serialize it.
func GetUserByUsername(username string) (models.User, error) {
	var user models.User

	query := `SELECT id, name, username, password, role, is_active, doctor_id
	          FROM users WHERE username = ?`
	err := config.DB.QueryRow(query, username).Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.Password,
		&user.Role,
		&user.IsActive,
		&user.DoctorID,
	)

	if err == sql.ErrNoRows {
		return user, ErrUserNotFound
	}

	return user, err
}
