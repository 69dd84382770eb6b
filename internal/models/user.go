package models

import (
	"database/sql"
	"time"
)

/*
|--------------------------------------------------------------------------
| DATABASE MODEL (INTERNAL)
|--------------------------------------------------------------------------
| Used for DB queries only, never serialized directly.
*/
type User struct {
	ID        int64
	Name      string
	Username  string
	Password  string
	Role      string
	IsActive  string
	DoctorID  sql.NullInt64
	CreatedAt time.Time
	UpdatedAt time.Time
}

/*
|--------------------------------------------------------------------------
| REQUEST
|--------------------------------------------------------------------------
*/
type LoginRequest struct {
	Username       string `json:"username" validate:"required"`
	Password       string `json:"password" validate:"required"`
	RecaptchaToken string `json:"recaptcha_token"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=super_admin receptionist doctor"`
	DoctorID *int64 `json:"doctor_id"`
}

type UpdateUserRequest struct {
	Name     string `json:"name" validate:"omitempty,max=255"`
	Username string `json:"username" validate:"omitempty,max=100"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=super_admin receptionist doctor"`
	IsActive string `json:"is_active" validate:"omitempty,oneof=y n"`
	DoctorID *int64 `json:"doctor_id"`
}

/*
|--------------------------------------------------------------------------
| RESPONSE DTO
|--------------------------------------------------------------------------
*/
type UserResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
	DoctorID *int64 `json:"doctor_id,omitempty"`
}

/*
|--------------------------------------------------------------------------
| MAPPER
|--------------------------------------------------------------------------
| Convert User (DB) -> UserResponse (API)
*/
func ToUserResponse(u User) UserResponse {
	var doctorID *int64

	if u.DoctorID.Valid {
		doctorID = &u.DoctorID.Int64
	}

	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Role:     u.Role,
		DoctorID: doctorID,
	}
}
