package models

import "time"

type Department struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsActive  string    `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateDepartmentRequest struct {
	Code     string `json:"code" validate:"required,max=10"`
	Name     string `json:"name" validate:"required,max=255"`
	IsActive string `json:"is_active" validate:"omitempty,oneof=y n"`
}

type UpdateDepartmentRequest struct {
	Code     string `json:"code" validate:"omitempty,max=10"`
	Name     string `json:"name" validate:"omitempty,max=255"`
	IsActive string `json:"is_active" validate:"omitempty,oneof=y n"`
}
