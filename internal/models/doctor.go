package models

import "time"

type Doctor struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	DepartmentID   int64     `json:"department_id"`
	Specialization string    `json:"specialization"`
	Fee            int64     `json:"fee"`
	IsAvailable    string    `json:"is_available"` // y / n
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateDoctorRequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	DepartmentID   int64  `json:"department_id" validate:"required"`
	Specialization string `json:"specialization" validate:"omitempty,max=255"`
	Fee            int64  `json:"fee" validate:"min=0"`
	IsAvailable    string `json:"is_available" validate:"omitempty,oneof=y n"`
}

type UpdateDoctorRequest struct {
	Name           string `json:"name" validate:"omitempty,max=255"`
	DepartmentID   *int64 `json:"department_id"`
	Specialization string `json:"specialization" validate:"omitempty,max=255"`
	Fee            *int64 `json:"fee" validate:"omitempty,min=0"`
	IsAvailable    string `json:"is_available" validate:"omitempty,oneof=y n"`
}

// DoctorQueueSummary is one row of the queue overview: today's token
// counts for a single doctor, partitioned by status.
type DoctorQueueSummary struct {
	DoctorID       int64  `json:"doctor_id"`
	DoctorName     string `json:"doctor_name"`
	Department     string `json:"department"`
	Total          int    `json:"total"`
	Waiting        int    `json:"waiting"`
	InConsultation int    `json:"in_consultation"`
	Completed      int    `json:"completed"`
	Cancelled      int    `json:"cancelled"`
}
