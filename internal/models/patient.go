package models

import "time"

type Patient struct {
	ID        int64     `json:"id"`
	MRNumber  string    `json:"mr_number"`
	Name      string    `json:"name"`
	CNIC      string    `json:"cnic"`
	Phone     string    `json:"phone"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreatePatientRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	CNIC    string `json:"cnic" validate:"omitempty"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
	Age     int    `json:"age" validate:"min=0,max=150"`
	Gender  string `json:"gender" validate:"omitempty,oneof=male female other"`
	Address string `json:"address" validate:"omitempty,max=500"`
}

type UpdatePatientRequest struct {
	Name    string `json:"name" validate:"omitempty,max=255"`
	CNIC    string `json:"cnic" validate:"omitempty"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
	Age     *int   `json:"age" validate:"omitempty,min=0,max=150"`
	Gender  string `json:"gender" validate:"omitempty,oneof=male female other"`
	Address string `json:"address" validate:"omitempty,max=500"`
}
