package models

import "time"

// Clinical status of a token. Stored verbatim in the tokens.status column.
const (
	StatusWaiting        = "waiting"
	StatusInConsultation = "in-consultation"
	StatusCompleted      = "completed"
	StatusCancelled      = "cancelled"
)

// Payment axis, independent of clinical status.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

type Token struct {
	ID            int64     `json:"id"`
	TokenNumber   int       `json:"token_number"`
	PatientID     int64     `json:"patient_id"`
	DoctorID      int64     `json:"doctor_id"`
	VisitDate     string    `json:"visit_date"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Fee           int64     `json:"fee"`
	ReceiptNo     *string   `json:"receipt_no,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type TokenEvent struct {
	ID          int64     `json:"id"`
	TokenID     int64     `json:"token_id"`
	Event       string    `json:"event"` // issue, start, complete, cancel, payment
	ActorUserID *int64    `json:"actor_user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type IssueTokenRequest struct {
	PatientID     int64  `json:"patient_id"`
	DoctorID      int64  `json:"doctor_id"`
	Consent       bool   `json:"consent"`
	PaymentStatus string `json:"payment_status" validate:"omitempty,oneof=pending paid"`
}

// QueueRow is a token decorated with patient info for queue listings.
type QueueRow struct {
	Token
	PatientName string `json:"patient_name"`
	MRNumber    string `json:"mr_number"`
}
