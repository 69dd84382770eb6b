package handler

import (
	"testing"
	"time"

	"backend-hms/internal/helper"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePatientAssignsMRNumber(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(authOpts{userID: 1, role: "receptionist"})
	app.Post("/api/patients", CreatePatient)

	year := helper.CurrentMRYear()
	wantMR := helper.FormatMRNumber(year, 2)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM patients WHERE YEAR\(created_at\) = \?`).
		WithArgs(year).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	mock.ExpectExec(`INSERT INTO patients \(mr_number, name, cnic`).
		WithArgs(wantMR, "Ali Raza", "42101-1234567-1", "0300-1234567", 34, "male", "Karachi").
		WillReturnResult(sqlmock.NewResult(3, 1))

	now := time.Now()
	mock.ExpectQuery(`SELECT id, mr_number, name, cnic, phone, age, gender, address`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "mr_number", "name", "cnic", "phone", "age", "gender", "address", "created_at", "updated_at",
		}).AddRow(3, wantMR, "Ali Raza", "42101-1234567-1", "0300-1234567", 34, "male", "Karachi", now, now))

	resp := doJSON(t, app, "POST", "/api/patients", map[string]interface{}{
		"name":    "Ali Raza",
		"cnic":    "42101-1234567-1",
		"phone":   "0300-1234567",
		"age":     34,
		"gender":  "male",
		"address": "Karachi",
	})
	require.Equal(t, 201, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, wantMR, data["mr_number"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePatientRejectsBadCNIC(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(authOpts{userID: 1, role: "receptionist"})
	app.Post("/api/patients", CreatePatient)

	resp := doJSON(t, app, "POST", "/api/patients", map[string]interface{}{
		"name": "Ali Raza",
		"cnic": "42101-12345-1",
	})
	require.Equal(t, 400, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "CNIC")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePatientWithHistoryRefused(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(authOpts{userID: 1, role: "super_admin"})
	app.Delete("/api/patients/:id", DeletePatient)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tokens WHERE patient_id = \?`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	resp := doJSON(t, app, "DELETE", "/api/patients/3", nil)
	require.Equal(t, 409, resp.StatusCode)

	require.NoError(t, mock.ExpectationsWereMet())
}
