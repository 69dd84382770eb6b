package handler

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectIssueFlow(mock sqlmock.Sqlmock, patientID, doctorID int64, todayCount int, newTokenID int64) {
	mock.ExpectQuery(`SELECT name, mr_number FROM patients WHERE id = \?`).
		WithArgs(patientID).
		WillReturnRows(sqlmock.NewRows([]string{"name", "mr_number"}).
			AddRow("Ali Raza", "MR-2026-000001"))

	mock.ExpectQuery(`SELECT name, fee, is_available FROM doctors WHERE id = \?`).
		WithArgs(doctorID).
		WillReturnRows(sqlmock.NewRows([]string{"name", "fee", "is_available"}).
			AddRow("Sara Khan", 1500, "y"))

	// No configured hours, the open-check is skipped
	mock.ExpectQuery(`SELECT opening_time, closing_time FROM settings`).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tokens WHERE doctor_id = \? AND visit_date = CURDATE\(\)`).
		WithArgs(doctorID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(todayCount))

	mock.ExpectExec(`INSERT INTO tokens \(token_number, patient_id, doctor_id`).
		WithArgs(todayCount+1, patientID, doctorID, "pending", 1500).
		WillReturnResult(sqlmock.NewResult(newTokenID, 1))

	mock.ExpectExec(`INSERT INTO token_events`).
		WithArgs(newTokenID, int64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectQuery(`SELECT id, token_number, patient_id, doctor_id, visit_date, status`).
		WithArgs(newTokenID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "token_number", "patient_id", "doctor_id", "visit_date",
			"status", "payment_status", "fee", "created_at", "updated_at",
		}).AddRow(newTokenID, todayCount+1, patientID, doctorID, "2026-08-27",
			"waiting", "pending", 1500, time.Now(), time.Now()))
}

func TestIssueTokenFirstOfDay(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(authOpts{userID: 1, name: "Front Desk", role: "receptionist"})
	app.Post("/api/tokens", IssueToken)

	expectIssueFlow(mock, 3, 5, 0, 7)

	resp := doJSON(t, app, "POST", "/api/tokens", map[string]interface{}{
		"patient_id": 3,
		"doctor_id":  5,
		"consent":    true,
	})
	require.Equal(t, 201, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["queue_number"])
	assert.Equal(t, "Ali Raza", data["patient_name"])
	assert.Equal(t, "Sara Khan", data["doctor_name"])

	token := data["token"].(map[string]interface{})
	assert.Equal(t, "waiting", token["status"])
	assert.Equal(t, "pending", token["payment_status"])
	assert.Equal(t, float64(1500), token["fee"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueTokenConsentDeclined(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(authOpts{userID: 1, role: "receptionist"})
	app.Post("/api/tokens", IssueToken)

	resp := doJSON(t, app, "POST", "/api/tokens", map[string]interface{}{
		"patient_id": 3,
		"doctor_id":  5,
		"consent":    false,
	})
	require.Equal(t, 400, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "consent")

	// Nothing was written
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueTokenPatientNotFound(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(authOpts{userID: 1, role: "receptionist"})
	app.Post("/api/tokens", IssueToken)

	mock.ExpectQuery(`SELECT name, mr_number FROM patients WHERE id = \?`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	resp := doJSON(t, app, "POST", "/api/tokens", map[string]interface{}{
		"patient_id": 99,
		"doctor_id":  5,
		"consent":    true,
	})
	require.Equal(t, 404, resp.StatusCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueTokenDoctorUnavailable(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(authOpts{userID: 1, role: "receptionist"})
	app.Post("/api/tokens", IssueToken)

	mock.ExpectQuery(`SELECT name, mr_number FROM patients WHERE id = \?`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "mr_number"}).
			AddRow("Ali Raza", "MR-2026-000001"))

	mock.ExpectQuery(`SELECT name, fee, is_available FROM doctors WHERE id = \?`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "fee", "is_available"}).
			AddRow("Sara Khan", 1500, "n"))

	resp := doJSON(t, app, "POST", "/api/tokens", map[string]interface{}{
		"patient_id": 3,
		"doctor_id":  5,
		"consent":    true,
	})
	require.Equal(t, 400, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "not available")

	require.NoError(t, mock.ExpectationsWereMet())
}

// TestConcurrentIssuanceRace pins down the numbering behavior under
// interleaved issuance: both requests read the same count before either
// insert lands, so both are issued token number 4. The desk runs off a
// single terminal, so the duplicate window is tolerated rather than
// locked away.
func TestConcurrentIssuanceRace(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(authOpts{userID: 1, role: "receptionist"})
	app.Post("/api/tokens", IssueToken)

	issue := func(newTokenID int64) map[string]interface{} {
		// Stale count: 3 tokens on record both times
		expectIssueFlow(mock, 3, 5, 3, newTokenID)

		resp := doJSON(t, app, "POST", "/api/tokens", map[string]interface{}{
			"patient_id": 3,
			"doctor_id":  5,
			"consent":    true,
		})
		require.Equal(t, 201, resp.StatusCode)
		return decodeBody(t, resp)
	}

	first := issue(10)
	second := issue(11)

	firstNumber := first["data"].(map[string]interface{})["queue_number"]
	secondNumber := second["data"].(map[string]interface{})["queue_number"]

	assert.Equal(t, float64(4), firstNumber)
	assert.Equal(t, firstNumber, secondNumber)

	require.NoError(t, mock.ExpectationsWereMet())
}

func expectTokenLookup(mock sqlmock.Sqlmock, tokenID int64, status string, tokenNumber int, doctorID int64) {
	mock.ExpectQuery(`SELECT status, token_number, doctor_id FROM tokens WHERE id = \?`).
		WithArgs(tokenID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "token_number", "doctor_id"}).
			AddRow(status, tokenNumber, doctorID))
}

func TestStartConsultationFromWaiting(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(authOpts{userID: 2, role: "doctor"})
	app.Post("/api/tokens/:id/start", StartConsultation)

	expectTokenLookup(mock, 9, "waiting", 4, 5)

	mock.ExpectExec(`UPDATE tokens SET status = \?, updated_at = NOW\(\) WHERE id = \?`).
		WithArgs("in-consultation", 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(`INSERT INTO token_events`).
		WithArgs(9, "start", int64(2)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp := doJSON(t, app, "POST", "/api/tokens/9/start", nil)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "waiting", data["from"])
	assert.Equal(t, "in-consultation", data["status"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStartConsultationOnCompletedRejected(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(authOpts{userID: 2, role: "doctor"})
	app.Post("/api/tokens/:id/start", StartConsultation)

	expectTokenLookup(mock, 9, "completed", 4, 5)

	resp := doJSON(t, app, "POST", "/api/tokens/9/start", nil)
	require.Equal(t, 409, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "completed")

	// No UPDATE was attempted
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelTokenIdempotent(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(authOpts{userID: 1, role: "receptionist"})
	app.Post("/api/tokens/:id/cancel", CancelToken)

	// Already cancelled, the repeat request re-writes the same status
	expectTokenLookup(mock, 9, "cancelled", 4, 5)

	mock.ExpectExec(`UPDATE tokens SET status = \?, updated_at = NOW\(\) WHERE id = \?`).
		WithArgs("cancelled", 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(`INSERT INTO token_events`).
		WithArgs(9, "cancel", int64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp := doJSON(t, app, "POST", "/api/tokens/9/cancel", nil)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "cancelled", data["status"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTokenEvents(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(authOpts{userID: 1, role: "receptionist"})
	app.Get("/api/tokens/:id/events", GetTokenEvents)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tokens WHERE id = \?`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`SELECT id, token_id, event, actor_user_id, created_at FROM token_events WHERE token_id = \?`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "token_id", "event", "actor_user_id", "created_at"}).
			AddRow(1, 9, "issue", 1, time.Now()).
			AddRow(2, 9, "start", 2, time.Now()))

	resp := doJSON(t, app, "GET", "/api/tokens/9/events", nil)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	events := body["data"].([]interface{})
	require.Len(t, events, 2)

	first := events[0].(map[string]interface{})
	assert.Equal(t, "issue", first["event"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkTokenPaid(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(authOpts{userID: 1, role: "receptionist"})
	app.Post("/api/tokens/:id/payment", MarkTokenPaid)

	mock.ExpectQuery(`SELECT payment_status, fee FROM tokens WHERE id = \?`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"payment_status", "fee"}).
			AddRow("pending", 1500))

	mock.ExpectExec(`UPDATE tokens SET payment_status = 'paid', receipt_no = \?`).
		WithArgs(sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(`INSERT INTO token_events`).
		WithArgs(9, int64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp := doJSON(t, app, "POST", "/api/tokens/9/payment", nil)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "paid", data["payment_status"])
	assert.NotEmpty(t, data["receipt_no"])
	assert.Equal(t, float64(1500), data["amount"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkTokenPaidAlreadyPaid(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(authOpts{userID: 1, role: "receptionist"})
	app.Post("/api/tokens/:id/payment", MarkTokenPaid)

	mock.ExpectQuery(`SELECT payment_status, fee FROM tokens WHERE id = \?`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"payment_status", "fee"}).
			AddRow("paid", 1500))

	resp := doJSON(t, app, "POST", "/api/tokens/9/payment", nil)
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Token already paid", body["message"])

	require.NoError(t, mock.ExpectationsWereMet())
}
