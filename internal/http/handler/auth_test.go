package handler

import (
	"testing"

	"backend-hms/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func expectUserLookup(t *testing.T, mock sqlmock.Sqlmock, username, password, role, isActive string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	mock.ExpectQuery(`SELECT id, name, username, password, role, is_active, doctor_id FROM users WHERE username = \?`).
		WithArgs(username).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "username", "password", "role", "is_active", "doctor_id",
		}).AddRow(1, "Front Desk", username, string(hash), role, isActive, nil))
}

func TestLoginSuccess(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("RECAPTCHA_SECRET_KEY", "")

	mock := newMockDB(t)
	app := fiber.New()
	app.Post("/auth/login", Login)

	expectUserLookup(t, mock, "reception", "s3cret", "receptionist", "y")

	resp := doJSON(t, app, "POST", "/auth/login", map[string]interface{}{
		"username": "reception",
		"password": "s3cret",
	})
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "Welcome back, Front Desk", body["message"])

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "receptionist", user["role"])
	assert.NotContains(t, user, "password")

	claims, err := config.ValidateToken(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "receptionist", claims.Role)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("RECAPTCHA_SECRET_KEY", "")

	mock := newMockDB(t)
	app := fiber.New()
	app.Post("/auth/login", Login)

	expectUserLookup(t, mock, "reception", "s3cret", "receptionist", "y")

	resp := doJSON(t, app, "POST", "/auth/login", map[string]interface{}{
		"username": "reception",
		"password": "wrong",
	})
	require.Equal(t, 401, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Wrong username or password", body["error"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginDeactivatedAccount(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("RECAPTCHA_SECRET_KEY", "")

	mock := newMockDB(t)
	app := fiber.New()
	app.Post("/auth/login", Login)

	expectUserLookup(t, mock, "reception", "s3cret", "receptionist", "n")

	resp := doJSON(t, app, "POST", "/auth/login", map[string]interface{}{
		"username": "reception",
		"password": "s3cret",
	})
	require.Equal(t, 403, resp.StatusCode)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginMissingCredentials(t *testing.T) {
	mock := newMockDB(t)
	app := fiber.New()
	app.Post("/auth/login", Login)

	resp := doJSON(t, app, "POST", "/auth/login", map[string]interface{}{
		"username": "reception",
	})
	require.Equal(t, 400, resp.StatusCode)

	require.NoError(t, mock.ExpectationsWereMet())
}
