package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"backend-hms/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
)

// TestMain installs a fallback mock DB so a debounced board broadcast
// firing after a test's own mock is torn down never hits a nil handle.
func TestMain(m *testing.M) {
	db, _, err := sqlmock.New()
	if err != nil {
		panic(err)
	}
	config.DB = db
	os.Exit(m.Run())
}

func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	prev := config.DB
	config.DB = db
	t.Cleanup(func() {
		config.DB = prev
		db.Close()
	})

	return mock
}

// authOpts are the locals the JWT middleware would have set.
type authOpts struct {
	userID   int64
	name     string
	role     string
	doctorID int64
}

func newTestApp(opts authOpts) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", opts.userID)
		c.Locals("name", opts.name)
		c.Locals("role", opts.role)
		if opts.doctorID > 0 {
			c.Locals("doctor_id", opts.doctorID)
		}
		return c.Next()
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}
