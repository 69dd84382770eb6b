package handler

import (
	"database/sql"
	"fmt"
	"strings"

	"backend-hms/internal/config"

	"github.com/gofiber/fiber/v2"
)

// Collection describes one table exposed through the generic record
// surface. Every module without a dedicated handler (labs, admissions,
// billing, reference data) persists its rows through this path.
type Collection struct {
	Table    string
	Writable []string
	Required []string
}

// collections is the whitelist; anything else is rejected. The tokens
// collection is deliberately included WITHOUT transition validation: a
// raw update here can set any status from any prior status, unlike the
// guarded action endpoints.
var collections = map[string]Collection{
	"departments": {
		Table:    "departments",
		Writable: []string{"code", "name", "is_active"},
		Required: []string{"code", "name"},
	},
	"rooms": {
		Table:    "rooms",
		Writable: []string{"number", "ward", "room_type", "is_occupied"},
		Required: []string{"number", "ward"},
	},
	"lab_tests": {
		Table:    "lab_tests",
		Writable: []string{"code", "name", "price", "is_active"},
		Required: []string{"code", "name"},
	},
	"treatments": {
		Table:    "treatments",
		Writable: []string{"name", "price", "is_active"},
		Required: []string{"name"},
	},
	"lab_orders": {
		Table:    "lab_orders",
		Writable: []string{"patient_id", "doctor_id", "test_id", "status", "result"},
		Required: []string{"patient_id", "test_id"},
	},
	"admissions": {
		Table:    "admissions",
		Writable: []string{"patient_id", "doctor_id", "room_id", "status", "discharged_at"},
		Required: []string{"patient_id", "room_id"},
	},
	"bills": {
		Table:    "bills",
		Writable: []string{"patient_id", "amount", "description", "status"},
		Required: []string{"patient_id", "amount"},
	},
	"tokens": {
		Table:    "tokens",
		Writable: []string{"token_number", "patient_id", "doctor_id", "visit_date", "status", "payment_status", "fee"},
		Required: []string{"patient_id", "doctor_id"},
	},
}

func lookupCollection(c *fiber.Ctx) (Collection, bool) {
	col, ok := collections[c.Params("collection")]
	return col, ok
}

func isWritable(col Collection, field string) bool {
	for _, w := range col.Writable {
		if w == field {
			return true
		}
	}
	return false
}

// scanRows turns a generic result set into JSON-friendly maps.
func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			continue
		}

		record := map[string]interface{}{}
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = values[i]
			}
		}
		out = append(out, record)
	}

	return out, nil
}

// ListRecords - GET /api/records/:collection
func ListRecords(c *fiber.Ctx) error {
	col, ok := lookupCollection(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown collection",
		})
	}

	rows, err := config.DB.Query(fmt.Sprintf("SELECT * FROM %s ORDER BY id ASC", col.Table))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list records",
		})
	}
	defer rows.Close()

	records, err := scanRows(rows)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read records",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    records,
	})
}

// GetRecordByID - GET /api/records/:collection/:id
func GetRecordByID(c *fiber.Ctx) error {
	col, ok := lookupCollection(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown collection",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid record id",
		})
	}

	rows, err := config.DB.Query(fmt.Sprintf("SELECT * FROM %s WHERE id = ?", col.Table), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch record",
		})
	}
	defer rows.Close()

	records, err := scanRows(rows)
	if err != nil || len(records) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Record not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    records[0],
	})
}

// CreateRecord - POST /api/records/:collection
func CreateRecord(c *fiber.Ctx) error {
	col, ok := lookupCollection(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown collection",
		})
	}

	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	for _, field := range col.Required {
		if _, present := body[field]; !present {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("%s is required", field),
			})
		}
	}

	fields := []string{}
	placeholders := []string{}
	args := []interface{}{}
	for field, value := range body {
		if !isWritable(col, field) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Unknown field %s", field),
			})
		}
		fields = append(fields, field)
		placeholders = append(placeholders, "?")
		args = append(args, value)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s, created_at, updated_at) VALUES (%s, NOW(), NOW())",
		col.Table,
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
	)

	result, err := config.DB.Exec(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create record",
		})
	}

	id, _ := result.LastInsertId()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"id": id},
	})
}

// UpdateRecord - PUT /api/records/:collection/:id
//
// No business validation happens here; a token update through this path
// bypasses the transition table entirely.
func UpdateRecord(c *fiber.Ctx) error {
	col, ok := lookupCollection(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown collection",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid record id",
		})
	}

	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Nothing to update",
		})
	}

	sets := []string{}
	args := []interface{}{}
	for field, value := range body {
		if !isWritable(col, field) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Unknown field %s", field),
			})
		}
		sets = append(sets, field+" = ?")
		args = append(args, value)
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE %s SET %s, updated_at = NOW() WHERE id = ?",
		col.Table,
		strings.Join(sets, ", "),
	)

	result, err := config.DB.Exec(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update record",
		})
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Record not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Record updated",
	})
}

// DeleteRecord - DELETE /api/records/:collection/:id
func DeleteRecord(c *fiber.Ctx) error {
	col, ok := lookupCollection(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown collection",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid record id",
		})
	}

	result, err := config.DB.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", col.Table), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete record",
		})
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Record not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Record deleted",
	})
}
