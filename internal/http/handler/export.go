package handler

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ExportDatabase - nightly backup download for the admin. Guarded by
// basic auth at the route level, not JWT, so the backup script can hit
// it with plain credentials.
func ExportDatabase(c *fiber.Ctx) error {
	mode := os.Getenv("BACKUP_MODE")

	switch mode {
	case "docker_exec":
		return exportDatabaseDockerExec(c)

	case "direct", "":
		return exportDatabaseDirect(c)

	default:
		return c.Status(500).JSON(fiber.Map{
			"error": "Invalid BACKUP_MODE",
		})
	}
}

func exportDatabaseDockerExec(c *fiber.Ctx) error {
	fileName := fmt.Sprintf("hms-backup-%s.sql", time.Now().Format("20060102-150405"))
	filePath := "/tmp/" + fileName

	cmd := exec.Command(
		"docker", "exec", "mysql",
		"mysqldump",
		"--no-tablespaces",
		"--single-transaction",
		"--routines",
		"--triggers",
		"--events",
		"--default-character-set=utf8mb4",
		"-u"+os.Getenv("DB_USER"),
		"--password="+os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
	)

	return runDump(c, cmd, fileName, filePath)
}

func exportDatabaseDirect(c *fiber.Ctx) error {
	fileName := fmt.Sprintf("hms-backup-%s.sql", time.Now().Format("20060102-150405"))
	filePath := "/tmp/" + fileName

	cmd := exec.Command(
		"mysqldump",
		"--no-tablespaces",
		"--single-transaction",
		"--quick",
		"--routines",
		"--triggers",
		"--events",
		"--default-character-set=utf8mb4",
		"-h", os.Getenv("DB_HOST"),
		"-P", os.Getenv("DB_PORT"),
		"-u"+os.Getenv("DB_USER"),
		"--password="+os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
	)

	return runDump(c, cmd, fileName, filePath)
}

func runDump(c *fiber.Ctx, cmd *exec.Cmd, fileName, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	defer file.Close()
	defer os.Remove(filePath) // cleanup after download

	cmd.Stdout = file
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Set("Content-Type", "application/sql")

	return c.SendFile(filePath)
}
