package main

import (
	"log"
	"os"
	"runtime"

	"backend-hms/internal/config"
	"backend-hms/internal/http/handler"
	"backend-hms/internal/http/middleware"
	"backend-hms/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	app := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
	})

	config.LoadEnv()
	config.InitRedis()
	config.InitDB()
	defer config.CloseDB()

	go realtime.RunAvailabilityBroadcaster()

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "HMS OPD API running",
		})
	})

	// Public endpoints (token desk screens before login)
	app.Post("/auth/login", handler.Login)
	app.Get("/api/departments", handler.GetAllDepartments)
	app.Get("/api/doctors", handler.GetAllDoctors)
	app.Get("/api/settings", handler.GetSettings)
	app.Get("/api/display", handler.GetDisplayBoard)

	// WebSocket display surfaces
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/queue", websocket.New(handler.QueueBoardWS))
	app.Get("/ws/availability", websocket.New(handler.AvailabilityWS))

	// Database backup (basic auth, for the backup script)
	app.Get("/san/export", middleware.BasicAuth(), handler.ExportDatabase)

	// Base API (login required)
	api := app.Group("/api", middleware.JWTAuth())

	// Auth
	api.Post("/logout", handler.Logout)

	// Queue endpoints (all roles)
	api.Get("/queue/overview", handler.GetQueueOverview)
	api.Get("/queue/doctor/:doctorId", handler.GetDoctorQueue)
	api.Get("/dashboard", handler.GetDashboard)

	// ===== RECEPTIONIST ROUTES =====
	// Tokens
	api.Post("/tokens", middleware.RoleAuth("receptionist", "super_admin"), handler.IssueToken)
	api.Post("/tokens/:id/cancel", middleware.RoleAuth("receptionist", "super_admin"), handler.CancelToken)
	api.Post("/tokens/:id/payment", middleware.RoleAuth("receptionist", "super_admin"), handler.MarkTokenPaid)
	api.Get("/tokens/:id/events", middleware.RoleAuth("receptionist", "super_admin"), handler.GetTokenEvents)

	// Patients
	api.Get("/patients", middleware.RoleAuth("receptionist", "super_admin"), handler.GetAllPatients)
	api.Get("/patients/paginate", middleware.RoleAuth("receptionist", "super_admin"), handler.GetAllPatientsPagination)
	api.Get("/patients/:id", middleware.RoleAuth("receptionist", "super_admin"), handler.GetPatientByID)
	api.Post("/patients", middleware.RoleAuth("receptionist", "super_admin"), handler.CreatePatient)
	api.Put("/patients/:id", middleware.RoleAuth("receptionist", "super_admin"), handler.UpdatePatient)
	api.Delete("/patients/:id", middleware.RoleAuth("super_admin"), handler.DeletePatient)

	// ===== DOCTOR ROUTES =====
	api.Get("/queue/self", middleware.RoleAuth("doctor"), handler.GetMyQueue)
	api.Post("/tokens/:id/start", middleware.RoleAuth("doctor", "super_admin"), handler.StartConsultation)
	api.Post("/tokens/:id/complete", middleware.RoleAuth("doctor", "super_admin"), handler.CompleteConsultation)

	// ===== SUPER ADMIN ROUTES =====
	// Users
	api.Get("/users/paginate", middleware.RoleAuth("super_admin"), handler.GetAllUsersPagination)
	api.Get("/users", middleware.RoleAuth("super_admin"), handler.GetAllUsers)
	api.Get("/users/:id", middleware.RoleAuth("super_admin"), handler.GetUserByID)
	api.Post("/users", middleware.RoleAuth("super_admin"), handler.CreateUser)
	api.Put("/users/:id", middleware.RoleAuth("super_admin"), handler.UpdateUser)
	api.Delete("/users/:id/permanent", middleware.RoleAuth("super_admin"), handler.HardDeleteUser)

	// Doctors
	api.Get("/doctors/paginate", handler.GetAllDoctorsPagination)
	api.Get("/doctors/:id", handler.GetDoctorByID)
	api.Post("/doctors", middleware.RoleAuth("super_admin"), handler.CreateDoctor)
	api.Put("/doctors/:id", middleware.RoleAuth("super_admin"), handler.UpdateDoctor)
	api.Delete("/doctors/:id", middleware.RoleAuth("super_admin"), handler.DeleteDoctor)

	// Departments
	api.Post("/departments", middleware.RoleAuth("super_admin"), handler.CreateDepartment)
	api.Put("/departments/:id", middleware.RoleAuth("super_admin"), handler.UpdateDepartment)
	api.Delete("/departments/:id", middleware.RoleAuth("super_admin"), handler.DeleteDepartment)

	// Settings
	api.Post("/settings", middleware.RoleAuth("super_admin"), handler.CreateSettings)
	api.Put("/settings", middleware.RoleAuth("super_admin"), handler.UpdateSettings)

	// Reports
	api.Get("/reports/opd", middleware.RoleAuth("super_admin"), handler.GetOPDStatistics)

	// Generic record store (labs, admissions, billing, reference data)
	api.Get("/records/:collection", handler.ListRecords)
	api.Get("/records/:collection/:id", handler.GetRecordByID)
	api.Post("/records/:collection", handler.CreateRecord)
	api.Put("/records/:collection/:id", handler.UpdateRecord)
	api.Delete("/records/:collection/:id", handler.DeleteRecord)

	addr := os.Getenv("APP_HOST") + ":" + os.Getenv("APP_PORT")
	log.Println("Server running on", addr)
	log.Fatal(app.Listen(addr))
}
