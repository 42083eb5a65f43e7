package routes

import (
	"studytrack/backend/config"
	"studytrack/backend/controllers"
	"studytrack/backend/middleware"
	"studytrack/backend/progress"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, agg *progress.Aggregator) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg, agg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Overview route
	overviewController := controllers.NewOverviewController(db, cfg, agg)
	app.Get("/api/overview", authMiddleware, overviewController.GetUserOverview)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg, agg)
	app.Get("/api/progress", authMiddleware, progressController.GetProgress)
	app.Post("/api/progress/refresh", authMiddleware, progressController.RefreshProgress)
	app.Get("/api/progress/streak", authMiddleware, progressController.GetStreak)
	app.Get("/api/progress/history", authMiddleware, progressController.GetHistory)
	app.Get("/api/badges", authMiddleware, progressController.GetBadges)

	// Subjects routes
	subjectsController := controllers.NewSubjectsController(db, cfg, agg)
	subjects := app.Group("/api/subjects", authMiddleware)
	subjects.Get("/", subjectsController.GetSubjects)
	subjects.Post("/", subjectsController.CreateSubject)
	subjects.Delete("/:id", subjectsController.DeleteSubject)
	subjects.Post("/:id/topics", subjectsController.AddTopic)
	subjects.Post("/:id/topics/bulk-toggle", subjectsController.BulkToggleTopics)
	subjects.Put("/:id/topics/:topicId/toggle", subjectsController.ToggleTopic)
	subjects.Delete("/:id/topics/:topicId", subjectsController.DeleteTopic)

	// Tasks routes
	tasksController := controllers.NewTasksController(db, cfg)
	tasks := app.Group("/api/tasks", authMiddleware)
	tasks.Get("/", tasksController.GetTasks)
	tasks.Post("/", tasksController.CreateTask)
	tasks.Put("/:id", tasksController.UpdateTask)
	tasks.Put("/:id/toggle", tasksController.ToggleTask)
	tasks.Delete("/:id", tasksController.DeleteTask)

	// Goals routes
	goalsController := controllers.NewGoalsController(db, cfg)
	goals := app.Group("/api/goals", authMiddleware)
	goals.Get("/", goalsController.GetGoals)
	goals.Post("/", goalsController.CreateGoal)
	goals.Put("/:id/toggle", goalsController.ToggleGoal)
	goals.Delete("/:id", goalsController.DeleteGoal)

	// Calendar routes
	calendarController := controllers.NewCalendarController(db, cfg)
	calendar := app.Group("/api/calendar", authMiddleware)
	calendar.Get("/", calendarController.GetEvents)
	calendar.Get("/upcoming", calendarController.GetUpcoming)
	calendar.Post("/", calendarController.CreateEvent)
	calendar.Delete("/:id", calendarController.DeleteEvent)

	// Sessions routes
	sessionsController := controllers.NewSessionsController(db, cfg)
	sessions := app.Group("/api/sessions", authMiddleware)
	sessions.Get("/", sessionsController.GetSessions)
	sessions.Post("/start", sessionsController.StartSession)
	sessions.Post("/:id/stop", sessionsController.StopSession)
	sessions.Delete("/:id", sessionsController.DeleteSession)

	// Notes routes
	notesController := controllers.NewNotesController(db, cfg)
	notes := app.Group("/api/notes", authMiddleware)
	notes.Get("/", notesController.GetNotes)
	notes.Post("/", notesController.CreateNote)
	notes.Put("/:id", notesController.UpdateNote)
	notes.Delete("/:id", notesController.DeleteNote)

	// Settings routes
	settingsController := controllers.NewSettingsController(db, cfg)
	app.Get("/api/settings", authMiddleware, settingsController.GetSettings)
	app.Put("/api/settings", authMiddleware, settingsController.UpdateSettings)

	// Export routes
	exportController := controllers.NewExportController(db, cfg)
	app.Get("/api/export/sessions", authMiddleware, exportController.ExportSessions)
}
