package routes

import (
	"log"

	"github.com/AbelSturm/fitzoapp/internal/config"
	"github.com/AbelSturm/fitzoapp/internal/handlers"
	"github.com/AbelSturm/fitzoapp/internal/middleware"
	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/AbelSturm/fitzoapp/internal/repository"
	"github.com/AbelSturm/fitzoapp/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Services holds the application services shared by the HTTP layer and the
// startup tasks in cmd/server.
type Services struct {
	Identity       *services.IdentityService
	Profiles       *services.ProfileService
	Questionnaires *services.QuestionnaireService
	Workouts       *services.WorkoutService
	Athletes       *services.AthleteService
	Users          *services.UserService
	ProfileLookup  middleware.ProfileLookup
}

func NewServices(cfg *config.Config, db *pgxpool.Pool) *Services {
	tx := repository.NewPoolTxRunner(db)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	rosterRepo := repository.NewTrainerAthleteRepository(db)

	var storageService services.StorageService
	if cfg.StorageConfigured() {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	} else {
		log.Println("Supabase storage not configured, avatar uploads disabled")
	}

	var notifier services.Notifier = services.NoopNotifier{}
	if cfg.EmailConfigured() {
		notifier = services.NewResendNotifier(cfg.ResendAPIKey, cfg.EmailFrom)
	} else {
		log.Println("Resend not configured, assignment emails disabled")
	}

	questionnaireService := services.NewQuestionnaireService(db, tx, profileRepo, notifier, cfg.AppBaseURL)
	workoutService := services.NewWorkoutService(db, tx, profileRepo, notifier, cfg.AppBaseURL)

	return &Services{
		Identity:       services.NewIdentityService(tx, userRepo, sessionRepo, cfg.JWTSecret, cfg.SessionTTL),
		Profiles:       services.NewProfileService(profileRepo, storageService),
		Questionnaires: questionnaireService,
		Workouts:       workoutService,
		Athletes:       services.NewAthleteService(rosterRepo, profileRepo, questionnaireService, workoutService),
		Users:          services.NewUserService(tx, profileRepo),
		ProfileLookup:  profileRepo,
	}
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, svc *Services) error {
	authHandler := handlers.NewAuthHandler(svc.Identity, cfg.CookieSecure)
	profileHandler := handlers.NewProfileHandler(svc.Profiles, svc.Athletes)
	dashboardHandler := handlers.NewDashboardHandler(svc.Questionnaires, svc.Workouts, svc.Athletes, svc.Users)
	questionnaireHandler := handlers.NewQuestionnaireHandler(svc.Questionnaires)
	workoutHandler := handlers.NewWorkoutHandler(svc.Workouts)
	athleteHandler := handlers.NewAthleteHandler(svc.Athletes)
	userHandler := handlers.NewUserHandler(svc.Users)
	gate := middleware.NewGate(svc.Identity, svc.ProfileLookup, cfg.CookieSecure)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/", authHandler.Home)
	app.Get(middleware.LoginPath, authHandler.LoginPage)

	auth := app.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)

	if err := registerDocsRoutes(app, cfg); err != nil {
		return err
	}

	dashboard := app.Group("/dashboard", gate.Handler())
	dashboard.Get("/", middleware.DashboardHome())

	for _, role := range []models.Role{models.RoleAdmin, models.RoleTrainer, models.RoleAthlete} {
		subtree := dashboard.Group("/"+role.String(), middleware.RequireRole(role))
		subtree.Get("/", dashboardHandler.Summary)
		subtree.Get("/profile", profileHandler.GetProfile)
		subtree.Put("/profile", profileHandler.UpdateProfile)
		subtree.Post("/profile/avatar", profileHandler.UploadAvatar)
		subtree.Get("/settings", profileHandler.GetSettings)
		subtree.Put("/settings", profileHandler.UpdateSettings)

		switch role {
		case models.RoleAdmin, models.RoleTrainer:
			registerContentRoutes(subtree, questionnaireHandler, workoutHandler)
			registerRosterRoutes(subtree, athleteHandler)
		case models.RoleAthlete:
			registerAthleteRoutes(subtree, questionnaireHandler, workoutHandler)
		}
		if role == models.RoleAdmin {
			users := subtree.Group("/users")
			users.Get("/", userHandler.List)
			users.Get("/:id", userHandler.Get)
			users.Put("/:id/role", userHandler.UpdateRole)
		}
	}

	return nil
}

func registerContentRoutes(
	router fiber.Router,
	questionnaireHandler *handlers.QuestionnaireHandler,
	workoutHandler *handlers.WorkoutHandler,
) {
	questionnaires := router.Group("/questionnaires")
	questionnaires.Get("/", questionnaireHandler.List)
	questionnaires.Post("/", questionnaireHandler.Create)
	questionnaires.Get("/:id", questionnaireHandler.Get)
	questionnaires.Put("/:id", questionnaireHandler.Update)
	questionnaires.Delete("/:id", questionnaireHandler.Delete)
	questionnaires.Get("/:id/edit", questionnaireHandler.Edit)
	questionnaires.Put("/:id/edit", questionnaireHandler.Update)
	questionnaires.Get("/:id/assignments", questionnaireHandler.ListAssignments)
	questionnaires.Post("/:id/assignments", questionnaireHandler.Assign)
	questionnaires.Put("/:id/assignments/:assignmentId/status", questionnaireHandler.UpdateAssignmentStatus)
	questionnaires.Get("/:id/assignments/:assignmentId/responses", questionnaireHandler.AssignmentResponses)

	workouts := router.Group("/workouts")
	workouts.Get("/", workoutHandler.List)
	workouts.Post("/", workoutHandler.Create)
	workouts.Get("/:id", workoutHandler.Get)
	workouts.Put("/:id", workoutHandler.Update)
	workouts.Delete("/:id", workoutHandler.Delete)
	workouts.Get("/:id/edit", workoutHandler.Edit)
	workouts.Put("/:id/edit", workoutHandler.Update)
	workouts.Get("/:id/assignments", workoutHandler.ListAssignments)
	workouts.Post("/:id/assignments", workoutHandler.Assign)
	workouts.Put("/:id/assignments/:assignmentId/status", workoutHandler.UpdateAssignmentStatus)
}

func registerRosterRoutes(router fiber.Router, athleteHandler *handlers.AthleteHandler) {
	athletes := router.Group("/athletes")
	athletes.Get("/", athleteHandler.List)
	athletes.Post("/", athleteHandler.Add)
	athletes.Get("/search", athleteHandler.Search)
	athletes.Get("/:id", athleteHandler.Get)
	athletes.Delete("/:id", athleteHandler.Remove)
	athletes.Put("/:id/status", athleteHandler.UpdateStatus)
}

func registerAthleteRoutes(
	router fiber.Router,
	questionnaireHandler *handlers.QuestionnaireHandler,
	workoutHandler *handlers.WorkoutHandler,
) {
	questionnaires := router.Group("/questionnaires")
	questionnaires.Get("/", questionnaireHandler.AthleteList)
	questionnaires.Get("/:id", questionnaireHandler.AthleteGet)
	questionnaires.Put("/:id/status", questionnaireHandler.AthleteUpdateStatus)
	questionnaires.Post("/:id/responses", questionnaireHandler.SubmitResponses)

	workouts := router.Group("/workouts")
	workouts.Get("/", workoutHandler.AthleteList)
	workouts.Get("/:id", workoutHandler.AthleteGet)
	workouts.Put("/:id/status", workoutHandler.AthleteUpdateStatus)
}
