package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/hostelgate/hostelgate/internal/api/docs"
	"github.com/hostelgate/hostelgate/internal/api/handler"
	"github.com/hostelgate/hostelgate/internal/api/middleware"
	"github.com/hostelgate/hostelgate/internal/audit"
	"github.com/hostelgate/hostelgate/internal/recognizer"
	"github.com/hostelgate/hostelgate/internal/store"
	"github.com/hostelgate/hostelgate/internal/summary"
	"github.com/hostelgate/hostelgate/internal/ws"
)

// Dependencies carries everything the kiosk-facing API serves. Voice may be
// nil when no speech service is configured.
type Dependencies struct {
	Store       *store.Store
	Coordinator *recognizer.Coordinator
	Summarizer  *summary.Summarizer
	Voice       handler.VoiceIdentifier
	Hub         *ws.Hub
	Audit       audit.Logger
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Hostelgate Agent",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	healthHandler := handler.NewHealthHandler()
	r.app.Get("/healthz", healthHandler.Health)
	r.app.Get("/readyz", healthHandler.Ready)

	v1 := r.app.Group("/v1")

	if r.deps == nil {
		return
	}

	// Rate limiting keyed by client IP
	r.rateLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	v1.Use(r.rateLimiter.Handler())

	identityHandler := handler.NewIdentityHandler(r.deps.Coordinator, r.deps.Store, r.deps.Hub, r.logger)
	recognitionHandler := handler.NewRecognitionHandler(
		r.deps.Coordinator, r.deps.Store, r.deps.Voice, r.deps.Hub, r.deps.Audit, r.logger)
	summaryHandler := handler.NewSummaryHandler(r.deps.Summarizer, r.logger)

	// Registry routes
	v1.Post("/identities", identityHandler.Register)
	v1.Get("/identities", identityHandler.List)
	v1.Get("/identities/:id", identityHandler.Get)
	v1.Delete("/identities/:id", identityHandler.Delete)
	v1.Get("/identities/:id/logs", identityHandler.Logs)

	// Entry/exit log routes
	v1.Post("/logs", recognitionHandler.Log)
	v1.Get("/logs", recognitionHandler.AllLogs)

	// Recognition session routes
	v1.Get("/recognition", recognitionHandler.Status)
	v1.Post("/recognition/session", recognitionHandler.StartSession)
	v1.Delete("/recognition/session", recognitionHandler.StopSession)

	// Voice fallback
	v1.Post("/voice/identify", recognitionHandler.VoiceIdentify)

	// Activity summaries
	v1.Get("/summary", summaryHandler.Group)
	v1.Get("/summary/identity/:id", summaryHandler.Identity)

	// WebSocket event stream
	v1.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.deps.Hub))
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}
	return r.app.Shutdown()
}
