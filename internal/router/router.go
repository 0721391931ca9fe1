package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/libris-api/internal/config"
	"github.com/noah-isme/libris-api/internal/handler"
	"github.com/noah-isme/libris-api/internal/middleware"
	"github.com/noah-isme/libris-api/internal/models"
	"github.com/noah-isme/libris-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	UserHandler        *handler.UserHandler
	ActivityHandler    *handler.ActivityHandler
	UploadHandler      *handler.UploadHandler
	ContentHandler     *handler.ContentHandler
	BookHandler        *handler.ResourceHandler[models.Book]
	SubjectHandler     *handler.ResourceHandler[models.Subject]
	TranslatorHandler  *handler.ResourceHandler[models.Translator]
	PublicationHandler *handler.ResourceHandler[models.Publication]
	PronounHandler     *handler.ResourceHandler[models.Pronoun]
	FaqHandler         *handler.ResourceHandler[models.Faq]
	SiteContentHandler *handler.ResourceHandler[models.SiteContent]
	UserAdminHandler   *handler.ResourceHandler[models.User]
	JWTSecret          string
}

// Register wires the HTTP routes into the fiber application. Catalog
// reads are public; writes require an admin token. The users resource and
// the audit trail are admin-only end to end.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	optionalAuth := middleware.JWTOptional(deps.JWTSecret)
	requiredAuth := middleware.JWTProtected(deps.JWTSecret)
	adminOnly := middleware.RequireRole("admin")

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth", middleware.RateLimit("auth", 10, time.Minute)))
	}

	// Profile routes go first so /users/me wins over /users/:id.
	if deps.UserHandler != nil {
		profiles := api.Group("/users", optionalAuth)
		deps.UserHandler.Register(profiles)
	}

	if deps.UserAdminHandler != nil {
		users := api.Group("/users", requiredAuth, adminOnly)
		deps.UserAdminHandler.Register(users)
	}

	registerCatalog(api, optionalAuth, adminOnly, deps)

	if deps.ContentHandler != nil {
		deps.ContentHandler.Register(api.Group("/content"))
	}

	if deps.UploadHandler != nil {
		uploads := api.Group("/uploads", requiredAuth)
		deps.UploadHandler.Register(uploads)
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/activity", requiredAuth, adminOnly)
		deps.ActivityHandler.Register(activity)
	}
}

func registerCatalog(api fiber.Router, optionalAuth fiber.Handler, adminOnly fiber.Handler, deps Dependencies) {
	if deps.BookHandler != nil {
		deps.BookHandler.Register(api.Group("/books", optionalAuth), adminOnly)
	}
	if deps.SubjectHandler != nil {
		deps.SubjectHandler.Register(api.Group("/subjects", optionalAuth), adminOnly)
	}
	if deps.TranslatorHandler != nil {
		deps.TranslatorHandler.Register(api.Group("/translators", optionalAuth), adminOnly)
	}
	if deps.PublicationHandler != nil {
		deps.PublicationHandler.Register(api.Group("/publications", optionalAuth), adminOnly)
	}
	if deps.PronounHandler != nil {
		deps.PronounHandler.Register(api.Group("/pronouns", optionalAuth), adminOnly)
	}
	if deps.FaqHandler != nil {
		deps.FaqHandler.Register(api.Group("/faqs", optionalAuth), adminOnly)
	}
	if deps.SiteContentHandler != nil {
		deps.SiteContentHandler.Register(api.Group("/site-contents", optionalAuth), adminOnly)
	}
}
