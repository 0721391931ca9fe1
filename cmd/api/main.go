package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/libris-api/internal/config"
	"github.com/noah-isme/libris-api/internal/database"
	"github.com/noah-isme/libris-api/internal/handler"
	"github.com/noah-isme/libris-api/internal/middleware"
	"github.com/noah-isme/libris-api/internal/models"
	"github.com/noah-isme/libris-api/internal/repository"
	"github.com/noah-isme/libris-api/internal/router"
	"github.com/noah-isme/libris-api/internal/service"
	cloud "github.com/noah-isme/libris-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Book{},
		&models.Subject{},
		&models.Translator{},
		&models.Publication{},
		&models.Pronoun{},
		&models.Faq{},
		&models.SiteContent{},
		&models.ActivityLog{},
		&models.UploadRecord{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stream := service.NewActivityStream(redisClient, cfg.StreamChannelBase, natsConn, logger)
	stream.Start(shutdownCtx)

	activityRepo := repository.NewActivityLogRepository(db)
	activityService := service.NewActivityService(activityRepo, stream, logger)

	uploadRepo := repository.NewUploadRepository(db)
	uploadService := service.NewUploadService(uploader, uploadRepo, cfg.UploadMaxSizeMB, logger)

	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, activityService, cfg.JWTSecret, cfg.TokenTTL, logger)
	userService := service.NewUserService(userRepo, redisClient, cfg.ProfileCacheTTL, activityService, logger)
	contentReader := service.NewSiteContentReader(db, redisClient, cfg.ContentCacheTTL, logger)

	bookService := service.NewResourceService(
		repository.NewResourceRepository[models.Book](db),
		service.ResourceConfig[models.Book]{
			TypeName:     "book",
			FieldMapping: map[string]string{"subject": "subjectId", "translator": "translatorId", "publication": "publicationId"},
			Expand:       []string{"Subject", "Translator", "Publication"},
		},
		validate, activityService, uploadService, logger)

	subjectService := service.NewResourceService(
		repository.NewResourceRepository[models.Subject](db),
		service.ResourceConfig[models.Subject]{TypeName: "subject"},
		validate, activityService, uploadService, logger)

	translatorService := service.NewResourceService(
		repository.NewResourceRepository[models.Translator](db),
		service.ResourceConfig[models.Translator]{TypeName: "translator"},
		validate, activityService, uploadService, logger)

	publicationService := service.NewResourceService(
		repository.NewResourceRepository[models.Publication](db),
		service.ResourceConfig[models.Publication]{TypeName: "publication"},
		validate, activityService, nil, logger)

	pronounService := service.NewResourceService(
		repository.NewResourceRepository[models.Pronoun](db),
		service.ResourceConfig[models.Pronoun]{TypeName: "pronoun"},
		validate, activityService, nil, logger)

	faqService := service.NewResourceService(
		repository.NewResourceRepository[models.Faq](db),
		service.ResourceConfig[models.Faq]{TypeName: "faq", Prepare: service.SanitizeFaq},
		validate, activityService, nil, logger)

	siteContentService := service.NewResourceService(
		repository.NewResourceRepository[models.SiteContent](db),
		service.ResourceConfig[models.SiteContent]{TypeName: "site content", Prepare: service.SanitizeSiteContent},
		validate, activityService, nil, logger)

	userAdminService := service.NewResourceService(
		repository.NewResourceRepository[models.User](db),
		service.ResourceConfig[models.User]{
			TypeName:     "user",
			FieldMapping: map[string]string{"visibility": "profileVisibility"},
		},
		validate, activityService, uploadService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        handler.NewAuthHandler(authService, validate, logger),
		UserHandler:        handler.NewUserHandler(userService, validate, logger),
		ActivityHandler:    handler.NewActivityHandler(activityService, stream, logger),
		UploadHandler:      handler.NewUploadHandler(uploadService, logger),
		ContentHandler:     handler.NewContentHandler(contentReader, logger),
		BookHandler:        handler.NewResourceHandler(bookService, "book", logger),
		SubjectHandler:     handler.NewResourceHandler(subjectService, "subject", logger),
		TranslatorHandler:  handler.NewResourceHandler(translatorService, "translator", logger),
		PublicationHandler: handler.NewResourceHandler(publicationService, "publication", logger),
		PronounHandler:     handler.NewResourceHandler(pronounService, "pronoun", logger),
		FaqHandler:         handler.NewResourceHandler(faqService, "faq", logger),
		SiteContentHandler: handler.NewResourceHandler(siteContentService, "site_content", logger),
		UserAdminHandler:   handler.NewResourceHandler(userAdminService, "user", logger),
		JWTSecret:          cfg.JWTSecret,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
