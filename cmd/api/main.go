package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/kadraly/kadraly-backend/internal/access"
	"github.com/kadraly/kadraly-backend/internal/config"
	"github.com/kadraly/kadraly-backend/internal/handler"
	"github.com/kadraly/kadraly-backend/internal/middleware"
	"github.com/kadraly/kadraly-backend/internal/repository"
	"github.com/kadraly/kadraly-backend/internal/service"
	"github.com/kadraly/kadraly-backend/pkg/cache"
	"github.com/kadraly/kadraly-backend/pkg/database"
	"github.com/kadraly/kadraly-backend/pkg/email"
	"github.com/kadraly/kadraly-backend/pkg/logger"
	"github.com/kadraly/kadraly-backend/pkg/payment"
	"github.com/kadraly/kadraly-backend/pkg/qrcode"
	"github.com/kadraly/kadraly-backend/pkg/storage"
	"github.com/kadraly/kadraly-backend/pkg/utils"
)

func main() {
	// .env is optional outside local development.
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zlog.Sync()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}
	if err := database.SeedPackages(db); err != nil {
		zlog.Fatal("failed to seed credit packages", zap.Error(err))
	}

	// Redis backs both the versioned cache and password-reset tokens.
	redisStore := cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisStore.Connect(ctx); err != nil {
		zlog.Fatal("failed to connect redis", zap.Error(err))
	}
	cancel()
	eventCache := cache.New(redisStore, zlog)

	objectStorage, err := storage.NewS3Storage(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize object storage", zap.Error(err))
	}

	emailService := email.NewEmailService(zlog)
	qrService := qrcode.NewQRService(cfg.ShareBaseURL)
	stripeService := payment.NewStripeService(os.Getenv("STRIPE_SECRET_KEY"))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	memberRepo := repository.NewEventMemberRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	timelineRepo := repository.NewTimelineRepository(db)
	packageRepo := repository.NewCreditPackageRepository(db)
	purchaseRepo := repository.NewUserCreditPurchaseRepository(db)

	// Authorization reads go straight to the repositories, never the cache.
	resolver := access.NewResolver(eventRepo, memberRepo, userRepo, zlog)

	// Services
	authService := service.NewAuthService(userRepo, emailService, redisStore)
	userService := service.NewUserService(userRepo, emailService, redisStore)
	statsService := service.NewStatsService(photoRepo, eventCache)
	photoService := service.NewPhotoService(photoRepo, eventRepo, userRepo, objectStorage, eventCache, statsService)
	eventService := service.NewEventService(eventRepo, memberRepo, photoRepo, timelineRepo, userRepo, objectStorage, eventCache)
	timelineService := service.NewTimelineService(timelineRepo, eventCache)
	packageService := service.NewPackageService(packageRepo)
	paymentService := service.NewPaymentService(stripeService, userRepo, packageRepo, purchaseRepo, eventCache)

	validator := utils.NewValidator()

	// Handlers
	authHandler := handler.NewAuthHandler(authService, validator)
	userHandler := handler.NewUserHandler(userService, validator)
	eventHandler := handler.NewEventHandler(eventService, statsService, qrService, resolver, validator)
	photoHandler := handler.NewPhotoHandler(photoService, eventService, resolver)
	timelineHandler := handler.NewTimelineHandler(timelineService, resolver, validator)
	paymentHandler := handler.NewPaymentHandler(paymentService, packageService, stripeService, zlog)

	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "https://kadraly.com, https://www.kadraly.com, http://localhost:5173",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Access-Code",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	api := app.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/verify-email", userHandler.CompleteEmailChange)

	// Guest routes: an access code is the only credential. AuthOptional still
	// picks up a JWT when one is present so members keep their role.
	guest := api.Group("", middleware.AuthOptional())
	guest.Get("/events/code/:code", eventHandler.GetEventByCode)
	guest.Get("/gallery/:code", photoHandler.GetGallery)
	guest.Post("/events/:eventId/photos", photoHandler.UploadPhotos)
	guest.Get("/events/:id/qr", eventHandler.GetEventQR)
	guest.Get("/events/:eventId/timeline", timelineHandler.GetTimeline)

	// Stripe webhook (public, signature-verified)
	api.Post("/payments/webhook", paymentHandler.HandleWebhook)

	api.Get("/payments/packages", paymentHandler.GetPackages)
	api.Get("/payments/packages/:packageId", paymentHandler.GetPackage)

	// Protected routes
	api.Use(middleware.AuthRequired())
	{
		user := api.Group("/user")
		user.Get("/profile", userHandler.GetMyProfile)
		user.Put("/profile", userHandler.UpdateProfile)
		user.Post("/change-password", userHandler.ChangePassword)
		user.Post("/change-email", userHandler.InitiateEmailChange)

		events := api.Group("/events")
		events.Post("/", eventHandler.CreateEvent)
		events.Get("/", eventHandler.GetUserEvents)
		events.Get("/:id", eventHandler.GetEvent)
		events.Put("/:id", eventHandler.UpdateEvent)
		events.Delete("/:id", eventHandler.DeleteEvent)
		events.Post("/:id/regenerate-code", eventHandler.RegenerateAccessCode)
		events.Get("/:id/stats", eventHandler.GetEventStats)
		events.Get("/:id/members", eventHandler.ListMembers)
		events.Post("/:id/members", eventHandler.AddMember)
		events.Delete("/:id/members/:userId", eventHandler.RemoveMember)

		events.Get("/:eventId/photos/pending", photoHandler.GetPendingPhotos)

		timeline := events.Group("/:eventId/timeline")
		timeline.Post("/", timelineHandler.CreateEntry)
		timeline.Put("/:entryId", timelineHandler.UpdateEntry)
		timeline.Delete("/:entryId", timelineHandler.DeleteEntry)
		timeline.Post("/adjust", timelineHandler.AdjustTimes)

		photos := api.Group("/photos")
		photos.Get("/event/:eventId", photoHandler.GetEventPhotos)
		photos.Post("/:id/approve", photoHandler.ApprovePhoto)
		photos.Delete("/:id", photoHandler.DeletePhoto)

		payments := api.Group("/payments")
		payments.Get("/history", paymentHandler.GetPurchaseHistory)
		payments.Post("/checkout/:packageId", paymentHandler.CreateCheckout)
	}

	// Expired events are swept in the background; a failed sweep is retried
	// on the next tick.
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			deleted, err := eventService.CleanupExpired(context.Background())
			if err != nil {
				zlog.Warn("expired event cleanup failed", zap.Int("deleted", deleted), zap.Error(err))
				continue
			}
			if deleted > 0 {
				zlog.Info("expired events cleaned up", zap.Int("deleted", deleted))
			}
		}
	}()

	zlog.Info("starting server", zap.String("port", cfg.Port))
	log.Fatal(app.Listen(":" + cfg.Port))
}
