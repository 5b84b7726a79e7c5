package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/unimercado/unimercado-api/internal/application/auth"
	"github.com/unimercado/unimercado-api/internal/application/usecase"
	inframail "github.com/unimercado/unimercado-api/internal/infrastructure/mail"
	infrapdf "github.com/unimercado/unimercado-api/internal/infrastructure/pdf"
	"github.com/unimercado/unimercado-api/internal/infrastructure/postgres"
	infraredis "github.com/unimercado/unimercado-api/internal/infrastructure/redis"
	"github.com/unimercado/unimercado-api/internal/infrastructure/whatsapp"
	httpRouter "github.com/unimercado/unimercado-api/internal/interfaces/http"
	"github.com/unimercado/unimercado-api/pkg/config"
	"github.com/unimercado/unimercado-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	redisClient, err := infraredis.NewClient(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer redisClient.Close()

	userRepo := postgres.NewUserRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	cartRepo := postgres.NewCartRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	inviteRepo := postgres.NewAdminInviteRepository(pool)
	resetRepo := postgres.NewPasswordResetRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	otpStore := infraredis.NewOTPStore(redisClient)
	mailer := inframail.NewSMTPMailer(cfg.SMTP)
	otpSender := whatsapp.NewStubSender(log)
	receiptGen := infrapdf.NewMarotoReceiptGenerator(cfg.App.Name)

	authUC := auth.NewAuthUseCase(userRepo, inviteRepo, resetRepo, otpStore, mailer, otpSender, auth.Config{
		JWTSecret:     cfg.JWT.Secret,
		JWTExpMinutes: cfg.JWT.Expiration,
		JWTIssuer:     cfg.JWT.Issuer,
		OTPTTL:        time.Duration(cfg.OTP.TTLMinutes) * time.Minute,
		InviteTTL:     time.Duration(cfg.OTP.InviteTTLHours) * time.Hour,
		ResetTTL:      time.Duration(cfg.OTP.ResetTTLMinutes) * time.Minute,
		AppBaseURL:    cfg.App.BaseURL,
	})
	storeUC := usecase.NewStoreUseCase(storeRepo)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	productUC := usecase.NewProductUseCase(productRepo, storeRepo)
	cartUC := usecase.NewCartUseCase(cartRepo, productRepo)
	checkoutUC := usecase.NewCheckoutUseCase(txRunner, orderRepo)
	receiptUC := usecase.NewReceiptUseCase(orderRepo, userRepo, receiptGen)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "UniMercado API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		StoreUC:    storeUC,
		CategoryUC: categoryUC,
		ProductUC:  productUC,
		CartUC:     cartUC,
		CheckoutUC: checkoutUC,
		ReceiptUC:  receiptUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
