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

	"github.com/facturapan/fehka-api/internal/application/auth"
	"github.com/facturapan/fehka-api/internal/application/billing"
	"github.com/facturapan/fehka-api/internal/infrastructure/hka"
	infrapdf "github.com/facturapan/fehka-api/internal/infrastructure/pdf"
	"github.com/facturapan/fehka-api/internal/infrastructure/postgres"
	httpRouter "github.com/facturapan/fehka-api/internal/interfaces/http"
	"github.com/facturapan/fehka-api/pkg/config"
	"github.com/facturapan/fehka-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Bool("hka_test_mode", cfg.HKA.TestMode).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	branchRepo := postgres.NewBranchRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	partnerRepo := postgres.NewPartnerRepository(pool)
	documentRepo := postgres.NewDocumentRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	configRepo := postgres.NewConfigurationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Cliente SOAP HKA: uno por endpoint resuelto, los tokens viajan por
	// llamada y nunca se cachean.
	zl := log.Zerolog()
	newService := billing.ServiceFactory(func(endpoint string) hka.Service {
		if endpoint == "" {
			endpoint = cfg.HKA.WSDLURL
		}
		return hka.NewSOAPClient(endpoint, zl)
	})

	cfDefaults := billing.CFDefaults{
		Nombre:    cfg.HKA.CFNombre,
		Direccion: cfg.HKA.CFDireccion,
		Telefono:  cfg.HKA.CFTelefono,
	}
	builder := billing.NewPayloadBuilder(cfDefaults)
	allocator := billing.NewSequenceAllocator(configRepo, zl)

	createUC := billing.NewCreateDocumentUseCase(txRunner, documentRepo, partnerRepo, zl)
	submitUC := billing.NewSubmitDocumentUseCase(
		documentRepo, partnerRepo, companyRepo, branchRepo, configRepo,
		allocator, builder, newService, zl,
	)
	cancelUC := billing.NewCancelDocumentUseCase(
		documentRepo, companyRepo, branchRepo, configRepo, builder, newService, zl,
	)
	verifyRUCUC := billing.NewVerifyRUCUseCase(partnerRepo, configRepo, newService, cfDefaults, zl)
	partnerUC := billing.NewPartnerUseCase(partnerRepo, locationRepo, zl)
	configUC := billing.NewConfigurationUseCase(configRepo, companyRepo, branchRepo, zl)

	// PDF: representación local del CAFE mientras el oficial no está descargado.
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	cafeUC := billing.NewGetCAFEUseCase(documentRepo, partnerRepo, companyRepo, pdfGenerator, zl)

	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		// Los PDF/XML de HKA pueden superar el límite por defecto.
		BodyLimit: 8 * 1024 * 1024,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "FE HKA API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CreateUC:    createUC,
		SubmitUC:    submitUC,
		CancelUC:    cancelUC,
		CAFEUC:      cafeUC,
		PartnerUC:   partnerUC,
		VerifyRUCUC: verifyRUCUC,
		ConfigUC:    configUC,
		JWTSecret:   cfg.JWT.Secret,
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
