package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturapan/fehka-api/internal/application/auth"
	"github.com/facturapan/fehka-api/internal/application/billing"
	"github.com/facturapan/fehka-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CreateUC    *billing.CreateDocumentUseCase
	SubmitUC    *billing.SubmitDocumentUseCase
	CancelUC    *billing.CancelDocumentUseCase
	CAFEUC      *billing.GetCAFEUseCase
	PartnerUC   *billing.PartnerUseCase
	VerifyRUCUC *billing.VerifyRUCUseCase
	ConfigUC    *billing.ConfigurationUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Documentos fiscales (protegido)
	documents := protected.Group("/documents")
	documentHandler := NewDocumentHandler(deps.CreateUC, deps.SubmitUC, deps.CancelUC, deps.CAFEUC)
	documents.Post("/", documentHandler.Create)
	documents.Get("/", documentHandler.List)
	documents.Get("/:id", documentHandler.GetByID)
	documents.Post("/:id/submit", documentHandler.Submit)
	documents.Post("/:id/cancel", documentHandler.Cancel)
	documents.Post("/:id/artifacts", documentHandler.FetchArtifacts)
	documents.Get("/:id/cafe", documentHandler.GetCAFE)
	documents.Get("/:id/xml", documentHandler.GetXML)

	// Receptores (protegido)
	partners := protected.Group("/partners")
	partnerHandler := NewPartnerHandler(deps.PartnerUC, deps.VerifyRUCUC)
	partners.Post("/", partnerHandler.Create)
	partners.Get("/", partnerHandler.List)
	partners.Get("/:id", partnerHandler.GetByID)
	partners.Put("/:id", partnerHandler.Update)
	partners.Post("/:id/verify-ruc", partnerHandler.VerifyRUC)

	// Configuración HKA y sucursales (protegido, solo admin)
	adminOnly := RequireRole(entity.RoleAdmin)
	configHandler := NewConfigurationHandler(deps.ConfigUC)
	configuration := protected.Group("/configuration", adminOnly)
	configuration.Get("/", configHandler.Get)
	configuration.Post("/", configHandler.Create)
	configuration.Put("/", configHandler.Update)

	branches := protected.Group("/branches", adminOnly)
	branches.Post("/", configHandler.CreateBranch)
	branches.Get("/", configHandler.ListBranches)
}
