package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reportes-api/internal/application/auth"
	"github.com/jhoicas/Reportes-api/internal/application/profile"
	"github.com/jhoicas/Reportes-api/internal/application/report"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	Projector *profile.Projector
	ReportUC  *report.ReportUseCase
	Errors    *ErrorWriter
	JWTSecret string
}

// Roles que pueden modificar y eliminar reportes.
var (
	reportEditors  = []string{entity.RoleAdministrador, entity.RoleJefeDepartamento, entity.RoleTecnico}
	reportDeleters = []string{entity.RoleAdministrador, entity.RoleJefeDepartamento}
)

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Errors)
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)

	// Perfiles (público)
	profileHandler := NewProfileHandler(deps.Projector, deps.AuthUC, deps.Errors)
	api.Get("/perfil/:email", profileHandler.Get)
	api.Put("/perfil/:email", profileHandler.Update)

	// Reportes: alta y consulta públicas; modificación y borrado por rol
	reportHandler := NewReportHandler(deps.ReportUC, deps.Errors)
	reportes := api.Group("/reportes")
	reportes.Post("/", reportHandler.Create)
	reportes.Get("/", reportHandler.List)
	reportes.Get("/:id", reportHandler.GetByID)
	reportes.Get("/:id/constancia", reportHandler.Receipt)

	requireAuth := AuthMiddleware(deps.JWTSecret)
	reportes.Patch("/:id", requireAuth, RequireRole(reportEditors...), reportHandler.Update)
	reportes.Delete("/:id", requireAuth, RequireRole(reportDeleters...), reportHandler.Delete)
}
