package http

import (
	"encoding/json"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reportes-api/internal/application/auth"
	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/internal/application/profile"
)

// ProfileHandler expone lectura y actualización de perfiles por email.
type ProfileHandler struct {
	projector *profile.Projector
	auth      *auth.AuthUseCase
	errors    *ErrorWriter
}

// NewProfileHandler construye el handler.
func NewProfileHandler(projector *profile.Projector, authUC *auth.AuthUseCase, ew *ErrorWriter) *ProfileHandler {
	return &ProfileHandler{projector: projector, auth: authUC, errors: ew}
}

// Get godoc
// @Summary      Obtener perfil
// @Description  Registro del usuario sin contraseña, combinado con su proyección por rol.
// @Tags         perfil
// @Produce      json
// @Param        email  path  string  true  "Email del usuario"
// @Success      200    {object}  map[string]interface{}
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/perfil/{email} [get]
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	email := emailParam(c)
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_EMAIL", Message: "email es requerido"})
	}
	out, err := h.projector.Fetch(c.UserContext(), email)
	if err != nil {
		return h.errors.Write(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar perfil
// @Description  Actualización parcial. Si el usuario no existe se crea con valores por defecto.
// @Tags         perfil
// @Accept       json
// @Produce      json
// @Param        email  path  string  true  "Email del usuario"
// @Param        body   body  map[string]interface{}  true  "Campos a actualizar"
// @Success      200    {object}  dto.ProfileUpdateResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/perfil/{email} [put]
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	email := emailParam(c)
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_EMAIL", Message: "email es requerido"})
	}
	var patch map[string]any
	if err := json.Unmarshal(c.Body(), &patch); err != nil || patch == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "se espera un objeto JSON"})
	}
	ok, err := h.auth.UpdateProfile(c.UserContext(), email, patch)
	if err != nil {
		return h.errors.Write(c, err)
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "USER_NOT_FOUND", Message: "usuario no encontrado"})
	}
	return c.JSON(dto.ProfileUpdateResponse{Message: "perfil actualizado", Success: true})
}

// emailParam lee :email, aceptando "@" literal o codificado como %40.
func emailParam(c *fiber.Ctx) string {
	raw := c.Params("email")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	return auth.NormalizeEmail(raw)
}
