package http

import (
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/pkg/logger"
)

// ErrorWriter traduce errores de dominio a respuestas HTTP y registra los 5xx.
type ErrorWriter struct {
	log        *logger.Logger
	production bool
}

// NewErrorWriter construye el traductor. En producción no se expone el detalle.
func NewErrorWriter(log *logger.Logger, production bool) *ErrorWriter {
	return &ErrorWriter{log: log.Component("http"), production: production}
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// El orden importa: los errores específicos antes que las categorías.
var errorMappings = []errorMapping{
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS", "el email ya está registrado"},
	{domain.ErrInvalidCredentials, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND", "usuario no encontrado"},
	{domain.ErrReportNotFound, fiber.StatusNotFound, "REPORT_NOT_FOUND", "reporte no encontrado"},
	{domain.ErrValidation, fiber.StatusBadRequest, "VALIDATION", ""},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual"},
	{domain.ErrUnauthenticated, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autenticado"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
}

// Write responde con el status y código que corresponden a err.
func (w *ErrorWriter) Write(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.message
		if msg == "" {
			// los errores de validación ya traen un mensaje pensado para el cliente
			msg = err.Error()
		}
		return c.Status(m.status).JSON(w.body(m.code, msg, err))
	}
	return w.internal(c, fiber.StatusInternalServerError, err)
}

// Handler es el fiber.ErrorHandler de la aplicación: cubre errores no capturados
// por los handlers (404 de ruta, body demasiado grande, pánicos recuperados).
func (w *ErrorWriter) Handler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code := "HTTP_ERROR"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusRequestEntityTooLarge:
			code = "PAYLOAD_TOO_LARGE"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
	}
	status := fiber.StatusInternalServerError
	if fe != nil {
		status = fe.Code
	}
	return w.internal(c, status, err)
}

func (w *ErrorWriter) internal(c *fiber.Ctx, status int, err error) error {
	w.log.Error().Err(err).
		Str("route", c.Path()).
		Str("method", c.Method()).
		Time("timestamp", time.Now().UTC()).
		Msg("error no controlado")
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	} else if sentry.CurrentHub().Client() != nil {
		sentry.CaptureException(err)
	}
	return c.Status(status).JSON(w.body("INTERNAL", "error interno del servidor", err))
}

func (w *ErrorWriter) body(code, message string, err error) dto.ErrorResponse {
	out := dto.ErrorResponse{Code: code, Message: message}
	if !w.production && err != nil {
		out.Detail = err.Error()
	}
	return out
}
