package dto

import (
	"time"

	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

// CreateReportRequest campos de texto de un reporte nuevo (multipart o JSON).
type CreateReportRequest struct {
	Email        string   `json:"email" form:"email"`
	Departamento []string `json:"departamento" form:"departamento"`
	Descripcion  string   `json:"descripcion" form:"descripcion"`
	TipoProblema string   `json:"tipoProblema" form:"tipoProblema"`
	QuienReporta string   `json:"quienReporta" form:"quienReporta"`
	Prioridad    string   `json:"prioridad" form:"prioridad"`
}

// ReportResponse salida de un reporte con _id como string.
type ReportResponse struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email,omitempty"`
	Departamento []string  `json:"departamento"`
	Descripcion  string    `json:"descripcion"`
	TipoProblema string    `json:"tipoProblema"`
	QuienReporta string    `json:"quienReporta"`
	Prioridad    string    `json:"prioridad"`
	Estado       string    `json:"estado"`
	Imagenes     []string  `json:"imagenes"`
	Timestamp    time.Time `json:"timestamp"`
}

// CreateReportResponse salida de POST /api/reportes.
type CreateReportResponse struct {
	Message string         `json:"message"`
	ID      string         `json:"id"`
	Reporte ReportResponse `json:"reporte"`
}

// UpdateReportResponse salida de PATCH /api/reportes/:id.
type UpdateReportResponse struct {
	Message    string `json:"message"`
	Modificado bool   `json:"modificado"`
}

// DeleteReportResponse salida de DELETE /api/reportes/:id.
type DeleteReportResponse struct {
	Message            string   `json:"message"`
	ImagenesEliminadas []string `json:"imagenesEliminadas"`
}

// ToReportResponse convierte la entidad a DTO.
func ToReportResponse(r *entity.Report) ReportResponse {
	dep := r.Departamento
	if dep == nil {
		dep = []string{}
	}
	imgs := r.Imagenes
	if imgs == nil {
		imgs = []string{}
	}
	return ReportResponse{
		ID:           r.ID,
		Email:        r.Email,
		Departamento: dep,
		Descripcion:  r.Descripcion,
		TipoProblema: r.TipoProblema,
		QuienReporta: r.QuienReporta,
		Prioridad:    r.Prioridad,
		Estado:       r.Estado,
		Imagenes:     imgs,
		Timestamp:    r.Timestamp,
	}
}
