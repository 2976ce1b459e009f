package report

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

// ValidatePatch convierte el cuerpo de un PATCH en una actualización tipada.
// _id y timestamp se ignoran. imagenes solo cambia al subir archivos, nunca por PATCH;
// claves desconocidas o con tipo incorrecto son error.
func ValidatePatch(raw map[string]any) (entity.ReportPatch, error) {
	patch := make(entity.ReportPatch, len(raw))
	for k, v := range raw {
		switch k {
		case entity.FieldID, entity.ReportFieldTimestamp:
			continue
		case entity.ReportFieldDescripcion, entity.ReportFieldTipoProblema, entity.ReportFieldQuienReporta:
			s, ok := v.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return nil, fmt.Errorf("%w: %s debe ser texto no vacío", domain.ErrValidation, k)
			}
			patch[k] = strings.TrimSpace(s)
		case entity.ReportFieldEmail:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: email debe ser texto", domain.ErrValidation)
			}
			patch[k] = strings.ToLower(strings.TrimSpace(s))
		case entity.ReportFieldEstado:
			s, _ := v.(string)
			if !entity.IsValidEstado(s) {
				return nil, fmt.Errorf("%w: estado debe ser Pendiente, En Proceso o Resuelto", domain.ErrValidation)
			}
			patch[k] = s
		case entity.ReportFieldPrioridad:
			s, _ := v.(string)
			if !entity.IsValidPrioridad(s) {
				return nil, fmt.Errorf("%w: prioridad %v no válida", domain.ErrValidation, v)
			}
			patch[k] = s
		case entity.ReportFieldDepartamento:
			deps, ok := entity.StringList(v)
			deps = cleanStrings(deps)
			if !ok || len(deps) == 0 {
				return nil, fmt.Errorf("%w: departamento debe ser una lista no vacía", domain.ErrValidation)
			}
			patch[k] = deps
		case entity.ReportFieldImagenes:
			return nil, fmt.Errorf("%w: imagenes no se puede modificar", domain.ErrValidation)
		default:
			return nil, fmt.Errorf("%w: campo %q no existe en el reporte", domain.ErrValidation, k)
		}
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: no hay campos para actualizar", domain.ErrValidation)
	}
	return patch, nil
}
