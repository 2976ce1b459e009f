package entity

import "time"

// Estados válidos de un reporte.
const (
	EstadoPendiente = "Pendiente"
	EstadoEnProceso = "En Proceso"
	EstadoResuelto  = "Resuelto"
)

// Prioridades aceptadas.
const (
	PrioridadBaja    = "Baja"
	PrioridadMedia   = "Media"
	PrioridadAlta    = "Alta"
	PrioridadUrgente = "Urgente"
)

// IsValidEstado indica si estado es uno de los tres estados del ciclo de vida.
func IsValidEstado(estado string) bool {
	return estado == EstadoPendiente || estado == EstadoEnProceso || estado == EstadoResuelto
}

// IsValidPrioridad indica si prioridad pertenece al conjunto aceptado.
func IsValidPrioridad(p string) bool {
	switch p {
	case PrioridadBaja, PrioridadMedia, PrioridadAlta, PrioridadUrgente:
		return true
	}
	return false
}

// Report es un reporte de incidencia ciudadana.
// ID siempre se expone como string aunque en el almacén sea ObjectID.
type Report struct {
	ID           string
	Email        string // vacío para reportes creados internamente
	Departamento []string
	Descripcion  string
	TipoProblema string
	QuienReporta string
	Prioridad    string
	Estado       string
	Imagenes     []string // nombres de archivo almacenados
	Timestamp    time.Time
}

// StringList acepta []string, []any de strings o un string suelto
// (documentos antiguos guardan departamento como texto).
func StringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case string:
		return []string{t}, true
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// Campos de un reporte. imagenes y timestamp no admiten actualización parcial.
const (
	ReportFieldEmail        = "email"
	ReportFieldDepartamento = "departamento"
	ReportFieldDescripcion  = "descripcion"
	ReportFieldTipoProblema = "tipoProblema"
	ReportFieldQuienReporta = "quienReporta"
	ReportFieldPrioridad    = "prioridad"
	ReportFieldEstado       = "estado"
	ReportFieldImagenes     = "imagenes"
	ReportFieldTimestamp    = "timestamp"
)

// ReportPatch es una actualización parcial ya validada (clave de campo → valor).
type ReportPatch map[string]any

// UpdateOutcome distingue "no existe" de "existe pero sin cambios".
type UpdateOutcome struct {
	Matched  bool
	Modified bool
}
