package repository

import (
	"context"

	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

// ReportRepository define el puerto de persistencia para Report.
// Las operaciones por id prueban primero ObjectID y luego string.
type ReportRepository interface {
	// Save inserta el reporte y devuelve el id generado y el acuse del almacén.
	Save(ctx context.Context, report *entity.Report) (id string, acknowledged bool, err error)
	// List devuelve todos los reportes, más recientes primero.
	List(ctx context.Context) ([]*entity.Report, error)
	// FindByID devuelve nil, nil si no existe bajo ninguna representación.
	FindByID(ctx context.Context, id string) (*entity.Report, error)
	Update(ctx context.Context, id string, patch entity.ReportPatch) (entity.UpdateOutcome, error)
	// Delete devuelve true si se eliminó exactamente un documento.
	Delete(ctx context.Context, id string) (bool, error)
}
