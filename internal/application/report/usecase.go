// Package report contiene el ciclo de vida de los reportes: alta con imágenes,
// consulta, actualización parcial y borrado con limpieza de archivos.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	"github.com/jhoicas/Reportes-api/internal/domain/repository"
	"github.com/jhoicas/Reportes-api/pkg/logger"
)

// ReportUseCase casos de uso de reportes.
type ReportUseCase struct {
	repo     repository.ReportRepository
	files    FileStorage
	receipts ReceiptGenerator
	policy   UploadPolicy
	log      *logger.Logger
	now      func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(repo repository.ReportRepository, files FileStorage, receipts ReceiptGenerator, policy UploadPolicy, log *logger.Logger) *ReportUseCase {
	return &ReportUseCase{
		repo:     repo,
		files:    files,
		receipts: receipts,
		policy:   policy,
		log:      log.Component("reportes"),
		now:      func() time.Time { return entity.StoredTime(time.Now()) },
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *ReportUseCase) WithClock(now func() time.Time) *ReportUseCase {
	uc.now = func() time.Time { return entity.StoredTime(now()) }
	return uc
}

// Create valida el reporte, guarda sus imágenes y lo persiste con estado Pendiente.
// Si la inserción falla se eliminan las imágenes ya guardadas.
func (uc *ReportUseCase) Create(ctx context.Context, in dto.CreateReportRequest, images []ImageUpload) (*entity.Report, error) {
	report, err := uc.validateNew(in)
	if err != nil {
		return nil, err
	}
	exts := make([]string, len(images))
	for i, img := range images {
		if exts[i], err = uc.policy.check(img); err != nil {
			return nil, err
		}
	}

	stored := make([]string, 0, len(images))
	for i, img := range images {
		name, err := uc.store(ctx, img, exts[i])
		if err != nil {
			uc.discard(ctx, stored)
			return nil, err
		}
		stored = append(stored, name)
	}
	report.Imagenes = stored

	id, ack, err := uc.repo.Save(ctx, report)
	if err == nil && !ack {
		err = fmt.Errorf("%w: inserción sin acuse del almacén", domain.ErrInternal)
	}
	if err != nil {
		uc.discard(ctx, stored)
		return nil, fmt.Errorf("guardar reporte: %w", err)
	}
	report.ID = id
	return report, nil
}

// List devuelve todos los reportes, más recientes primero.
func (uc *ReportUseCase) List(ctx context.Context) ([]*entity.Report, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar reportes: %w", err)
	}
	return list, nil
}

// GetByID obtiene un reporte; ErrReportNotFound si no existe.
func (uc *ReportUseCase) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	r, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("buscar reporte: %w", err)
	}
	if r == nil {
		return nil, domain.ErrReportNotFound
	}
	return r, nil
}

// Update aplica una actualización parcial. Un reporte que existe pero ya tenía esos
// valores no es error: el resultado lo informa con Modified=false.
func (uc *ReportUseCase) Update(ctx context.Context, id string, raw map[string]any) (entity.UpdateOutcome, error) {
	patch, err := ValidatePatch(raw)
	if err != nil {
		return entity.UpdateOutcome{}, err
	}
	out, err := uc.repo.Update(ctx, id, patch)
	if err != nil {
		return entity.UpdateOutcome{}, fmt.Errorf("actualizar reporte: %w", err)
	}
	if !out.Matched {
		return out, domain.ErrReportNotFound
	}
	return out, nil
}

// Delete elimina el reporte y luego sus imágenes. El borrado en el almacén manda:
// los fallos al borrar archivos se registran y no hacen fallar la operación.
// Devuelve los archivos que ya no están en el almacenamiento.
func (uc *ReportUseCase) Delete(ctx context.Context, id string) ([]string, error) {
	r, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("eliminar reporte: %w", err)
	}
	if !deleted {
		return nil, domain.ErrReportNotFound
	}

	removed := make([]string, 0, len(r.Imagenes))
	for _, name := range r.Imagenes {
		if err := uc.files.Remove(ctx, name); err != nil {
			uc.log.Error().Err(err).Str("reporte", id).Str("archivo", name).Msg("no se pudo eliminar imagen")
			continue
		}
		removed = append(removed, name)
	}
	return removed, nil
}

// Receipt genera la constancia PDF del reporte.
func (uc *ReportUseCase) Receipt(ctx context.Context, id string) ([]byte, error) {
	r, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.receipts.GenerateReportReceipt(ctx, r)
}

func (uc *ReportUseCase) validateNew(in dto.CreateReportRequest) (*entity.Report, error) {
	deps := cleanStrings(in.Departamento)
	var missing []string
	if len(deps) == 0 {
		missing = append(missing, "departamento")
	}
	if strings.TrimSpace(in.Descripcion) == "" {
		missing = append(missing, "descripcion")
	}
	if strings.TrimSpace(in.TipoProblema) == "" {
		missing = append(missing, "tipoProblema")
	}
	if strings.TrimSpace(in.QuienReporta) == "" {
		missing = append(missing, "quienReporta")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: faltan campos requeridos: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	prioridad := strings.TrimSpace(in.Prioridad)
	if prioridad == "" {
		prioridad = entity.PrioridadMedia
	}
	if !entity.IsValidPrioridad(prioridad) {
		return nil, fmt.Errorf("%w: prioridad %q no válida", domain.ErrValidation, prioridad)
	}
	return &entity.Report{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Departamento: deps,
		Descripcion:  strings.TrimSpace(in.Descripcion),
		TipoProblema: strings.TrimSpace(in.TipoProblema),
		QuienReporta: strings.TrimSpace(in.QuienReporta),
		Prioridad:    prioridad,
		Estado:       entity.EstadoPendiente,
		Imagenes:     []string{},
		Timestamp:    uc.now(),
	}, nil
}

func (uc *ReportUseCase) store(ctx context.Context, img ImageUpload, ext string) (string, error) {
	rc, err := img.Open()
	if err != nil {
		return "", fmt.Errorf("abrir %s: %w", img.Name, err)
	}
	defer rc.Close()
	name, err := uc.files.Save(ctx, ext, rc)
	if err != nil {
		return "", fmt.Errorf("guardar %s: %w", img.Name, err)
	}
	return name, nil
}

func (uc *ReportUseCase) discard(ctx context.Context, names []string) {
	for _, n := range names {
		if err := uc.files.Remove(ctx, n); err != nil {
			uc.log.Warn().Err(err).Str("archivo", n).Msg("no se pudo descartar imagen huérfana")
		}
	}
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
