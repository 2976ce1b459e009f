package report

import (
	"context"
	"io"

	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

// FileStorage guarda y elimina las imágenes adjuntas a los reportes.
type FileStorage interface {
	// Save guarda el contenido con un nombre único y devuelve ese nombre.
	Save(ctx context.Context, ext string, r io.Reader) (string, error)
	// Remove elimina el archivo; un archivo inexistente no es error.
	Remove(ctx context.Context, filename string) error
}

// ReceiptGenerator genera la constancia PDF de un reporte.
type ReceiptGenerator interface {
	GenerateReportReceipt(ctx context.Context, report *entity.Report) ([]byte, error)
}

// ImageUpload es una imagen recibida en la petición, aún no almacenada.
type ImageUpload struct {
	Name        string // nombre original (solo para la extensión)
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}
