package report

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/jhoicas/Reportes-api/internal/domain"
)

// UploadPolicy límites para las imágenes de un reporte.
type UploadPolicy struct {
	MaxFileBytes int64
	// AllowedTypes tipo MIME → extensión usada cuando la del nombre original no corresponde al tipo.
	AllowedTypes map[string]string
}

// DefaultUploadPolicy 10 MB por archivo; imágenes jpeg/png/gif y video mp4/webm/ogg.
func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		MaxFileBytes: 10 * 1024 * 1024,
		AllowedTypes: map[string]string{
			"image/jpeg": ".jpg",
			"image/png":  ".png",
			"image/gif":  ".gif",
			"video/mp4":  ".mp4",
			"video/webm": ".webm",
			"video/ogg":  ".ogg",
		},
	}
}

// check valida tipo y tamaño y devuelve la extensión con la que se guardará.
func (p UploadPolicy) check(img ImageUpload) (string, error) {
	mediaType, _, err := mime.ParseMediaType(img.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: tipo de archivo inválido en %q", domain.ErrValidation, img.Name)
	}
	defExt, ok := p.AllowedTypes[strings.ToLower(mediaType)]
	if !ok {
		return "", fmt.Errorf("%w: tipo %s no permitido (%s)", domain.ErrValidation, mediaType, img.Name)
	}
	if img.Size > p.MaxFileBytes {
		return "", fmt.Errorf("%w: %s supera el tamaño máximo de %d MB", domain.ErrValidation, img.Name, p.MaxFileBytes/(1024*1024))
	}
	// la extensión del nombre original solo se respeta si corresponde al tipo declarado
	ext := strings.ToLower(filepath.Ext(img.Name))
	if ext == "" || !sameMediaType(mime.TypeByExtension(ext), mediaType) {
		ext = defExt
	}
	return ext, nil
}

func sameMediaType(byExt, declared string) bool {
	if byExt == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(byExt)
	return err == nil && strings.EqualFold(mt, declared)
}
