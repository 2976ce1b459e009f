// Package storage guarda en disco las imágenes adjuntas a los reportes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Reportes-api/internal/application/report"
)

var _ report.FileStorage = (*LocalStorage)(nil)

// LocalStorage escribe cada archivo con un nombre UUID dentro de Dir.
type LocalStorage struct {
	Dir string
}

// NewLocalStorage crea el directorio si no existe.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", dir, err)
	}
	return &LocalStorage{Dir: dir}, nil
}

// Save copia r a un archivo nuevo y devuelve su nombre (sin directorio).
func (s *LocalStorage) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	name := uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	path := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: crear archivo: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("storage: escribir archivo: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("storage: cerrar archivo: %w", err)
	}
	return name, nil
}

// Remove borra el archivo. Solo se acepta un nombre plano, sin rutas.
func (s *LocalStorage) Remove(_ context.Context, filename string) error {
	if filename == "" || filepath.Base(filename) != filename || filename == ".." {
		return fmt.Errorf("storage: nombre de archivo inválido %q", filename)
	}
	err := os.Remove(filepath.Join(s.Dir, filename))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: eliminar %s: %w", filename, err)
	}
	return nil
}
