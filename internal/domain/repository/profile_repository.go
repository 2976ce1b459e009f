package repository

import (
	"context"

	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

// ProfileRepository persiste las proyecciones por rol. container es uno de entity.ProfileContainers.
type ProfileRepository interface {
	// FindByEmail devuelve nil, nil si no hay proyección.
	FindByEmail(ctx context.Context, container, email string) (entity.Profile, error)
	// Insert guarda una proyección nueva y devuelve su _id.
	Insert(ctx context.Context, container string, profile entity.Profile) (string, error)
	UpdateByEmail(ctx context.Context, container, email string, fields entity.Profile) error
}
