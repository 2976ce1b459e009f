package repository

import (
	"context"

	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia del registro canónico (DIP).
type UserRepository interface {
	// Create persiste el usuario y asigna user.ID. ErrEmailAlreadyExists si el email existe.
	Create(ctx context.Context, user *entity.User) error
	// FindByEmail devuelve nil, nil si no existe.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// UpdateFields aplica $set sobre el usuario con ese email. matched=false si no existe.
	UpdateFields(ctx context.Context, email string, fields map[string]any) (matched bool, err error)
	List(ctx context.Context) ([]*entity.User, error)
}
