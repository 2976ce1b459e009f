package auth

import (
	"context"

	"github.com/jhoicas/Reportes-api/internal/domain/entity"
)

// ProfileReconciler sincroniza la proyección por rol de un usuario ya saneado.
// Lo implementa *profile.Projector.
type ProfileReconciler interface {
	Reconcile(ctx context.Context, user entity.Profile) error
}
