// Package profile mantiene las proyecciones de perfil por rol a partir del
// registro canónico de usuarios. La proyección es un caché reconstruible:
// el registro canónico gana en todos los campos salvo el _id propio de la proyección.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	"github.com/jhoicas/Reportes-api/internal/domain/repository"
	"github.com/jhoicas/Reportes-api/pkg/logger"
)

// Projector sincroniza usuarios con sus contenedores de perfil por rol.
type Projector struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	log      *logger.Logger
	now      func() time.Time
}

// NewProjector construye el proyector.
func NewProjector(users repository.UserRepository, profiles repository.ProfileRepository, log *logger.Logger) *Projector {
	return &Projector{
		users:    users,
		profiles: profiles,
		log:      log.Component("profile_projector"),
		now:      func() time.Time { return entity.StoredTime(time.Now()) },
	}
}

// WithClock reemplaza el reloj (tests).
func (p *Projector) WithClock(now func() time.Time) *Projector {
	p.now = func() time.Time { return entity.StoredTime(now()) }
	return p
}

// Reconcile inserta o sobrescribe la proyección del usuario en el contenedor de su rol.
// user debe venir sin contraseña. Repetirlo con la misma entrada converge al mismo estado.
func (p *Projector) Reconcile(ctx context.Context, user entity.Profile) error {
	email := user.String(entity.FieldEmail)
	if email == "" {
		return fmt.Errorf("%w: email requerido para reconciliar", domain.ErrValidation)
	}
	container := entity.ContainerForRole(user.String(entity.FieldRol))
	fields := user.ProjectionFields()
	fields[entity.FieldFechaSincronizacion] = p.now()

	existing, err := p.profiles.FindByEmail(ctx, container, email)
	if err != nil {
		return fmt.Errorf("buscar proyección en %s: %w", container, err)
	}
	if existing == nil {
		_, err := p.profiles.Insert(ctx, container, fields)
		if err == nil {
			return nil
		}
		// otra petición la creó entre la búsqueda y el insert
		if !errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("insertar proyección en %s: %w", container, err)
		}
	}
	if err := p.profiles.UpdateByEmail(ctx, container, email, fields); err != nil {
		return fmt.Errorf("actualizar proyección en %s: %w", container, err)
	}
	return nil
}

// Fetch devuelve el perfil del usuario: registro canónico sin contraseña enriquecido
// con su proyección. Los fallos en los contenedores de proyección solo se registran.
func (p *Projector) Fetch(ctx context.Context, email string) (entity.Profile, error) {
	user, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	base := user.Sanitized()

	merged, err := p.enrich(ctx, base)
	if err != nil {
		p.log.Warn().Err(err).Str("email", email).Msg("no se pudo enriquecer el perfil, se devuelve el registro base")
		return base, nil
	}
	return merged, nil
}

// SyncAll reconcilia la proyección de todos los usuarios. Devuelve cuántos se
// sincronizaron; los fallos individuales se registran y no detienen el proceso.
func (p *Projector) SyncAll(ctx context.Context) (synced int, failed int, err error) {
	users, err := p.users.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("listar usuarios: %w", err)
	}
	for _, u := range users {
		if err := p.Reconcile(ctx, u.Sanitized()); err != nil {
			failed++
			p.log.Error().Err(err).Str("email", u.Email).Msg("sincronizar perfil")
			continue
		}
		synced++
	}
	return synced, failed, nil
}

// enrich busca la proyección; la crea si falta y la repara si se desvió del registro
// canónico. Solo escribe cuando hay algo que cambiar, así dos lecturas seguidas coinciden.
func (p *Projector) enrich(ctx context.Context, base entity.Profile) (entity.Profile, error) {
	email := base.String(entity.FieldEmail)
	container := entity.ContainerForRole(base.String(entity.FieldRol))
	want := base.ProjectionFields()

	proj, err := p.profiles.FindByEmail(ctx, container, email)
	if err != nil {
		return nil, fmt.Errorf("buscar proyección en %s: %w", container, err)
	}

	switch {
	case proj == nil:
		fields := want.Clone()
		fields[entity.FieldFechaSincronizacion] = p.now()
		id, err := p.profiles.Insert(ctx, container, fields)
		if errors.Is(err, domain.ErrConflict) {
			if proj, err = p.profiles.FindByEmail(ctx, container, email); err != nil {
				return nil, err
			}
			if proj == nil {
				return nil, fmt.Errorf("proyección en conflicto pero ausente en %s", container)
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("insertar proyección en %s: %w", container, err)
		}
		fields[entity.FieldID] = id
		proj = fields
	case proj.DriftsFrom(want):
		fields := want.Clone()
		fields[entity.FieldFechaSincronizacion] = p.now()
		if err := p.profiles.UpdateByEmail(ctx, container, email, fields); err != nil {
			return nil, fmt.Errorf("reparar proyección en %s: %w", container, err)
		}
		refreshed := proj.Clone()
		for k, v := range fields {
			refreshed[k] = v
		}
		proj = refreshed
	}

	return merge(base, proj), nil
}

// merge superpone la proyección sobre el registro base. El _id del resultado es
// el de la proyección cuando el documento lo trae; si no, queda el del usuario.
func merge(base, proj entity.Profile) entity.Profile {
	out := base.Clone()
	for k, v := range proj {
		if k == entity.FieldID {
			continue
		}
		out[k] = v
	}
	if id, ok := proj[entity.FieldID]; ok && id != nil && id != "" {
		out[entity.FieldID] = id
	}
	delete(out, entity.FieldPassword)
	delete(out, entity.FieldPasswordHash)
	return out
}
