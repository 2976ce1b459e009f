package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	"github.com/jhoicas/Reportes-api/internal/domain/repository"
	"github.com/jhoicas/Reportes-api/pkg/jwt"
	"github.com/jhoicas/Reportes-api/pkg/logger"
)

// PasswordCost factor de costo bcrypt de los hashes de contraseña.
const PasswordCost = 10

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase es el almacén de credenciales: registro, login y actualización
// del registro canónico de usuario.
type AuthUseCase struct {
	userRepo   repository.UserRepository
	reconciler ProfileReconciler
	jwtCfg     JWTConfig
	log        *logger.Logger
	now        func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, reconciler ProfileReconciler, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{
		userRepo:   userRepo,
		reconciler: reconciler,
		jwtCfg:     jwtCfg,
		log:        log.Component("auth"),
		now:        func() time.Time { return entity.StoredTime(time.Now()) },
	}
}

// RegisterUser crea un usuario con la contraseña hasheada y devuelve el registro sin ella.
// Devuelve ErrEmailAlreadyExists si el email ya está registrado.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (entity.Profile, error) {
	email := NormalizeEmail(in.Email)
	nombre := strings.TrimSpace(in.Nombre)
	if nombre == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: nombre, email y password son requeridos", domain.ErrValidation)
	}
	rol := strings.TrimSpace(in.Rol)
	if rol == "" {
		rol = entity.RoleUsuario
	}
	if !entity.IsValidRole(rol) {
		return nil, fmt.Errorf("%w: rol %q no reconocido", domain.ErrValidation, rol)
	}

	existing, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Nombre:        nombre,
		Email:         email,
		PasswordHash:  hash,
		Rol:           rol,
		FechaRegistro: uc.now(),
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// Authenticate verifica email/password y reconcilia la proyección del perfil.
// Un fallo de reconciliación no impide el login.
func (uc *AuthUseCase) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := uc.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	uc.reconcile(ctx, user)
	return user, nil
}

// Login autentica y emite el JWT con {email, rol}.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email y password son requeridos", domain.ErrValidation)
	}
	user, err := uc.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.Email, jwt.Roles{user.Rol}, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("generar token: %w", err)
	}
	return &dto.LoginResponse{
		Usuario: user.Sanitized(),
		Token:   token,
	}, nil
}

// UpdateProfile aplica una actualización parcial al usuario con ese email.
// Si no existe lo crea con valores por defecto (upsert). Devuelve true cuando el
// registro existe con los cambios aplicados, aunque el almacén no haya cambiado nada.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, email string, patch map[string]any) (bool, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return false, fmt.Errorf("%w: email requerido", domain.ErrValidation)
	}
	fields, err := sanitizePatch(patch)
	if err != nil {
		return false, err
	}

	existing, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("buscar usuario: %w", err)
	}
	if existing == nil {
		created, err := uc.createFromPatch(ctx, email, fields)
		if err == nil {
			uc.reconcile(ctx, created)
			return true, nil
		}
		if !errors.Is(err, domain.ErrEmailAlreadyExists) {
			return false, err
		}
		// creado en paralelo: seguimos con la actualización
	}

	fields[entity.FieldFechaActualizacion] = uc.now()
	matched, err := uc.userRepo.UpdateFields(ctx, email, fields)
	if err != nil {
		return false, fmt.Errorf("actualizar usuario: %w", err)
	}
	if !matched {
		return false, nil
	}

	updated, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil || updated == nil {
		uc.log.Warn().Err(err).Str("email", email).Msg("no se pudo releer el usuario para reconciliar")
		return true, nil
	}
	uc.reconcile(ctx, updated)
	return true, nil
}

func (uc *AuthUseCase) createFromPatch(ctx context.Context, email string, fields map[string]any) (*entity.User, error) {
	user := &entity.User{
		Email:         email,
		Nombre:        NameFromEmail(email),
		Rol:           entity.RoleUsuario,
		FechaRegistro: uc.now(),
		Campos:        map[string]any{},
	}
	for k, v := range fields {
		switch k {
		case entity.FieldNombre:
			if s, _ := v.(string); strings.TrimSpace(s) != "" {
				user.Nombre = strings.TrimSpace(s)
			}
		case entity.FieldRol:
			user.Rol = v.(string) // validado en sanitizePatch
		case entity.FieldPasswordHash:
			user.PasswordHash = v.(string)
		default:
			user.Campos[k] = v
		}
	}
	if user.PasswordHash == "" {
		// sin contraseña conocida: el usuario no puede iniciar sesión hasta definir una
		hash, err := hashPassword(uuid.NewString())
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *AuthUseCase) reconcile(ctx context.Context, user *entity.User) {
	if uc.reconciler == nil {
		return
	}
	if err := uc.reconciler.Reconcile(ctx, user.Sanitized()); err != nil {
		uc.log.Warn().Err(err).Str("email", user.Email).Str("rol", user.Rol).Msg("reconciliación de perfil fallida")
	}
}

// sanitizePatch quita los campos protegidos, valida claves y tipos y hashea password.
func sanitizePatch(patch map[string]any) (map[string]any, error) {
	fields := make(map[string]any, len(patch))
	for k, v := range patch {
		switch k {
		case entity.FieldID, entity.FieldEmail, entity.FieldFechaRegistro,
			entity.FieldPasswordHash, entity.FieldFechaActualizacion:
			continue
		}
		if k == "" || strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
			return nil, fmt.Errorf("%w: campo %q no permitido", domain.ErrValidation, k)
		}
		fields[k] = v
	}

	if raw, ok := fields[entity.FieldPassword]; ok {
		pw, _ := raw.(string)
		if pw == "" {
			return nil, fmt.Errorf("%w: password debe ser un texto no vacío", domain.ErrValidation)
		}
		hash, err := hashPassword(pw)
		if err != nil {
			return nil, err
		}
		delete(fields, entity.FieldPassword)
		fields[entity.FieldPasswordHash] = hash
	}
	if raw, ok := fields[entity.FieldRol]; ok {
		rol, _ := raw.(string)
		if !entity.IsValidRole(rol) {
			return nil, fmt.Errorf("%w: rol %v no reconocido", domain.ErrValidation, raw)
		}
	}
	if raw, ok := fields[entity.FieldNombre]; ok {
		if _, isString := raw.(string); !isString {
			return nil, fmt.Errorf("%w: nombre debe ser texto", domain.ErrValidation)
		}
	}
	return fields, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hashear password: %w", err)
	}
	return string(hash), nil
}

// NormalizeEmail recorta espacios y pasa a minúsculas; el email es la clave única.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NameFromEmail deriva un nombre legible de la parte local del email:
// "ana.maria_lopez@x.com" → "Ana Maria Lopez".
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ", "+", " ").Replace(local)
	local = strings.Join(strings.Fields(local), " ")
	if local == "" {
		return email
	}
	// cases.Caser guarda estado: uno por llamada
	return cases.Title(language.Spanish).String(local)
}
