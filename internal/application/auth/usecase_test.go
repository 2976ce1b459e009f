package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Reportes-api/internal/application/auth"
	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	"github.com/jhoicas/Reportes-api/internal/testutil"
	"github.com/jhoicas/Reportes-api/pkg/jwt"
	"github.com/jhoicas/Reportes-api/pkg/logger"
)

const secret = "secreto-de-pruebas"

func newAuth(t *testing.T) (*auth.AuthUseCase, *testutil.UserRepo, *testutil.Reconciler) {
	t.Helper()
	users := testutil.NewUserRepo()
	rec := &testutil.Reconciler{}
	uc := auth.NewAuthUseCase(users, rec, auth.JWTConfig{Secret: secret, ExpMinutes: 480, Issuer: "test"}, logger.Nop())
	return uc, users, rec
}

func TestRegisterUser_DuplicadoDevuelveConflicto(t *testing.T) {
	uc, users, _ := newAuth(t)
	ctx := context.Background()
	in := dto.RegisterRequest{Nombre: "Ana", Email: "Ana@Muni.gob ", Password: "clave123", Rol: entity.RoleTecnico}

	p, err := uc.RegisterUser(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "ana@muni.gob", p[entity.FieldEmail])
	assert.NotContains(t, p, entity.FieldPassword)
	assert.NotContains(t, p, entity.FieldPasswordHash)

	stored := users.Get("ana@muni.gob")
	require.NotNil(t, stored)
	assert.NotEqual(t, "clave123", stored.PasswordHash)
	cost, err := bcrypt.Cost([]byte(stored.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, auth.PasswordCost, cost)

	_, err = uc.RegisterUser(ctx, in)
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterUser_Validacion(t *testing.T) {
	uc, _, _ := newAuth(t)
	ctx := context.Background()

	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@x.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Nombre: "A", Email: "a@x.com", Password: "x", Rol: "superusuario"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	p, err := uc.RegisterUser(ctx, dto.RegisterRequest{Nombre: "A", Email: "a@x.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUsuario, p[entity.FieldRol], "rol por defecto")
}

func TestAuthenticate_PasswordCorrectoEIncorrecto(t *testing.T) {
	uc, _, rec := newAuth(t)
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Nombre: "Ana", Email: "ana@x.com", Password: "correcta", Rol: entity.RoleTecnico})
	require.NoError(t, err)

	u, err := uc.Authenticate(ctx, "ana@x.com", "correcta")
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", u.Email)
	require.Len(t, rec.Calls, 1, "el login reconcilia la proyección")
	assert.NotContains(t, rec.Calls[0], entity.FieldPasswordHash)

	for _, wrong := range []string{"", "Correcta", "correcta ", "otra"} {
		_, err = uc.Authenticate(ctx, "ana@x.com", wrong)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials, wrong)
	}

	_, err = uc.Authenticate(ctx, "nadie@x.com", "correcta")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_FalloDeReconciliacionNoBloquea(t *testing.T) {
	uc, _, rec := newAuth(t)
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Nombre: "Jefe", Email: "jefe@x.com", Password: "pw", Rol: entity.RoleJefeDepartamento})
	require.NoError(t, err)
	rec.Err = errors.New("colección no disponible")

	resp, err := uc.Login(ctx, dto.LoginRequest{Email: "jefe@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "jefe@x.com", resp.Usuario[entity.FieldEmail])

	claims, err := jwt.Parse(secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "jefe@x.com", claims.Email)
	assert.Equal(t, jwt.Roles{entity.RoleJefeDepartamento}, claims.Rol)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestLogin_CamposVacios(t *testing.T) {
	uc, _, _ := newAuth(t)
	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateProfile_UpsertCreaUsuario(t *testing.T) {
	uc, users, rec := newAuth(t)
	ctx := context.Background()

	ok, err := uc.UpdateProfile(ctx, "nuevo@x.com", map[string]any{"nombre": "Ana", "telefono": "555"})
	require.NoError(t, err)
	assert.True(t, ok)

	u := users.Get("nuevo@x.com")
	require.NotNil(t, u)
	assert.Equal(t, "Ana", u.Nombre)
	assert.Equal(t, entity.RoleUsuario, u.Rol)
	assert.Equal(t, "555", u.Campos["telefono"])
	assert.NotEmpty(t, u.PasswordHash, "se asigna una contraseña aleatoria")
	require.Len(t, rec.Calls, 1)
}

func TestUpdateProfile_UpsertSinNombreLoDerivaDelEmail(t *testing.T) {
	uc, users, _ := newAuth(t)
	ok, err := uc.UpdateProfile(context.Background(), "maria.jose_perez@x.com", map[string]any{"cargo": "Inspectora"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Maria Jose Perez", users.Get("maria.jose_perez@x.com").Nombre)
}

func TestUpdateProfile_ExistenteActualizaYRehashea(t *testing.T) {
	uc, users, rec := newAuth(t)
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Nombre: "Ana", Email: "ana@x.com", Password: "vieja"})
	require.NoError(t, err)

	ok, err := uc.UpdateProfile(ctx, "ana@x.com", map[string]any{
		"nombre":   "Ana María",
		"password": "nueva",
		"email":    "otro@x.com",
		"_id":      "ignorado",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	u := users.Get("ana@x.com")
	require.NotNil(t, u)
	assert.Equal(t, "Ana María", u.Nombre)
	assert.NotNil(t, u.FechaActualizacion)
	assert.Nil(t, users.Get("otro@x.com"), "el email no se puede cambiar por esta vía")

	_, err = uc.Authenticate(ctx, "ana@x.com", "nueva")
	assert.NoError(t, err)
	_, err = uc.Authenticate(ctx, "ana@x.com", "vieja")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.NotEmpty(t, rec.Calls)
}

func TestUpdateProfile_RechazaClavesPeligrosas(t *testing.T) {
	uc, _, _ := newAuth(t)
	for _, patch := range []map[string]any{
		{"$set": map[string]any{"rol": "administrador"}},
		{"direccion.calle": "x"},
		{"rol": "root"},
		{"nombre": 42},
		{"password": ""},
	} {
		_, err := uc.UpdateProfile(context.Background(), "a@x.com", patch)
		assert.ErrorIs(t, err, domain.ErrValidation, "%v", patch)
	}
}

func TestNameFromEmail(t *testing.T) {
	assert.Equal(t, "Ana Maria Lopez", auth.NameFromEmail("ana.maria_lopez@x.com"))
	assert.Equal(t, "Juan", auth.NameFromEmail("juan@x.com"))
	assert.Equal(t, "@x.com", auth.NameFromEmail("@x.com"))
}
