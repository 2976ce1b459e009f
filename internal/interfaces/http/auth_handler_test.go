package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	pkgjwt "github.com/jhoicas/Reportes-api/pkg/jwt"
)

func TestRegister_CreadoYLuegoConflicto(t *testing.T) {
	api := newTestAPI(t)
	in := dto.RegisterRequest{Nombre: "Ana", Email: "ana@x.com", Password: "secreta", Rol: "tecnico"}

	resp := api.doJSON(t, http.MethodPost, "/api/register", in, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	user := decode[map[string]any](t, resp)
	assert.Equal(t, "ana@x.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	resp = api.doJSON(t, http.MethodPost, "/api/register", in, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "EMAIL_EXISTS", errBody.Code)
}

func TestRegister_Validacion(t *testing.T) {
	api := newTestAPI(t)
	resp := api.doJSON(t, http.MethodPost, "/api/register", dto.RegisterRequest{Email: "a@x.com"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", errBody.Code)
	assert.NotEmpty(t, errBody.Detail, "fuera de producción se incluye el detalle")
}

func TestLogin_TokenYUsuario(t *testing.T) {
	api := newTestAPI(t)
	resp := api.doJSON(t, http.MethodPost, "/api/register",
		dto.RegisterRequest{Nombre: "Jefe", Email: "jefe@x.com", Password: "pw", Rol: "jefe_departamento"}, "")
	resp.Body.Close()

	resp = api.doJSON(t, http.MethodPost, "/api/login", dto.LoginRequest{Email: "jefe@x.com", Password: "pw"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.LoginResponse](t, resp)
	assert.Equal(t, "jefe@x.com", out.Usuario["email"])
	assert.NotContains(t, out.Usuario, "passwordHash")

	claims, err := pkgjwt.Parse(testJWTSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, pkgjwt.Roles{"jefe_departamento"}, claims.Rol)

	assert.NotNil(t, api.profiles.Get(entity.ContainerJefeDepartamento, "jefe@x.com"),
		"el login sincroniza la proyección del perfil")
}

func TestLogin_CredencialesInvalidas401(t *testing.T) {
	api := newTestAPI(t)
	resp := api.doJSON(t, http.MethodPost, "/api/register",
		dto.RegisterRequest{Nombre: "Ana", Email: "ana@x.com", Password: "pw"}, "")
	resp.Body.Close()

	for _, in := range []dto.LoginRequest{
		{Email: "ana@x.com", Password: "otra"},
		{Email: "nadie@x.com", Password: "pw"},
	} {
		resp := api.doJSON(t, http.MethodPost, "/api/login", in, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, in.Email)
		resp.Body.Close()
	}
}
