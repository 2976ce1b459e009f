package jwt_test

import (
	"encoding/json"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Reportes-api/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse_RolUnico(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "ana@muni.gob", pkgjwt.Roles{"tecnico"}, "reportes-test", 60)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "ana@muni.gob", claims.Email)
	assert.Equal(t, pkgjwt.Roles{"tecnico"}, claims.Rol)
}

func TestGenerate_ExpiraEnOchoHoras(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "ana@muni.gob", pkgjwt.Roles{"tecnico"}, "reportes-test", 480)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, 8*time.Hour, ttl)
}

func TestParse_RolComoArreglo(t *testing.T) {
	claims := gojwt.MapClaims{
		"email": "jefe@muni.gob",
		"rol":   []string{"jefe_departamento", "tecnico"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	parsed, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, pkgjwt.Roles{"jefe_departamento", "tecnico"}, parsed.Rol)
	assert.True(t, parsed.Rol.Has("tecnico"))
	assert.False(t, parsed.Rol.Has("usuario"))
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "ana@muni.gob", pkgjwt.Roles{"tecnico"}, "reportes-test", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "ana@muni.gob", pkgjwt.Roles{"tecnico"}, "reportes-test", 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err)
}

func TestRoles_MarshalUnicoComoString(t *testing.T) {
	b, err := json.Marshal(pkgjwt.Roles{"usuario"})
	require.NoError(t, err)
	assert.JSONEq(t, `"usuario"`, string(b))

	b, err = json.Marshal(pkgjwt.Roles{"usuario", "tecnico"})
	require.NoError(t, err)
	assert.JSONEq(t, `["usuario","tecnico"]`, string(b))
}

func TestRoles_UnmarshalInvalido(t *testing.T) {
	var r pkgjwt.Roles
	assert.Error(t, json.Unmarshal([]byte(`42`), &r))
}
