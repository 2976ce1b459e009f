package entity

import (
	"reflect"
	"time"
)

// Profile es un documento de perfil libre: el registro canónico sin contraseña
// o la proyección por rol guardada en su contenedor.
type Profile map[string]any

// Campos propios de la proyección.
const (
	FieldUsuarioID           = "usuarioId"
	FieldFechaSincronizacion = "fechaSincronizacion"
)

// Contenedores de proyección por rol.
const (
	ContainerAdministrador    = "administradores"
	ContainerJefeDepartamento = "jefes_departamento"
	ContainerTecnico          = "tecnicos"
	ContainerUsuario          = "usuarios_perfil"
)

// ProfileContainers lista los cuatro contenedores fijos.
var ProfileContainers = []string{
	ContainerAdministrador,
	ContainerJefeDepartamento,
	ContainerTecnico,
	ContainerUsuario,
}

// ContainerForRole elige el contenedor de la proyección; roles desconocidos van a usuario.
func ContainerForRole(rol string) string {
	switch rol {
	case RoleAdministrador:
		return ContainerAdministrador
	case RoleJefeDepartamento:
		return ContainerJefeDepartamento
	case RoleTecnico:
		return ContainerTecnico
	default:
		return ContainerUsuario
	}
}

// String devuelve el valor de key como string ("" si falta o no es string).
func (p Profile) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Clone copia superficial.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ProjectionFields son los campos que la proyección copia del registro canónico:
// todo salvo el _id (la proyección tiene el suyo) y cualquier rastro de contraseña.
func (p Profile) ProjectionFields() Profile {
	out := p.Clone()
	if id, ok := out[FieldID]; ok {
		out[FieldUsuarioID] = id
	}
	delete(out, FieldID)
	delete(out, FieldPassword)
	delete(out, FieldPasswordHash)
	return out
}

// DriftsFrom indica si algún campo de want difiere del valor guardado en p.
func (p Profile) DriftsFrom(want Profile) bool {
	for k, w := range want {
		if !sameValue(p[k], w) {
			return true
		}
	}
	return false
}

// StoredTime lleva t a la precisión con la que el almacén lo guarda (milisegundos, UTC).
func StoredTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func sameValue(a, b any) bool {
	ta, okA := a.(time.Time)
	tb, okB := b.(time.Time)
	if okA && okB {
		return StoredTime(ta).Equal(StoredTime(tb))
	}
	return reflect.DeepEqual(a, b)
}
