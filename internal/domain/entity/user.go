package entity

import "time"

// Roles válidos para User.
const (
	RoleUsuario          = "usuario"
	RoleAdministrador    = "administrador"
	RoleJefeDepartamento = "jefe_departamento"
	RoleTecnico          = "tecnico"
)

// IsValidRole indica si rol es uno de los cuatro roles del sistema.
func IsValidRole(rol string) bool {
	switch rol {
	case RoleUsuario, RoleAdministrador, RoleJefeDepartamento, RoleTecnico:
		return true
	}
	return false
}

// Campos del registro canónico tal como se guardan y exponen.
const (
	FieldID                 = "_id"
	FieldNombre             = "nombre"
	FieldEmail              = "email"
	FieldPassword           = "password"
	FieldPasswordHash       = "passwordHash"
	FieldRol                = "rol"
	FieldFechaRegistro      = "fechaRegistro"
	FieldFechaActualizacion = "fechaActualizacion"
)

// User es el registro canónico de una cuenta. Campos contiene los datos de
// perfil libres (teléfono, cargo, etc.) que no tienen columna propia.
type User struct {
	ID                 string
	Nombre             string
	Email              string
	PasswordHash       string // bcrypt hash, nunca plano en dominio después de persistir
	Rol                string
	FechaRegistro      time.Time
	FechaActualizacion *time.Time
	Campos             map[string]any
}

// Sanitized devuelve el registro sin la contraseña, como Profile.
func (u *User) Sanitized() Profile {
	p := make(Profile, len(u.Campos)+6)
	for k, v := range u.Campos {
		p[k] = v
	}
	p[FieldID] = u.ID
	p[FieldNombre] = u.Nombre
	p[FieldEmail] = u.Email
	p[FieldRol] = u.Rol
	p[FieldFechaRegistro] = u.FechaRegistro
	if u.FechaActualizacion != nil {
		p[FieldFechaActualizacion] = *u.FechaActualizacion
	}
	delete(p, FieldPassword)
	delete(p, FieldPasswordHash)
	return p
}
