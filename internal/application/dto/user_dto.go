package dto

import "github.com/jhoicas/Reportes-api/internal/domain/entity"

// RegisterRequest entrada para registro: nombre, email, password, rol.
type RegisterRequest struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Rol      string `json:"rol"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse salida con el usuario saneado y el token JWT.
type LoginResponse struct {
	Usuario entity.Profile `json:"usuario"`
	Token   string         `json:"token"`
}

// ProfileUpdateResponse resultado de PUT /api/perfil/:email.
type ProfileUpdateResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}
