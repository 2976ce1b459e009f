package jwt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles es el claim "rol". Tokens antiguos lo emiten como string y los nuevos
// pueden emitir un arreglo; ambos formatos se aceptan al decodificar.
type Roles []string

// UnmarshalJSON acepta "tecnico" o ["tecnico","administrador"].
func (r *Roles) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*r = nil
			return nil
		}
		*r = Roles{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("jwt: claim rol inválido: %w", err)
	}
	out := make(Roles, 0, len(many))
	for _, s := range many {
		if s != "" {
			out = append(out, s)
		}
	}
	*r = out
	return nil
}

// MarshalJSON emite un string cuando hay un único rol, para mantener el payload {email, rol}.
func (r Roles) MarshalJSON() ([]byte, error) {
	switch len(r) {
	case 0:
		return json.Marshal("")
	case 1:
		return json.Marshal(r[0])
	default:
		return json.Marshal([]string(r))
	}
}

// Has indica si alguno de los roles del token está en allowed.
func (r Roles) Has(allowed ...string) bool {
	for _, mine := range r {
		for _, a := range allowed {
			if mine == a {
				return true
			}
		}
	}
	return false
}

// Claims incluye los claims estándar JWT más email y rol.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Rol   Roles  `json:"rol"`
}

// Generate genera un token JWT firmado con payload {email, rol}.
func Generate(secret, email string, roles Roles, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		Email: email,
		Rol:   roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida firma y expiración y devuelve los claims.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}
