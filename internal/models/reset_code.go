package models

import "time"

// PasswordResetCode representa un código de recuperación de contraseña.
// Cada cuenta tiene a lo sumo un código sin usar: emitir uno nuevo
// invalida cualquier código anterior.
type PasswordResetCode struct {
	ID        int64     `json:"id" db:"id"`
	UsuarioID int64     `json:"usuario_id" db:"usuario_id"`
	Code      string    `json:"-" db:"code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Used      bool      `json:"used" db:"used"`
}

// Expirado indica si el código ya pasó su ventana de validez
func (c *PasswordResetCode) Expirado(ahora time.Time) bool {
	return ahora.After(c.ExpiresAt)
}

// SolicitarCodigoRequest representa la solicitud de emisión de un código
type SolicitarCodigoRequest struct {
	Email string `json:"email"`
}

// VerificarCodigoRequest representa la verificación de un código emitido
type VerificarCodigoRequest struct {
	Email  string `json:"email"`
	Codigo string `json:"codigo"`
}

// ConfirmarResetRequest representa la confirmación del cambio de contraseña
type ConfirmarResetRequest struct {
	Email    string `json:"email"`
	Codigo   string `json:"codigo"`
	Password string `json:"password"`
}
