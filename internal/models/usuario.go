package models

import "time"

// Rol representa el rol de una cuenta dentro del sistema
type Rol string

const (
	RolAdmin    Rol = "admin"
	RolEmpleado Rol = "empleado"
	RolCliente  Rol = "cliente"
)

// Usuario representa una cuenta de acceso. El email es el identificador único.
type Usuario struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Nombre       string    `json:"nombre" db:"nombre"`
	Apellido     string    `json:"apellido" db:"apellido"`
	Direccion    string    `json:"direccion" db:"direccion"`
	Celular      string    `json:"celular" db:"celular"`
	Rol          Rol       `json:"rol" db:"rol"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Cliente representa el perfil de facturación asociado a un email
type Cliente struct {
	ID              int64      `json:"id" db:"id"`
	Nombre          string     `json:"nombre" db:"nombre"`
	Apellido        string     `json:"apellido" db:"apellido"`
	Cedula          string     `json:"cedula" db:"cedula"`
	Direccion       string     `json:"direccion" db:"direccion"`
	Celular         string     `json:"celular" db:"celular"`
	Email           string     `json:"email" db:"email"`
	Sexo            string     `json:"sexo" db:"sexo"`
	PasswordHash    string     `json:"-" db:"password_hash"`
	EmailVerificado *time.Time `json:"email_verified_at,omitempty" db:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// RegistroClienteRequest representa el registro explícito de un cliente
type RegistroClienteRequest struct {
	Nombre    string `json:"nombre"`
	Apellido  string `json:"apellido"`
	Cedula    string `json:"cedula"`
	Direccion string `json:"direccion"`
	Celular   string `json:"celular"`
	Email     string `json:"email"`
	Sexo      string `json:"sexo"`
	Password  string `json:"password"`
}

// RegistroUsuarioRequest representa el alta de una cuenta de acceso.
// El rol siempre es cliente; los roles administrativos se asignan aparte.
type RegistroUsuarioRequest struct {
	Email     string `json:"email"`
	Nombre    string `json:"nombre"`
	Apellido  string `json:"apellido"`
	Direccion string `json:"direccion"`
	Celular   string `json:"celular"`
	Password  string `json:"password"`
}

// ActualizarClienteRequest representa una actualización parcial del perfil:
// los campos vacíos conservan el valor actual
type ActualizarClienteRequest struct {
	Nombre    string `json:"nombre"`
	Apellido  string `json:"apellido"`
	Cedula    string `json:"cedula"`
	Direccion string `json:"direccion"`
	Celular   string `json:"celular"`
	Email     string `json:"email"`
	Sexo      string `json:"sexo"`
	Password  string `json:"password"`
}

// DatosCliente representa los datos de perfil recibidos en una venta o registro.
// Los campos vacíos se completan con valores por defecto al hacer el upsert.
type DatosCliente struct {
	Nombre    string `json:"nombre"`
	Apellido  string `json:"apellido"`
	Cedula    string `json:"cedula"`
	Direccion string `json:"direccion"`
	Celular   string `json:"celular"`
	Email     string `json:"email"`
	Sexo      string `json:"sexo"`
}
