package models

import (
	"errors"
	"fmt"
)

// ErrorCode representa el código de error
type ErrorCode string

const (
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden      ErrorCode = "FORBIDDEN"
	ErrorCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrorCodeConflict       ErrorCode = "CONFLICT"
	ErrorCodeRateLimited    ErrorCode = "RATE_LIMITED"
	ErrorCodeInternal       ErrorCode = "INTERNAL"
)

// ErrorDetail representa un detalle específico del error
type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ErrorResponse representa la respuesta de error estandarizada
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo representa la información del error
type ErrorInfo struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// NewErrorResponse crea una nueva respuesta de error
func NewErrorResponse(code ErrorCode, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(code),
			Message: message,
		},
	}
}

// NewValidationError crea un error de validación con detalles
func NewValidationError(message string, details []ErrorDetail) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeInvalidRequest),
			Message: message,
			Details: details,
		},
	}
}

// NewUnauthorizedError crea un error de autenticación
func NewUnauthorizedError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeUnauthorized),
			Message: message,
		},
	}
}

// NewForbiddenError crea un error de permisos insuficientes
func NewForbiddenError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeForbidden),
			Message: message,
		},
	}
}

// NewNotFoundError crea un error de recurso no encontrado
func NewNotFoundError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeNotFound),
			Message: message,
		},
	}
}

// NewConflictError crea un error de conflicto
func NewConflictError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeConflict),
			Message: message,
		},
	}
}

// NewRateLimitedError crea un error de límite de solicitudes
func NewRateLimitedError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeRateLimited),
			Message: message,
		},
	}
}

// NewInternalError crea un error interno del servidor
func NewInternalError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeInternal),
			Message: message,
		},
	}
}

// ----- Errores de dominio -----

// CamposFaltantesError indica que falta un campo obligatorio en la solicitud
type CamposFaltantesError struct {
	Campo string
}

func (e *CamposFaltantesError) Error() string {
	return fmt.Sprintf("el campo %s es requerido", e.Campo)
}

// UsuarioNoEncontradoError indica que el usuario referenciado no existe
type UsuarioNoEncontradoError struct {
	UsuarioID int64
	Email     string
}

func (e *UsuarioNoEncontradoError) Error() string {
	if e.Email != "" {
		return fmt.Sprintf("usuario con email %s no encontrado", e.Email)
	}
	return fmt.Sprintf("usuario %d no encontrado", e.UsuarioID)
}

// ProductoNoEncontradoError indica que el producto referenciado no existe
type ProductoNoEncontradoError struct {
	ProductoID int64
}

func (e *ProductoNoEncontradoError) Error() string {
	return fmt.Sprintf("producto %d no encontrado", e.ProductoID)
}

// MarcaNoEncontradaError indica que la marca referenciada no existe
type MarcaNoEncontradaError struct {
	MarcaID int64
}

func (e *MarcaNoEncontradaError) Error() string {
	return fmt.Sprintf("marca %d no encontrada", e.MarcaID)
}

// TipoNoEncontradoError indica que el tipo de producto referenciado no existe
type TipoNoEncontradoError struct {
	TipoID int64
}

func (e *TipoNoEncontradoError) Error() string {
	return fmt.Sprintf("tipo %d no encontrado", e.TipoID)
}

// ClienteNoEncontradoError indica que el cliente referenciado no existe
type ClienteNoEncontradoError struct {
	ClienteID int64
}

func (e *ClienteNoEncontradoError) Error() string {
	return fmt.Sprintf("cliente %d no encontrado", e.ClienteID)
}

// FacturaNoEncontradaError indica que la factura referenciada no existe
type FacturaNoEncontradaError struct {
	FacturaID int64
}

func (e *FacturaNoEncontradaError) Error() string {
	return fmt.Sprintf("factura %d no encontrada", e.FacturaID)
}

// DetalleNoEncontradoError indica que el detalle de factura referenciado no existe
type DetalleNoEncontradoError struct {
	DetalleID int64
}

func (e *DetalleNoEncontradoError) Error() string {
	return fmt.Sprintf("detalle %d no encontrado", e.DetalleID)
}

// StockInsuficienteError indica que no hay stock suficiente para completar la venta
type StockInsuficienteError struct {
	ProductoID int64
	Producto   string
	Disponible int
	Solicitado int
}

func (e *StockInsuficienteError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d",
		e.Producto, e.Disponible, e.Solicitado)
}

// Errores de verificación de códigos de recuperación. El mensaje no revela
// si el código presentado existe para otra cuenta.
var (
	ErrCodigoInvalido = errors.New("código inválido")
	ErrCodigoExpirado = errors.New("código expirado")
	ErrLimiteExcedido = errors.New("demasiadas solicitudes, intente más tarde")
	ErrPasswordDebil  = errors.New("la contraseña debe tener al menos 8 caracteres")
)

// ConflictoClienteError indica un conflicto de unicidad al crear o actualizar un cliente
type ConflictoClienteError struct {
	Campo string
	Valor string
}

func (e *ConflictoClienteError) Error() string {
	return fmt.Sprintf("ya existe un cliente con %s %s", e.Campo, e.Valor)
}
