package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MetodoPago representa el método de pago de una venta
type MetodoPago string

const (
	MetodoPagoEfectivo      MetodoPago = "efectivo"
	MetodoPagoTarjeta       MetodoPago = "tarjeta"
	MetodoPagoWaWallet      MetodoPago = "wawallet"
	MetodoPagoTransferencia MetodoPago = "transferencia"
)

// EsValido indica si el método de pago pertenece al catálogo permitido
func (m MetodoPago) EsValido() bool {
	switch m {
	case MetodoPagoEfectivo, MetodoPagoTarjeta, MetodoPagoWaWallet, MetodoPagoTransferencia:
		return true
	}
	return false
}

// Factura representa una venta confirmada.
// El total incluye IVA y debe corresponder siempre a la suma de los
// subtotales sin IVA de sus detalles reinflada con la tasa vigente.
type Factura struct {
	ID         int64           `json:"id" db:"id"`
	ClienteID  int64           `json:"cliente_id" db:"cliente_id"`
	Total      decimal.Decimal `json:"total" db:"total"`
	Fecha      time.Time       `json:"fecha" db:"fecha"`
	MetodoPago MetodoPago      `json:"metodo_pago" db:"metodo_pago"`
}

// NumeroOrden retorna el número de orden visible para el cliente
func (f *Factura) NumeroOrden() string {
	return fmt.Sprintf("ORD-%06d", f.ID)
}

// DetalleFactura representa una línea de una factura.
// precio_unitario y subtotal se almacenan SIN IVA.
type DetalleFactura struct {
	ID             int64           `json:"id" db:"id"`
	FacturaID      int64           `json:"factura_id" db:"factura_id"`
	ProductoID     int64           `json:"producto_id" db:"producto_id"`
	Cantidad       int             `json:"cantidad" db:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" db:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// LineaCarrito representa un par producto/cantidad recibido en el checkout
type LineaCarrito struct {
	ID       int64 `json:"id"`
	Cantidad int   `json:"cantidad"`
}

// VentaRequest representa la solicitud de procesamiento de una venta
type VentaRequest struct {
	UsuarioID  int64          `json:"usuario_id"`
	Productos  []LineaCarrito `json:"productos"`
	MetodoPago MetodoPago     `json:"metodo_pago"`
	Cliente    DatosCliente   `json:"cliente"`
}

// VentaResponse representa la respuesta de una venta procesada
type VentaResponse struct {
	Success      bool            `json:"success"`
	FacturaID    int64           `json:"factura_id"`
	NumeroOrden  string          `json:"numero_orden"`
	Total        decimal.Decimal `json:"total"`
	Fecha        string          `json:"fecha"`
	Cliente      string          `json:"cliente"`
	MetodoPago   MetodoPago      `json:"metodo_pago"`
	EmailEnviado bool            `json:"email_enviado"`
}

// DetalleRequest representa el alta o modificación administrativa de una
// línea de factura. El precio se deriva siempre del catálogo vigente.
type DetalleRequest struct {
	ProductoID int64 `json:"producto_id"`
	Cantidad   int   `json:"cantidad"`
}

// ProductoFacturado representa una línea de factura resuelta con su producto
type ProductoFacturado struct {
	ID             int64           `json:"id"`
	Nombre         string          `json:"nombre"`
	Marca          string          `json:"marca"`
	Tipo           string          `json:"tipo"`
	Imagen         string          `json:"imagen"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// ClienteFacturado representa los datos del cliente dentro del historial
type ClienteFacturado struct {
	Nombre    string `json:"nombre"`
	Apellido  string `json:"apellido"`
	Email     string `json:"email"`
	Cedula    string `json:"cedula"`
	Direccion string `json:"direccion"`
	Celular   string `json:"celular"`
}

// FacturaResumen representa una factura completa dentro del historial de un usuario
type FacturaResumen struct {
	ID          int64               `json:"id"`
	NumeroOrden string              `json:"numero_orden"`
	Fecha       string              `json:"fecha"`
	Total       decimal.Decimal     `json:"total"`
	MetodoPago  MetodoPago          `json:"metodo_pago"`
	Productos   []ProductoFacturado `json:"productos"`
	Cliente     ClienteFacturado    `json:"cliente"`
}
