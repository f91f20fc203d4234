package services

import (
	"database/sql"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/Raraulo/AppMovilBack/internal/money"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DetalleStore expone la persistencia de líneas y totales de factura
type DetalleStore interface {
	Obtener(id int64) (*models.Factura, error)
	ObtenerDetalle(tx *sql.Tx, id int64) (*models.DetalleFactura, error)
	CrearDetalle(tx *sql.Tx, d *models.DetalleFactura) error
	ActualizarDetalle(tx *sql.Tx, d *models.DetalleFactura) error
	EliminarDetalle(tx *sql.Tx, id int64) (int64, error)
	SumarSubtotales(tx *sql.Tx, facturaID int64) (decimal.Decimal, error)
	ObtenerTotal(tx *sql.Tx, facturaID int64) (decimal.Decimal, error)
	ActualizarTotal(tx *sql.Tx, facturaID int64, total decimal.Decimal) error
}

// FacturaService implementa la corrección administrativa de facturas:
// altas, cambios y bajas de líneas con el recálculo del total. El total
// recalculado reinfla la suma de subtotales sin IVA con la tasa vigente;
// nunca se modifica la fecha ni se repone stock.
type FacturaService struct {
	db       TxRunner
	facturas DetalleStore
	catalogo CatalogoStore
	calc     money.Calculadora
	logger   *logrus.Logger
}

// NewFacturaService crea una nueva instancia del servicio
func NewFacturaService(db TxRunner, facturas DetalleStore, catalogo CatalogoStore, calc money.Calculadora, logger *logrus.Logger) *FacturaService {
	return &FacturaService{
		db:       db,
		facturas: facturas,
		catalogo: catalogo,
		calc:     calc,
		logger:   logger,
	}
}

// RecalcularTotal recalcula el total de una factura a partir de sus líneas
// vigentes. Es idempotente: si el total almacenado ya coincide no escribe
// nada. Retorna el total resultante y si hubo cambio.
func (s *FacturaService) RecalcularTotal(facturaID int64) (decimal.Decimal, bool, error) {
	var (
		total    decimal.Decimal
		cambiado bool
	)

	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		var err error
		total, cambiado, err = s.recalcular(tx, facturaID)
		return err
	})
	if err != nil {
		return decimal.Zero, false, err
	}

	return total, cambiado, nil
}

// AgregarDetalle agrega una línea a una factura existente con el precio
// vigente del catálogo y recalcula el total. No descuenta stock: las
// correcciones administrativas no tocan el inventario.
func (s *FacturaService) AgregarDetalle(facturaID int64, req *models.DetalleRequest) (*models.DetalleFactura, error) {
	if req.ProductoID == 0 {
		return nil, &models.CamposFaltantesError{Campo: "producto_id"}
	}
	if req.Cantidad <= 0 {
		return nil, &models.CamposFaltantesError{Campo: "cantidad"}
	}

	var detalle models.DetalleFactura

	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := s.facturas.ObtenerTotal(tx, facturaID); err != nil {
			return err
		}

		producto, err := s.catalogo.ObtenerParaActualizar(tx, req.ProductoID)
		if err != nil {
			return err
		}

		precioUnitario := s.calc.SinIVA(producto.Precio)
		detalle = models.DetalleFactura{
			FacturaID:      facturaID,
			ProductoID:     producto.ID,
			Cantidad:       req.Cantidad,
			PrecioUnitario: precioUnitario,
			Subtotal:       money.Redondear(precioUnitario.Mul(decimal.NewFromInt(int64(req.Cantidad)))),
		}
		if err := s.facturas.CrearDetalle(tx, &detalle); err != nil {
			return err
		}

		_, _, err = s.recalcular(tx, facturaID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &detalle, nil
}

// ActualizarDetalle cambia la cantidad de una línea. El precio unitario se
// vuelve a derivar del precio vigente del producto, de modo que una línea
// corregida refleja el catálogo de hoy y no el del momento de la venta.
func (s *FacturaService) ActualizarDetalle(detalleID int64, req *models.DetalleRequest) (*models.DetalleFactura, error) {
	if req.Cantidad <= 0 {
		return nil, &models.CamposFaltantesError{Campo: "cantidad"}
	}

	var detalle *models.DetalleFactura

	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		var err error
		detalle, err = s.facturas.ObtenerDetalle(tx, detalleID)
		if err != nil {
			return err
		}

		producto, err := s.catalogo.ObtenerParaActualizar(tx, detalle.ProductoID)
		if err != nil {
			return err
		}

		precioUnitario := s.calc.SinIVA(producto.Precio)
		detalle.Cantidad = req.Cantidad
		detalle.PrecioUnitario = precioUnitario
		detalle.Subtotal = money.Redondear(precioUnitario.Mul(decimal.NewFromInt(int64(req.Cantidad))))
		if err := s.facturas.ActualizarDetalle(tx, detalle); err != nil {
			return err
		}

		_, _, err = s.recalcular(tx, detalle.FacturaID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return detalle, nil
}

// EliminarDetalle elimina una línea y recalcula el total de su factura.
// Una factura puede quedar sin líneas; su total pasa a cero.
func (s *FacturaService) EliminarDetalle(detalleID int64) (decimal.Decimal, error) {
	var total decimal.Decimal

	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		facturaID, err := s.facturas.EliminarDetalle(tx, detalleID)
		if err != nil {
			return err
		}

		total, _, err = s.recalcular(tx, facturaID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

// Obtener obtiene una factura por ID
func (s *FacturaService) Obtener(facturaID int64) (*models.Factura, error) {
	return s.facturas.Obtener(facturaID)
}

// recalcular recalcula el total dentro de la transacción y lo escribe solo
// si difiere del almacenado
func (s *FacturaService) recalcular(tx *sql.Tx, facturaID int64) (decimal.Decimal, bool, error) {
	actual, err := s.facturas.ObtenerTotal(tx, facturaID)
	if err != nil {
		return decimal.Zero, false, err
	}

	suma, err := s.facturas.SumarSubtotales(tx, facturaID)
	if err != nil {
		return decimal.Zero, false, err
	}

	total := s.calc.ConIVA(suma)
	if total.Equal(actual) {
		return total, false, nil
	}

	if err := s.facturas.ActualizarTotal(tx, facturaID, total); err != nil {
		return decimal.Zero, false, err
	}

	s.logger.WithFields(logrus.Fields{
		"factura_id":     facturaID,
		"total_anterior": actual.StringFixed(2),
		"total_nuevo":    total.StringFixed(2),
	}).Info("Invoice total recalculated")

	return total, true, nil
}
