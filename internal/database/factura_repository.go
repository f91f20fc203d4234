package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// FacturaRepository maneja las operaciones de base de datos para Factura
// y sus detalles
type FacturaRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewFacturaRepository crea una nueva instancia del repositorio
func NewFacturaRepository(db *DB, logger *logrus.Logger) *FacturaRepository {
	return &FacturaRepository{
		db:     db,
		logger: logger,
	}
}

// Crear persiste la cabecera de una factura dentro de la transacción.
// La fecha se fija una sola vez y es inmutable.
func (r *FacturaRepository) Crear(tx *sql.Tx, f *models.Factura) error {
	query := `
		INSERT INTO facturas (cliente_id, total, fecha, metodo_pago)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if err := tx.QueryRow(query, f.ClienteID, f.Total, f.Fecha, f.MetodoPago).Scan(&f.ID); err != nil {
		return fmt.Errorf("error creating invoice: %w", err)
	}

	return nil
}

// CrearDetalle persiste una línea de factura dentro de la transacción
func (r *FacturaRepository) CrearDetalle(tx *sql.Tx, d *models.DetalleFactura) error {
	query := `
		INSERT INTO detalle_facturas (factura_id, producto_id, cantidad, precio_unitario, subtotal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := tx.QueryRow(query, d.FacturaID, d.ProductoID, d.Cantidad, d.PrecioUnitario, d.Subtotal).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("error creating invoice line: %w", err)
	}

	return nil
}

// Obtener obtiene una factura por ID
func (r *FacturaRepository) Obtener(id int64) (*models.Factura, error) {
	query := `SELECT id, cliente_id, total, fecha, metodo_pago FROM facturas WHERE id = $1`

	var f models.Factura
	err := r.db.QueryRowWithTimeout(query, id).Scan(
		&f.ID, &f.ClienteID, &f.Total, &f.Fecha, &f.MetodoPago,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.FacturaNoEncontradaError{FacturaID: id}
		}
		return nil, fmt.Errorf("error querying invoice: %w", err)
	}

	return &f, nil
}

// ObtenerDetalle obtiene una línea de factura por ID
func (r *FacturaRepository) ObtenerDetalle(tx *sql.Tx, id int64) (*models.DetalleFactura, error) {
	query := `
		SELECT id, factura_id, producto_id, cantidad, precio_unitario, subtotal
		FROM detalle_facturas
		WHERE id = $1
	`

	var d models.DetalleFactura
	err := tx.QueryRow(query, id).Scan(
		&d.ID, &d.FacturaID, &d.ProductoID, &d.Cantidad, &d.PrecioUnitario, &d.Subtotal,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.DetalleNoEncontradoError{DetalleID: id}
		}
		return nil, fmt.Errorf("error querying invoice line: %w", err)
	}

	return &d, nil
}

// ActualizarDetalle actualiza cantidad, precio unitario y subtotal de una línea
func (r *FacturaRepository) ActualizarDetalle(tx *sql.Tx, d *models.DetalleFactura) error {
	query := `
		UPDATE detalle_facturas
		SET cantidad = $2, precio_unitario = $3, subtotal = $4
		WHERE id = $1
	`

	result, err := tx.Exec(query, d.ID, d.Cantidad, d.PrecioUnitario, d.Subtotal)
	if err != nil {
		return fmt.Errorf("error updating invoice line: %w", err)
	}

	filas, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking line update: %w", err)
	}
	if filas == 0 {
		return &models.DetalleNoEncontradoError{DetalleID: d.ID}
	}

	return nil
}

// EliminarDetalle elimina una línea de factura
func (r *FacturaRepository) EliminarDetalle(tx *sql.Tx, id int64) (facturaID int64, err error) {
	query := `DELETE FROM detalle_facturas WHERE id = $1 RETURNING factura_id`

	if err := tx.QueryRow(query, id).Scan(&facturaID); err != nil {
		if err == sql.ErrNoRows {
			return 0, &models.DetalleNoEncontradoError{DetalleID: id}
		}
		return 0, fmt.Errorf("error deleting invoice line: %w", err)
	}

	return facturaID, nil
}

// SumarSubtotales suma los subtotales (sin IVA) vigentes de una factura
func (r *FacturaRepository) SumarSubtotales(tx *sql.Tx, facturaID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(subtotal), 0)
		FROM detalle_facturas
		WHERE factura_id = $1
	`

	var suma decimal.Decimal
	if err := tx.QueryRow(query, facturaID).Scan(&suma); err != nil {
		return decimal.Zero, fmt.Errorf("error summing invoice lines: %w", err)
	}

	return suma, nil
}

// ObtenerTotal obtiene el total almacenado de una factura dentro de la transacción
func (r *FacturaRepository) ObtenerTotal(tx *sql.Tx, facturaID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.QueryRow(`SELECT total FROM facturas WHERE id = $1`, facturaID).Scan(&total)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, &models.FacturaNoEncontradaError{FacturaID: facturaID}
		}
		return decimal.Zero, fmt.Errorf("error querying invoice total: %w", err)
	}

	return total, nil
}

// ActualizarTotal persiste únicamente el total recalculado de la factura
func (r *FacturaRepository) ActualizarTotal(tx *sql.Tx, facturaID int64, total decimal.Decimal) error {
	result, err := tx.Exec(`UPDATE facturas SET total = $2 WHERE id = $1`, facturaID, total)
	if err != nil {
		return fmt.Errorf("error updating invoice total: %w", err)
	}

	filas, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking total update: %w", err)
	}
	if filas == 0 {
		return &models.FacturaNoEncontradaError{FacturaID: facturaID}
	}

	return nil
}

// ListarPorCliente obtiene el historial de facturas de un cliente, con sus
// líneas resueltas contra el catálogo, ordenado por fecha descendente
func (r *FacturaRepository) ListarPorCliente(clienteID int64) ([]models.FacturaResumen, error) {
	query := `
		SELECT id, total, fecha, metodo_pago
		FROM facturas
		WHERE cliente_id = $1
		ORDER BY fecha DESC
	`

	rows, err := r.db.QueryWithTimeout(query, clienteID)
	if err != nil {
		return nil, fmt.Errorf("error querying invoices: %w", err)
	}
	defer rows.Close()

	var resumenes []models.FacturaResumen
	for rows.Next() {
		var f models.Factura
		if err := rows.Scan(&f.ID, &f.Total, &f.Fecha, &f.MetodoPago); err != nil {
			return nil, fmt.Errorf("error scanning invoice: %w", err)
		}

		resumenes = append(resumenes, models.FacturaResumen{
			ID:          f.ID,
			NumeroOrden: f.NumeroOrden(),
			Fecha:       f.Fecha.Format(time.RFC3339),
			Total:       f.Total,
			MetodoPago:  f.MetodoPago,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range resumenes {
		productos, err := r.listarProductosFacturados(resumenes[i].ID)
		if err != nil {
			return nil, err
		}
		resumenes[i].Productos = productos
	}

	return resumenes, nil
}

// listarProductosFacturados resuelve las líneas de una factura con los
// nombres de producto, marca y tipo
func (r *FacturaRepository) listarProductosFacturados(facturaID int64) ([]models.ProductoFacturado, error) {
	query := `
		SELECT p.id, p.nombre, m.nombre, t.nombre, p.url_imagen,
			   d.cantidad, d.precio_unitario, d.subtotal
		FROM detalle_facturas d
		JOIN productos p ON p.id = d.producto_id
		JOIN marcas m ON m.id = p.marca_id
		JOIN tipos t ON t.id = p.tipo_id
		WHERE d.factura_id = $1
		ORDER BY d.id
	`

	rows, err := r.db.QueryWithTimeout(query, facturaID)
	if err != nil {
		return nil, fmt.Errorf("error querying invoice lines: %w", err)
	}
	defer rows.Close()

	productos := []models.ProductoFacturado{}
	for rows.Next() {
		var p models.ProductoFacturado
		err := rows.Scan(
			&p.ID, &p.Nombre, &p.Marca, &p.Tipo, &p.Imagen,
			&p.Cantidad, &p.PrecioUnitario, &p.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning invoice line: %w", err)
		}
		productos = append(productos, p)
	}

	return productos, rows.Err()
}
