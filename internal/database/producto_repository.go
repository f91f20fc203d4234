package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/sirupsen/logrus"
)

// ProductoRepository maneja las operaciones de base de datos para Producto
type ProductoRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewProductoRepository crea una nueva instancia del repositorio
func NewProductoRepository(db *DB, logger *logrus.Logger) *ProductoRepository {
	return &ProductoRepository{
		db:     db,
		logger: logger,
	}
}

const productoColumnas = `
	p.id, p.nombre, p.marca_id, p.tipo_id, p.descripcion, p.precio,
	p.url_imagen, p.stock, p.genero, p.created_at, p.updated_at,
	m.nombre, t.nombre
`

func escanearProducto(row interface{ Scan(...interface{}) error }) (*models.Producto, error) {
	var p models.Producto
	err := row.Scan(
		&p.ID, &p.Nombre, &p.MarcaID, &p.TipoID, &p.Descripcion, &p.Precio,
		&p.URLImagen, &p.Stock, &p.Genero, &p.CreatedAt, &p.UpdatedAt,
		&p.Marca, &p.Tipo,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Crear crea un nuevo producto
func (r *ProductoRepository) Crear(req *models.CrearProductoRequest) (*models.Producto, error) {
	query := `
		INSERT INTO productos (
			nombre, marca_id, tipo_id, descripcion, precio,
			url_imagen, stock, genero, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id, created_at, updated_at
	`

	producto := &models.Producto{
		Nombre:      req.Nombre,
		MarcaID:     req.MarcaID,
		TipoID:      req.TipoID,
		Descripcion: req.Descripcion,
		Precio:      req.Precio,
		URLImagen:   req.URLImagen,
		Stock:       req.Stock,
		Genero:      req.Genero,
	}

	err := r.db.QueryRowWithTimeout(query,
		req.Nombre, req.MarcaID, req.TipoID, req.Descripcion, req.Precio,
		req.URLImagen, req.Stock, req.Genero, time.Now(),
	).Scan(&producto.ID, &producto.CreatedAt, &producto.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("error creating product: %w", err)
	}

	return producto, nil
}

// ObtenerPorID obtiene un producto por ID
func (r *ProductoRepository) ObtenerPorID(id int64) (*models.Producto, error) {
	query := `
		SELECT ` + productoColumnas + `
		FROM productos p
		JOIN marcas m ON m.id = p.marca_id
		JOIN tipos t ON t.id = p.tipo_id
		WHERE p.id = $1
	`

	producto, err := escanearProducto(r.db.QueryRowWithTimeout(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.ProductoNoEncontradoError{ProductoID: id}
		}
		return nil, fmt.Errorf("error querying product: %w", err)
	}

	return producto, nil
}

// Listar obtiene todos los productos del catálogo
func (r *ProductoRepository) Listar() ([]models.Producto, error) {
	query := `
		SELECT ` + productoColumnas + `
		FROM productos p
		JOIN marcas m ON m.id = p.marca_id
		JOIN tipos t ON t.id = p.tipo_id
		ORDER BY p.nombre
	`

	return r.listar(query)
}

// ListarPorMarca obtiene los productos de una marca
func (r *ProductoRepository) ListarPorMarca(marcaID int64) ([]models.Producto, error) {
	query := `
		SELECT ` + productoColumnas + `
		FROM productos p
		JOIN marcas m ON m.id = p.marca_id
		JOIN tipos t ON t.id = p.tipo_id
		WHERE p.marca_id = $1
		ORDER BY p.nombre
	`

	return r.listar(query, marcaID)
}

func (r *ProductoRepository) listar(query string, args ...interface{}) ([]models.Producto, error) {
	rows, err := r.db.QueryWithTimeout(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying products: %w", err)
	}
	defer rows.Close()

	var productos []models.Producto
	for rows.Next() {
		producto, err := escanearProducto(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		productos = append(productos, *producto)
	}

	return productos, rows.Err()
}

// Actualizar actualiza los datos de un producto
func (r *ProductoRepository) Actualizar(id int64, req *models.CrearProductoRequest) (*models.Producto, error) {
	query := `
		UPDATE productos
		SET nombre = $2, marca_id = $3, tipo_id = $4, descripcion = $5,
			precio = $6, url_imagen = $7, stock = $8, genero = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecWithTimeout(query,
		id, req.Nombre, req.MarcaID, req.TipoID, req.Descripcion,
		req.Precio, req.URLImagen, req.Stock, req.Genero, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("error updating product: %w", err)
	}

	filas, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error checking updated rows: %w", err)
	}
	if filas == 0 {
		return nil, &models.ProductoNoEncontradoError{ProductoID: id}
	}

	return r.ObtenerPorID(id)
}

// Eliminar elimina un producto
func (r *ProductoRepository) Eliminar(id int64) error {
	result, err := r.db.ExecWithTimeout(`DELETE FROM productos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting product: %w", err)
	}

	filas, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking deleted rows: %w", err)
	}
	if filas == 0 {
		return &models.ProductoNoEncontradoError{ProductoID: id}
	}

	return nil
}

// ObtenerParaActualizar obtiene un producto bloqueando su fila hasta el
// fin de la transacción (SELECT ... FOR UPDATE) para evitar carreras
// sobre el stock entre checkouts concurrentes.
func (r *ProductoRepository) ObtenerParaActualizar(tx *sql.Tx, id int64) (*models.Producto, error) {
	query := `
		SELECT id, nombre, marca_id, tipo_id, descripcion, precio,
			   url_imagen, stock, genero, created_at, updated_at
		FROM productos
		WHERE id = $1
		FOR UPDATE
	`

	var p models.Producto
	err := tx.QueryRow(query, id).Scan(
		&p.ID, &p.Nombre, &p.MarcaID, &p.TipoID, &p.Descripcion, &p.Precio,
		&p.URLImagen, &p.Stock, &p.Genero, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.ProductoNoEncontradoError{ProductoID: id}
		}
		return nil, fmt.Errorf("error locking product: %w", err)
	}

	return &p, nil
}

// DescontarStock descuenta unidades del stock de un producto dentro de la
// transacción. La condición stock >= cantidad garantiza que nunca se
// persista stock negativo, incluso con líneas duplicadas del mismo producto.
func (r *ProductoRepository) DescontarStock(tx *sql.Tx, id int64, cantidad int) error {
	query := `
		UPDATE productos
		SET stock = stock - $2, updated_at = $3
		WHERE id = $1 AND stock >= $2
	`

	result, err := tx.Exec(query, id, cantidad, time.Now())
	if err != nil {
		return fmt.Errorf("error decrementing stock: %w", err)
	}

	filas, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking stock update: %w", err)
	}
	if filas == 0 {
		// La fila ya está bloqueada: se relee para reportar el stock real,
		// que con líneas duplicadas puede diferir del leído al bloquear
		var nombre string
		var stock int
		err := tx.QueryRow(`SELECT nombre, stock FROM productos WHERE id = $1`, id).Scan(&nombre, &stock)
		if err != nil {
			if err == sql.ErrNoRows {
				return &models.ProductoNoEncontradoError{ProductoID: id}
			}
			return fmt.Errorf("error reading product after stock guard: %w", err)
		}
		return &models.StockInsuficienteError{
			ProductoID: id,
			Producto:   nombre,
			Disponible: stock,
			Solicitado: cantidad,
		}
	}

	return nil
}
