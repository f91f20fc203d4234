package database

import (
	"database/sql"
	"fmt"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/sirupsen/logrus"
)

// TipoRepository maneja las operaciones de base de datos para Tipo
type TipoRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewTipoRepository crea una nueva instancia del repositorio
func NewTipoRepository(db *DB, logger *logrus.Logger) *TipoRepository {
	return &TipoRepository{
		db:     db,
		logger: logger,
	}
}

// Listar obtiene todos los tipos de producto
func (r *TipoRepository) Listar() ([]models.Tipo, error) {
	query := `SELECT id, nombre, descripcion FROM tipos ORDER BY nombre`

	rows, err := r.db.QueryWithTimeout(query)
	if err != nil {
		return nil, fmt.Errorf("error querying product types: %w", err)
	}
	defer rows.Close()

	tipos := []models.Tipo{}
	for rows.Next() {
		var t models.Tipo
		if err := rows.Scan(&t.ID, &t.Nombre, &t.Descripcion); err != nil {
			return nil, fmt.Errorf("error scanning product type: %w", err)
		}
		tipos = append(tipos, t)
	}

	return tipos, rows.Err()
}

// ObtenerPorID obtiene un tipo por ID
func (r *TipoRepository) ObtenerPorID(id int64) (*models.Tipo, error) {
	query := `SELECT id, nombre, descripcion FROM tipos WHERE id = $1`

	var t models.Tipo
	err := r.db.QueryRowWithTimeout(query, id).Scan(&t.ID, &t.Nombre, &t.Descripcion)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.TipoNoEncontradoError{TipoID: id}
		}
		return nil, fmt.Errorf("error querying product type: %w", err)
	}

	return &t, nil
}

// Crear da de alta un tipo de producto
func (r *TipoRepository) Crear(t *models.Tipo) error {
	query := `INSERT INTO tipos (nombre, descripcion) VALUES ($1, $2) RETURNING id`

	if err := r.db.QueryRowWithTimeout(query, t.Nombre, t.Descripcion).Scan(&t.ID); err != nil {
		return fmt.Errorf("error creating product type: %w", err)
	}

	return nil
}

// Eliminar da de baja un tipo sin productos asociados
func (r *TipoRepository) Eliminar(id int64) error {
	result, err := r.db.ExecWithTimeout(`DELETE FROM tipos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting product type: %w", err)
	}

	filas, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking deleted type: %w", err)
	}
	if filas == 0 {
		return &models.TipoNoEncontradoError{TipoID: id}
	}

	return nil
}
