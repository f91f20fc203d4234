package database

import (
	"database/sql"
	"fmt"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/sirupsen/logrus"
)

// MarcaRepository maneja las operaciones de base de datos para Marca
type MarcaRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewMarcaRepository crea una nueva instancia del repositorio
func NewMarcaRepository(db *DB, logger *logrus.Logger) *MarcaRepository {
	return &MarcaRepository{
		db:     db,
		logger: logger,
	}
}

// Listar obtiene todas las marcas
func (r *MarcaRepository) Listar() ([]models.Marca, error) {
	query := `SELECT id, nombre, logo, descripcion FROM marcas ORDER BY nombre`

	rows, err := r.db.QueryWithTimeout(query)
	if err != nil {
		return nil, fmt.Errorf("error querying brands: %w", err)
	}
	defer rows.Close()

	marcas := []models.Marca{}
	for rows.Next() {
		var m models.Marca
		if err := rows.Scan(&m.ID, &m.Nombre, &m.Logo, &m.Descripcion); err != nil {
			return nil, fmt.Errorf("error scanning brand: %w", err)
		}
		marcas = append(marcas, m)
	}

	return marcas, rows.Err()
}

// ObtenerPorID obtiene una marca por ID
func (r *MarcaRepository) ObtenerPorID(id int64) (*models.Marca, error) {
	query := `SELECT id, nombre, logo, descripcion FROM marcas WHERE id = $1`

	var m models.Marca
	err := r.db.QueryRowWithTimeout(query, id).Scan(&m.ID, &m.Nombre, &m.Logo, &m.Descripcion)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.MarcaNoEncontradaError{MarcaID: id}
		}
		return nil, fmt.Errorf("error querying brand: %w", err)
	}

	return &m, nil
}

// Crear da de alta una marca
func (r *MarcaRepository) Crear(m *models.Marca) error {
	query := `INSERT INTO marcas (nombre, logo, descripcion) VALUES ($1, $2, $3) RETURNING id`

	if err := r.db.QueryRowWithTimeout(query, m.Nombre, m.Logo, m.Descripcion).Scan(&m.ID); err != nil {
		return fmt.Errorf("error creating brand: %w", err)
	}

	return nil
}

// Actualizar modifica una marca existente
func (r *MarcaRepository) Actualizar(m *models.Marca) error {
	query := `UPDATE marcas SET nombre = $2, logo = $3, descripcion = $4 WHERE id = $1`

	result, err := r.db.ExecWithTimeout(query, m.ID, m.Nombre, m.Logo, m.Descripcion)
	if err != nil {
		return fmt.Errorf("error updating brand: %w", err)
	}

	filas, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking brand update: %w", err)
	}
	if filas == 0 {
		return &models.MarcaNoEncontradaError{MarcaID: m.ID}
	}

	return nil
}

// Eliminar da de baja una marca sin productos asociados
func (r *MarcaRepository) Eliminar(id int64) error {
	result, err := r.db.ExecWithTimeout(`DELETE FROM marcas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting brand: %w", err)
	}

	filas, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking deleted brand: %w", err)
	}
	if filas == 0 {
		return &models.MarcaNoEncontradaError{MarcaID: id}
	}

	return nil
}
