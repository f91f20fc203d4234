package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// ClienteRepository maneja las operaciones de base de datos para Cliente
type ClienteRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewClienteRepository crea una nueva instancia del repositorio
func NewClienteRepository(db *DB, logger *logrus.Logger) *ClienteRepository {
	return &ClienteRepository{
		db:     db,
		logger: logger,
	}
}

const clienteColumnas = `
	id, nombre, apellido, cedula, direccion, celular, email, sexo,
	password_hash, email_verified_at, created_at, updated_at
`

func escanearCliente(row interface{ Scan(...interface{}) error }) (*models.Cliente, error) {
	var c models.Cliente
	err := row.Scan(
		&c.ID, &c.Nombre, &c.Apellido, &c.Cedula, &c.Direccion, &c.Celular,
		&c.Email, &c.Sexo, &c.PasswordHash, &c.EmailVerificado,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ObtenerPorEmail obtiene un cliente por email
func (r *ClienteRepository) ObtenerPorEmail(email string) (*models.Cliente, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	query := `SELECT ` + clienteColumnas + ` FROM clientes WHERE email = $1`

	cliente, err := escanearCliente(r.db.QueryRowWithTimeout(query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			// El llamador distingue "sin perfil" de un error real
			return nil, err
		}
		return nil, fmt.Errorf("error querying client: %w", err)
	}

	return cliente, nil
}

// ObtenerPorID obtiene un cliente por ID
func (r *ClienteRepository) ObtenerPorID(id int64) (*models.Cliente, error) {
	query := `SELECT ` + clienteColumnas + ` FROM clientes WHERE id = $1`

	cliente, err := escanearCliente(r.db.QueryRowWithTimeout(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.ClienteNoEncontradoError{ClienteID: id}
		}
		return nil, fmt.Errorf("error querying client: %w", err)
	}

	return cliente, nil
}

// Actualizar persiste el perfil completo de un cliente existente
func (r *ClienteRepository) Actualizar(c *models.Cliente) error {
	query := `
		UPDATE clientes SET
			nombre = $2, apellido = $3, cedula = $4, direccion = $5,
			celular = $6, email = $7, sexo = $8, password_hash = $9,
			updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecWithTimeout(query,
		c.ID, c.Nombre, c.Apellido, c.Cedula, c.Direccion, c.Celular,
		strings.ToLower(strings.TrimSpace(c.Email)), c.Sexo,
		c.PasswordHash, time.Now(),
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			campo := "email"
			if strings.Contains(pqErr.Constraint, "cedula") {
				campo = "cedula"
			}
			return &models.ConflictoClienteError{Campo: campo, Valor: c.Email}
		}
		return fmt.Errorf("error updating client: %w", err)
	}

	filas, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking client update: %w", err)
	}
	if filas == 0 {
		return &models.ClienteNoEncontradoError{ClienteID: c.ID}
	}

	return nil
}

// Upsert crea o actualiza el perfil de cliente identificado por email,
// dentro de la transacción de la venta. Replica la semántica de
// update_or_create: si el email ya existe se actualizan los campos de
// perfil, si no existe se inserta el registro completo.
func (r *ClienteRepository) Upsert(tx *sql.Tx, c *models.Cliente) (*models.Cliente, error) {
	query := `
		INSERT INTO clientes (
			nombre, apellido, cedula, direccion, celular, email, sexo,
			password_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (email) DO UPDATE SET
			nombre = EXCLUDED.nombre,
			apellido = EXCLUDED.apellido,
			cedula = EXCLUDED.cedula,
			direccion = EXCLUDED.direccion,
			celular = EXCLUDED.celular,
			sexo = EXCLUDED.sexo,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + clienteColumnas + `
	`

	cliente, err := escanearCliente(tx.QueryRow(query,
		c.Nombre, c.Apellido, c.Cedula, c.Direccion, c.Celular,
		strings.ToLower(strings.TrimSpace(c.Email)), c.Sexo,
		c.PasswordHash, time.Now(),
	))
	if err != nil {
		// El conflicto por cédula (único campo único restante) no se resuelve
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, &models.ConflictoClienteError{Campo: "cedula", Valor: c.Cedula}
		}
		return nil, fmt.Errorf("error upserting client: %w", err)
	}

	return cliente, nil
}

// Crear registra un cliente de forma explícita, fuera del flujo de venta
func (r *ClienteRepository) Crear(c *models.Cliente) error {
	query := `
		INSERT INTO clientes (
			nombre, apellido, cedula, direccion, celular, email, sexo,
			password_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowWithTimeout(query,
		c.Nombre, c.Apellido, c.Cedula, c.Direccion, c.Celular,
		strings.ToLower(strings.TrimSpace(c.Email)), c.Sexo,
		c.PasswordHash, time.Now(),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			campo := "email"
			if strings.Contains(pqErr.Constraint, "cedula") {
				campo = "cedula"
			}
			return &models.ConflictoClienteError{Campo: campo, Valor: c.Email}
		}
		return fmt.Errorf("error creating client: %w", err)
	}

	return nil
}
