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

// UsuarioRepository maneja las operaciones de base de datos para Usuario
type UsuarioRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewUsuarioRepository crea una nueva instancia del repositorio
func NewUsuarioRepository(db *DB, logger *logrus.Logger) *UsuarioRepository {
	return &UsuarioRepository{
		db:     db,
		logger: logger,
	}
}

const usuarioColumnas = `
	id, email, nombre, apellido, direccion, celular, rol,
	password_hash, created_at, updated_at
`

func escanearUsuario(row interface{ Scan(...interface{}) error }) (*models.Usuario, error) {
	var u models.Usuario
	err := row.Scan(
		&u.ID, &u.Email, &u.Nombre, &u.Apellido, &u.Direccion, &u.Celular,
		&u.Rol, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ObtenerPorID obtiene un usuario por ID
func (r *UsuarioRepository) ObtenerPorID(id int64) (*models.Usuario, error) {
	query := `SELECT ` + usuarioColumnas + ` FROM usuarios WHERE id = $1`

	usuario, err := escanearUsuario(r.db.QueryRowWithTimeout(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.UsuarioNoEncontradoError{UsuarioID: id}
		}
		return nil, fmt.Errorf("error querying user: %w", err)
	}

	return usuario, nil
}

// ObtenerPorEmail obtiene un usuario por email (normalizado a minúsculas)
func (r *UsuarioRepository) ObtenerPorEmail(email string) (*models.Usuario, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	query := `SELECT ` + usuarioColumnas + ` FROM usuarios WHERE email = $1`

	usuario, err := escanearUsuario(r.db.QueryRowWithTimeout(query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.UsuarioNoEncontradoError{Email: email}
		}
		return nil, fmt.Errorf("error querying user by email: %w", err)
	}

	return usuario, nil
}

// Crear crea un nuevo usuario
func (r *UsuarioRepository) Crear(u *models.Usuario) error {
	query := `
		INSERT INTO usuarios (
			email, nombre, apellido, direccion, celular, rol,
			password_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowWithTimeout(query,
		strings.ToLower(strings.TrimSpace(u.Email)), u.Nombre, u.Apellido,
		u.Direccion, u.Celular, u.Rol, u.PasswordHash, time.Now(),
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return &models.ConflictoClienteError{Campo: "email", Valor: u.Email}
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

// ActualizarPassword actualiza la credencial de un usuario dentro de la transacción
func (r *UsuarioRepository) ActualizarPassword(tx *sql.Tx, usuarioID int64, passwordHash string) error {
	query := `UPDATE usuarios SET password_hash = $2, updated_at = $3 WHERE id = $1`

	result, err := tx.Exec(query, usuarioID, passwordHash, time.Now())
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	filas, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking password update: %w", err)
	}
	if filas == 0 {
		return &models.UsuarioNoEncontradoError{UsuarioID: usuarioID}
	}

	return nil
}
