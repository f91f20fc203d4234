package database

import (
	"database/sql"
	"fmt"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/sirupsen/logrus"
)

// ResetCodeRepository maneja la persistencia de los códigos de recuperación.
// Los códigos viven en la base de datos (no en memoria de proceso) para que
// la verificación funcione con varios procesos y sobreviva reinicios.
type ResetCodeRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewResetCodeRepository crea una nueva instancia del repositorio
func NewResetCodeRepository(db *DB, logger *logrus.Logger) *ResetCodeRepository {
	return &ResetCodeRepository{
		db:     db,
		logger: logger,
	}
}

// EliminarNoUsados elimina los códigos sin usar de una cuenta. Se invoca al
// emitir un código nuevo: el anterior queda superseded.
func (r *ResetCodeRepository) EliminarNoUsados(tx *sql.Tx, usuarioID int64) error {
	query := `DELETE FROM password_reset_codes WHERE usuario_id = $1 AND used = false`

	if _, err := tx.Exec(query, usuarioID); err != nil {
		return fmt.Errorf("error deleting unused codes: %w", err)
	}

	return nil
}

// Crear persiste un código recién emitido
func (r *ResetCodeRepository) Crear(tx *sql.Tx, c *models.PasswordResetCode) error {
	query := `
		INSERT INTO password_reset_codes (usuario_id, code, created_at, expires_at, used)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id
	`

	err := tx.QueryRow(query, c.UsuarioID, c.Code, c.CreatedAt, c.ExpiresAt).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("error creating reset code: %w", err)
	}

	return nil
}

// ObtenerNoUsado busca el código sin usar de una cuenta que coincida con el
// valor presentado. No filtra por expiración: esa decisión es del servicio,
// que distingue código expirado de código inválido.
func (r *ResetCodeRepository) ObtenerNoUsado(usuarioID int64, code string) (*models.PasswordResetCode, error) {
	query := `
		SELECT id, usuario_id, code, created_at, expires_at, used
		FROM password_reset_codes
		WHERE usuario_id = $1 AND code = $2 AND used = false
		ORDER BY created_at DESC
		LIMIT 1
	`

	var c models.PasswordResetCode
	err := r.db.QueryRowWithTimeout(query, usuarioID, code).Scan(
		&c.ID, &c.UsuarioID, &c.Code, &c.CreatedAt, &c.ExpiresAt, &c.Used,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("error querying reset code: %w", err)
	}

	return &c, nil
}

// MarcarUsado marca un código como consumido dentro de la transacción.
// La condición used = false hace el consumo de un solo uso: si otra
// confirmación concurrente ya lo marcó, la actualización no afecta filas y
// el código cuenta como inválido.
func (r *ResetCodeRepository) MarcarUsado(tx *sql.Tx, id int64) error {
	result, err := tx.Exec(`UPDATE password_reset_codes SET used = true WHERE id = $1 AND used = false`, id)
	if err != nil {
		return fmt.Errorf("error marking code as used: %w", err)
	}

	filas, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking code update: %w", err)
	}
	if filas == 0 {
		return models.ErrCodigoInvalido
	}

	return nil
}
