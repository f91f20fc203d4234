package services

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// VigenciaCodigo es la ventana de validez de un código de recuperación
const VigenciaCodigo = 10 * time.Minute

// longitudMinimaPassword es el mínimo aceptado al confirmar el reseteo
const longitudMinimaPassword = 8

// CodigoStore expone la persistencia de códigos de recuperación
type CodigoStore interface {
	EliminarNoUsados(tx *sql.Tx, usuarioID int64) error
	Crear(tx *sql.Tx, c *models.PasswordResetCode) error
	ObtenerNoUsado(usuarioID int64, code string) (*models.PasswordResetCode, error)
	MarcarUsado(tx *sql.Tx, id int64) error
}

// CuentaStore expone las operaciones de cuenta del flujo de recuperación
type CuentaStore interface {
	ObtenerPorEmail(email string) (*models.Usuario, error)
	ActualizarPassword(tx *sql.Tx, usuarioID int64, passwordHash string) error
}

// LimitadorEmision limita cuántos códigos puede pedir un email por ventana.
// Lo satisface el wrapper de Redis.
type LimitadorEmision interface {
	IncrementarConVentana(key string, ventana time.Duration) (int64, error)
}

// NotificadorCodigo envía el código de recuperación por email
type NotificadorCodigo interface {
	EnviarCodigoReset(destinatario string, codigo string) error
}

// CodigoService implementa el flujo de recuperación de contraseña:
// emisión de códigos de 6 dígitos, verificación y confirmación del cambio.
// Cada cuenta tiene a lo sumo un código vigente; emitir invalida el anterior.
type CodigoService struct {
	db          TxRunner
	codigos     CodigoStore
	cuentas     CuentaStore
	limitador   LimitadorEmision
	notificador NotificadorCodigo
	logger      *logrus.Logger

	limiteEmisiones int
	ventanaEmision  time.Duration

	ahora   func() time.Time
	generar func() (string, error)
}

// NewCodigoService crea una nueva instancia del servicio.
// limitador puede ser nil cuando Redis no está configurado: en ese caso la
// emisión no se limita. notificador puede ser nil cuando el servicio de
// email no está configurado: el código se emite igual, sin enviarse.
func NewCodigoService(
	db TxRunner,
	codigos CodigoStore,
	cuentas CuentaStore,
	limitador LimitadorEmision,
	notificador NotificadorCodigo,
	limiteEmisiones int,
	ventanaEmision time.Duration,
	logger *logrus.Logger,
) *CodigoService {
	return &CodigoService{
		db:              db,
		codigos:         codigos,
		cuentas:         cuentas,
		limitador:       limitador,
		notificador:     notificador,
		logger:          logger,
		limiteEmisiones: limiteEmisiones,
		ventanaEmision:  ventanaEmision,
		ahora:           time.Now,
		generar:         generarCodigo,
	}
}

// Emitir genera un código nuevo para la cuenta y lo envía por email.
// Los códigos sin usar anteriores quedan invalidados en la misma
// transacción, de modo que nunca hay dos códigos vigentes.
func (s *CodigoService) Emitir(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return &models.CamposFaltantesError{Campo: "email"}
	}

	if s.limitador != nil {
		emisiones, err := s.limitador.IncrementarConVentana("reset:"+email, s.ventanaEmision)
		if err != nil {
			// Redis caído no bloquea la recuperación de contraseña
			s.logger.WithError(err).Warn("Rate limiter unavailable, allowing request")
		} else if emisiones > int64(s.limiteEmisiones) {
			return models.ErrLimiteExcedido
		}
	}

	usuario, err := s.cuentas.ObtenerPorEmail(email)
	if err != nil {
		return err
	}

	codigo, err := s.generar()
	if err != nil {
		return fmt.Errorf("error generating reset code: %w", err)
	}

	emitido := s.ahora()
	resetCode := &models.PasswordResetCode{
		UsuarioID: usuario.ID,
		Code:      codigo,
		CreatedAt: emitido,
		ExpiresAt: emitido.Add(VigenciaCodigo),
	}

	err = s.db.WithTransaction(func(tx *sql.Tx) error {
		if err := s.codigos.EliminarNoUsados(tx, usuario.ID); err != nil {
			return err
		}
		return s.codigos.Crear(tx, resetCode)
	})
	if err != nil {
		return err
	}

	// El envío es best-effort: el código ya emitido sigue siendo válido
	// aunque el email falle o no haya servicio de email configurado
	if s.notificador == nil {
		s.logger.WithField("usuario_id", usuario.ID).
			Warn("Email service not configured, reset code not sent")
	} else if err := s.notificador.EnviarCodigoReset(usuario.Email, codigo); err != nil {
		s.logger.WithError(err).WithField("usuario_id", usuario.ID).
			Warn("Error sending reset code email")
	}

	s.logger.WithField("usuario_id", usuario.ID).Info("Password reset code issued")

	return nil
}

// Verificar valida un código presentado sin consumirlo. Distingue código
// expirado de código inválido; un código ya usado cuenta como inválido.
func (s *CodigoService) Verificar(email, codigo string) error {
	_, err := s.buscarVigente(email, codigo)
	return err
}

// Confirmar consume el código y cambia la contraseña de la cuenta en una
// única transacción. Un código consumido no puede reutilizarse.
func (s *CodigoService) Confirmar(email, codigo, nuevaPassword string) error {
	if len(nuevaPassword) < longitudMinimaPassword {
		return models.ErrPasswordDebil
	}

	resetCode, err := s.buscarVigente(email, codigo)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nuevaPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	err = s.db.WithTransaction(func(tx *sql.Tx) error {
		if err := s.codigos.MarcarUsado(tx, resetCode.ID); err != nil {
			return err
		}
		return s.cuentas.ActualizarPassword(tx, resetCode.UsuarioID, string(hash))
	})
	if err != nil {
		return err
	}

	s.logger.WithField("usuario_id", resetCode.UsuarioID).Info("Password reset confirmed")

	return nil
}

// buscarVigente resuelve la cuenta y el código sin usar que coincida
func (s *CodigoService) buscarVigente(email, codigo string) (*models.PasswordResetCode, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, &models.CamposFaltantesError{Campo: "email"}
	}
	if codigo == "" {
		return nil, &models.CamposFaltantesError{Campo: "codigo"}
	}

	usuario, err := s.cuentas.ObtenerPorEmail(email)
	if err != nil {
		return nil, err
	}

	resetCode, err := s.codigos.ObtenerNoUsado(usuario.ID, codigo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrCodigoInvalido
		}
		return nil, err
	}

	if resetCode.Expirado(s.ahora()) {
		return nil, models.ErrCodigoExpirado
	}

	return resetCode, nil
}

// generarCodigo produce un código numérico de 6 dígitos con crypto/rand
func generarCodigo() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
