package services

import (
	"fmt"
	"strings"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// CuentaRegistroStore expone el alta de cuentas de acceso
type CuentaRegistroStore interface {
	Crear(u *models.Usuario) error
}

// UsuarioService implementa el alta de cuentas de acceso. Las cuentas
// creadas por este flujo siempre tienen rol cliente.
type UsuarioService struct {
	usuarios CuentaRegistroStore
	logger   *logrus.Logger
}

// NewUsuarioService crea una nueva instancia del servicio
func NewUsuarioService(usuarios CuentaRegistroStore, logger *logrus.Logger) *UsuarioService {
	return &UsuarioService{
		usuarios: usuarios,
		logger:   logger,
	}
}

// Registrar da de alta una cuenta con email y contraseña
func (s *UsuarioService) Registrar(req *models.RegistroUsuarioRequest) (*models.Usuario, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, &models.CamposFaltantesError{Campo: "email"}
	}
	if len(req.Password) < longitudMinimaPassword {
		return nil, models.ErrPasswordDebil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	usuario := &models.Usuario{
		Email:        email,
		Nombre:       req.Nombre,
		Apellido:     req.Apellido,
		Direccion:    req.Direccion,
		Celular:      req.Celular,
		Rol:          models.RolCliente,
		PasswordHash: string(hash),
	}

	if err := s.usuarios.Crear(usuario); err != nil {
		return nil, err
	}

	s.logger.WithField("usuario_id", usuario.ID).Info("User account registered")

	return usuario, nil
}
