package services

import (
	"fmt"
	"strings"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// RegistroStore expone el alta y el mantenimiento explícito de clientes
type RegistroStore interface {
	Crear(c *models.Cliente) error
	ObtenerPorID(id int64) (*models.Cliente, error)
	Actualizar(c *models.Cliente) error
}

// ClienteService implementa el registro y el mantenimiento explícito de
// perfiles de cliente, fuera del flujo de venta
type ClienteService struct {
	clientes RegistroStore
	logger   *logrus.Logger
}

// NewClienteService crea una nueva instancia del servicio
func NewClienteService(clientes RegistroStore, logger *logrus.Logger) *ClienteService {
	return &ClienteService{
		clientes: clientes,
		logger:   logger,
	}
}

// Registrar da de alta un cliente con sus datos completos. A diferencia del
// upsert de la venta, aquí todos los campos identificatorios son requeridos
// y la contraseña la elige el cliente.
func (s *ClienteService) Registrar(req *models.RegistroClienteRequest) (*models.Cliente, error) {
	requeridos := []struct {
		campo string
		valor string
	}{
		{"nombre", req.Nombre},
		{"apellido", req.Apellido},
		{"cedula", req.Cedula},
		{"email", req.Email},
	}
	for _, r := range requeridos {
		if strings.TrimSpace(r.valor) == "" {
			return nil, &models.CamposFaltantesError{Campo: r.campo}
		}
	}
	if len(req.Password) < longitudMinimaPassword {
		return nil, models.ErrPasswordDebil
	}

	sexo := req.Sexo
	if sexo == "" {
		sexo = "Hombre"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	cliente := &models.Cliente{
		Nombre:       req.Nombre,
		Apellido:     req.Apellido,
		Cedula:       req.Cedula,
		Direccion:    req.Direccion,
		Celular:      req.Celular,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Sexo:         sexo,
		PasswordHash: string(hash),
	}

	if err := s.clientes.Crear(cliente); err != nil {
		return nil, err
	}

	s.logger.WithField("cliente_id", cliente.ID).Info("Client registered")

	return cliente, nil
}

// Obtener devuelve el perfil de un cliente por ID
func (s *ClienteService) Obtener(id int64) (*models.Cliente, error) {
	return s.clientes.ObtenerPorID(id)
}

// Actualizar aplica una actualización parcial del perfil: los campos vacíos
// conservan el valor actual y la contraseña solo cambia si se envía una nueva
func (s *ClienteService) Actualizar(id int64, req *models.ActualizarClienteRequest) (*models.Cliente, error) {
	cliente, err := s.clientes.ObtenerPorID(id)
	if err != nil {
		return nil, err
	}

	aplicar := func(destino *string, valor string) {
		if strings.TrimSpace(valor) != "" {
			*destino = valor
		}
	}
	aplicar(&cliente.Nombre, req.Nombre)
	aplicar(&cliente.Apellido, req.Apellido)
	aplicar(&cliente.Cedula, req.Cedula)
	aplicar(&cliente.Direccion, req.Direccion)
	aplicar(&cliente.Celular, req.Celular)
	aplicar(&cliente.Sexo, req.Sexo)
	if strings.TrimSpace(req.Email) != "" {
		cliente.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}

	if req.Password != "" {
		if len(req.Password) < longitudMinimaPassword {
			return nil, models.ErrPasswordDebil
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		cliente.PasswordHash = string(hash)
	}

	if err := s.clientes.Actualizar(cliente); err != nil {
		return nil, err
	}

	s.logger.WithField("cliente_id", cliente.ID).Info("Client profile updated")

	return cliente, nil
}
