package workflows

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Raraulo/AppMovilBack/internal/database"
	"github.com/Raraulo/AppMovilBack/internal/email"
	"github.com/inngest/inngestgo"
	"github.com/sirupsen/logrus"
)

// EventoVentaProcesada se emite tras el commit de cada venta
const EventoVentaProcesada = "venta/procesada"

// EventoEmailFallido dispara el workflow de reenvío del email de factura
const EventoEmailFallido = "factura/email.fallido"

// EmailRetryWorkflow reenvía el email de factura cuando el envío
// sincrónico posterior al commit falló
type EmailRetryWorkflow struct {
	logger       *logrus.Logger
	emailService *email.ResendService
	facturaRepo  *database.FacturaRepository
	clienteRepo  *database.ClienteRepository
}

// NewEmailRetryWorkflow crea una nueva instancia del workflow
func NewEmailRetryWorkflow(logger *logrus.Logger, emailService *email.ResendService, facturaRepo *database.FacturaRepository, clienteRepo *database.ClienteRepository) *EmailRetryWorkflow {
	return &EmailRetryWorkflow{
		logger:       logger,
		emailService: emailService,
		facturaRepo:  facturaRepo,
		clienteRepo:  clienteRepo,
	}
}

// EmailFallidoInput representa el payload del evento de email fallido
type EmailFallidoInput struct {
	FacturaID    int64  `json:"factura_id"`
	ClienteEmail string `json:"cliente_email"`
}

// Registrar registra el workflow de reenvío con el cliente de Inngest.
// Inngest aplica una política de reintentos acotada; si todos fallan el
// email se pierde (log-and-drop, la factura nunca se ve afectada).
func (w *EmailRetryWorkflow) Registrar(c *InngestClient) error {
	_, err := inngestgo.CreateFunction(
		c.GetClient(),
		inngestgo.FunctionOpts{
			ID:   "reenviar-email-factura",
			Name: "Reenviar email de factura",
		},
		inngestgo.EventTrigger(EventoEmailFallido, nil),
		w.Reenviar,
	)
	if err != nil {
		return fmt.Errorf("error registering email retry workflow: %w", err)
	}

	return nil
}

// Reenviar es la función del workflow: recarga la factura y reintenta el envío
func (w *EmailRetryWorkflow) Reenviar(ctx context.Context, input inngestgo.Input[EmailFallidoInput]) (any, error) {
	facturaID := input.Event.Data.FacturaID

	factura, err := w.facturaRepo.Obtener(facturaID)
	if err != nil {
		return nil, fmt.Errorf("error loading invoice %d: %w", facturaID, err)
	}

	cliente, err := w.clienteRepo.ObtenerPorEmail(input.Event.Data.ClienteEmail)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("client %s no longer exists", input.Event.Data.ClienteEmail)
		}
		return nil, fmt.Errorf("error loading client: %w", err)
	}

	resumenes, err := w.facturaRepo.ListarPorCliente(cliente.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading invoice lines: %w", err)
	}

	for _, resumen := range resumenes {
		if resumen.ID != facturaID {
			continue
		}
		if err := w.emailService.EnviarFactura(factura, cliente, resumen.Productos); err != nil {
			return nil, fmt.Errorf("error resending invoice email: %w", err)
		}
		w.logger.WithField("factura_id", facturaID).Info("Invoice email resent")
		return map[string]interface{}{"factura_id": facturaID, "status": "sent"}, nil
	}

	return nil, fmt.Errorf("invoice %d does not belong to client %d", facturaID, cliente.ID)
}
