package workflows

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Raraulo/AppMovilBack/internal/config"
	"github.com/inngest/inngestgo"
	"github.com/sirupsen/logrus"
)

// InngestClient maneja la emisión de eventos y el registro de workflows
type InngestClient struct {
	client inngestgo.Client
	logger *logrus.Logger
}

// NewInngestClient crea una nueva instancia del cliente
func NewInngestClient(cfg *config.Config, logger *logrus.Logger) (*InngestClient, error) {
	if cfg.Inngest.EventKey == "" {
		return nil, fmt.Errorf("INNGEST_EVENT_KEY not configured")
	}

	if cfg.Inngest.SigningKey == "" {
		return nil, fmt.Errorf("INNGEST_SIGNING_KEY not configured")
	}

	client, err := inngestgo.NewClient(inngestgo.ClientOpts{
		EventKey:   &cfg.Inngest.EventKey,
		SigningKey: &cfg.Inngest.SigningKey,
		AppID:      cfg.Inngest.AppID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating Inngest client: %w", err)
	}

	return &InngestClient{
		client: client,
		logger: logger,
	}, nil
}

// EnviarEvento emite un evento de forma best-effort: los errores se
// loguean y nunca se propagan al flujo de la venta.
func (c *InngestClient) EnviarEvento(ctx context.Context, nombre string, datos map[string]interface{}) {
	_, err := c.client.Send(ctx, inngestgo.Event{
		Name: nombre,
		Data: datos,
	})
	if err != nil {
		c.logger.WithError(err).WithField("event", nombre).Warn("Error sending Inngest event")
	}
}

// Handler retorna el handler HTTP que sirve los workflows registrados
func (c *InngestClient) Handler() http.Handler {
	return c.client.Serve()
}

// GetClient retorna el cliente de Inngest
func (c *InngestClient) GetClient() inngestgo.Client {
	return c.client
}
