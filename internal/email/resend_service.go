package email

import (
	"fmt"
	"strings"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// ResendService maneja el envío de correos electrónicos usando Resend API
type ResendService struct {
	client    *resend.Client
	fromEmail string
	logger    *logrus.Logger
}

// NewResendService crea una nueva instancia de ResendService
func NewResendService(apiKey string, fromEmail string, logger *logrus.Logger) *ResendService {
	return &ResendService{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		logger:    logger,
	}
}

// EnviarFactura envía el resumen de la compra al cliente.
// Se invoca siempre después del commit de la venta; su falla nunca
// revierte la factura.
func (s *ResendService) EnviarFactura(factura *models.Factura, cliente *models.Cliente, productos []models.ProductoFacturado) error {
	subject := fmt.Sprintf("Tu compra %s - Maison Des Senteurs", factura.NumeroOrden())

	var lineas strings.Builder
	for _, p := range productos {
		lineas.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>%d</td><td>$%s</td><td>$%s</td></tr>",
			p.Nombre, p.Cantidad, p.PrecioUnitario.StringFixed(2), p.Subtotal.StringFixed(2),
		))
	}

	htmlContent := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Factura %s</title>
    <style>
        body { font-family: Arial, sans-serif; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        table { width: 100%%; border-collapse: collapse; }
        th, td { padding: 8px; border-bottom: 1px solid #ddd; text-align: left; }
        .total { font-size: 18px; font-weight: bold; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Gracias por tu compra, %s</h1>
        <p>Orden: <strong>%s</strong></p>
        <p>Fecha: %s</p>
        <p>Método de pago: %s</p>
        <table>
            <tr><th>Producto</th><th>Cantidad</th><th>Precio (sin IVA)</th><th>Subtotal (sin IVA)</th></tr>
            %s
        </table>
        <p class="total">Total (IVA incluido): $%s</p>
        <p>Este es un email automático de Maison Des Senteurs.</p>
    </div>
</body>
</html>`,
		factura.NumeroOrden(),
		cliente.Nombre,
		factura.NumeroOrden(),
		factura.Fecha.Format("02/01/2006 15:04"),
		factura.MetodoPago,
		lineas.String(),
		factura.Total.StringFixed(2),
	)

	return s.enviar(cliente.Email, subject, htmlContent)
}

// EnviarCodigoReset envía el código de recuperación de contraseña
func (s *ResendService) EnviarCodigoReset(destinatario string, codigo string) error {
	subject := "Código de Recuperación - Maison Des Senteurs"

	htmlContent := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>Recuperación de contraseña</h2>
        <p>Has solicitado restablecer tu contraseña en Maison Des Senteurs.</p>
        <p>Tu código de verificación es:</p>
        <p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">%s</p>
        <p>Este código expira en 10 minutos.</p>
        <p>Si no solicitaste este cambio, ignora este mensaje.</p>
    </div>
</body>
</html>`, codigo)

	return s.enviar(destinatario, subject, htmlContent)
}

// enviar despacha el email vía Resend
func (s *ResendService) enviar(destinatario, subject, htmlContent string) error {
	request := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{destinatario},
		Subject: subject,
		Html:    htmlContent,
	}

	result, err := s.client.Emails.Send(request)
	if err != nil {
		return fmt.Errorf("error sending email via Resend: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"email_id": result.Id,
		"to":       destinatario,
		"subject":  subject,
	}).Info("Email sent successfully via Resend")

	return nil
}
