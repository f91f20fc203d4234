package services

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/Raraulo/AppMovilBack/internal/money"
	"github.com/Raraulo/AppMovilBack/internal/workflows"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// passwordTemporal es la credencial provisoria de los perfiles de cliente
// creados implícitamente durante el checkout
const passwordTemporal = "temp123"

// TxRunner ejecuta una función dentro de una transacción de base de datos
type TxRunner interface {
	WithTransaction(fn func(*sql.Tx) error) error
}

// UsuarioStore expone las operaciones de cuentas que necesita la venta
type UsuarioStore interface {
	ObtenerPorID(id int64) (*models.Usuario, error)
}

// ClienteStore expone las operaciones de perfiles de cliente
type ClienteStore interface {
	Upsert(tx *sql.Tx, c *models.Cliente) (*models.Cliente, error)
	ObtenerPorEmail(email string) (*models.Cliente, error)
}

// CatalogoStore expone las operaciones transaccionales sobre el catálogo
type CatalogoStore interface {
	ObtenerParaActualizar(tx *sql.Tx, id int64) (*models.Producto, error)
	DescontarStock(tx *sql.Tx, id int64, cantidad int) error
}

// FacturaStore expone la persistencia de facturas y sus líneas
type FacturaStore interface {
	Crear(tx *sql.Tx, f *models.Factura) error
	CrearDetalle(tx *sql.Tx, d *models.DetalleFactura) error
	ListarPorCliente(clienteID int64) ([]models.FacturaResumen, error)
}

// Notificador envía el email de factura al cliente
type Notificador interface {
	EnviarFactura(f *models.Factura, c *models.Cliente, productos []models.ProductoFacturado) error
}

// EmisorEventos emite eventos best-effort hacia el bus de workflows
type EmisorEventos interface {
	EnviarEvento(ctx context.Context, nombre string, datos map[string]interface{})
}

// VentaService implementa el armado de órdenes: valida el carrito contra el
// catálogo, calcula los montos y persiste factura, detalles y descuento de
// stock en una única transacción
type VentaService struct {
	db          TxRunner
	usuarios    UsuarioStore
	clientes    ClienteStore
	catalogo    CatalogoStore
	facturas    FacturaStore
	notificador Notificador
	eventos     EmisorEventos
	calc        money.Calculadora
	logger      *logrus.Logger
	ahora       func() time.Time
}

// NewVentaService crea una nueva instancia del servicio.
// notificador y eventos pueden ser nil cuando el colaborador no está configurado.
func NewVentaService(
	db TxRunner,
	usuarios UsuarioStore,
	clientes ClienteStore,
	catalogo CatalogoStore,
	facturas FacturaStore,
	notificador Notificador,
	eventos EmisorEventos,
	calc money.Calculadora,
	logger *logrus.Logger,
) *VentaService {
	return &VentaService{
		db:          db,
		usuarios:    usuarios,
		clientes:    clientes,
		catalogo:    catalogo,
		facturas:    facturas,
		notificador: notificador,
		eventos:     eventos,
		calc:        calc,
		logger:      logger,
		ahora:       time.Now,
	}
}

// ProcesarVenta procesa un checkout completo. Toda validación y chequeo de
// stock ocurre antes de confirmar; cualquier falla revierte la transacción
// entera, incluidos los descuentos de stock. El email posterior es
// best-effort y jamás revierte la venta.
func (s *VentaService) ProcesarVenta(ctx context.Context, req *models.VentaRequest) (*models.VentaResponse, error) {
	if req.UsuarioID == 0 {
		return nil, &models.CamposFaltantesError{Campo: "usuario_id"}
	}
	if len(req.Productos) == 0 {
		return nil, &models.CamposFaltantesError{Campo: "productos"}
	}

	metodoPago := req.MetodoPago
	if metodoPago == "" {
		metodoPago = models.MetodoPagoEfectivo
	}
	if !metodoPago.EsValido() {
		return nil, &models.CamposFaltantesError{Campo: "metodo_pago"}
	}

	lineas := make([]models.LineaCarrito, len(req.Productos))
	copy(lineas, req.Productos)
	for i := range lineas {
		if lineas[i].ID == 0 {
			return nil, &models.CamposFaltantesError{Campo: "productos.id"}
		}
		if lineas[i].Cantidad == 0 {
			lineas[i].Cantidad = 1
		}
		if lineas[i].Cantidad < 0 {
			return nil, &models.CamposFaltantesError{Campo: "productos.cantidad"}
		}
	}

	// Las filas de producto se bloquean siempre en orden ascendente de ID
	// para evitar deadlocks entre checkouts concurrentes
	sort.Slice(lineas, func(i, j int) bool { return lineas[i].ID < lineas[j].ID })

	usuario, err := s.usuarios.ObtenerPorID(req.UsuarioID)
	if err != nil {
		return nil, err
	}

	perfil, err := s.perfilConDefaults(req.Cliente, usuario)
	if err != nil {
		return nil, err
	}

	var (
		factura    models.Factura
		cliente    *models.Cliente
		facturados []models.ProductoFacturado
	)

	err = s.db.WithTransaction(func(tx *sql.Tx) error {
		cliente, err = s.clientes.Upsert(tx, perfil)
		if err != nil {
			return err
		}

		total := decimal.Zero
		detalles := make([]models.DetalleFactura, 0, len(lineas))
		facturados = facturados[:0]

		for _, linea := range lineas {
			producto, err := s.catalogo.ObtenerParaActualizar(tx, linea.ID)
			if err != nil {
				return err
			}

			if producto.Stock < linea.Cantidad {
				return &models.StockInsuficienteError{
					ProductoID: producto.ID,
					Producto:   producto.Nombre,
					Disponible: producto.Stock,
					Solicitado: linea.Cantidad,
				}
			}

			cantidad := decimal.NewFromInt(int64(linea.Cantidad))

			// La línea se almacena SIN IVA; el total acumula los importes
			// CON IVA tal cual los ve el cliente. La asimetría con el
			// recálculo administrativo es comportamiento observado del
			// sistema de facturación y se conserva por compatibilidad.
			precioUnitario := s.calc.SinIVA(producto.Precio)
			subtotal := money.Redondear(precioUnitario.Mul(cantidad))
			total = total.Add(producto.Precio.Mul(cantidad))

			detalles = append(detalles, models.DetalleFactura{
				ProductoID:     producto.ID,
				Cantidad:       linea.Cantidad,
				PrecioUnitario: precioUnitario,
				Subtotal:       subtotal,
			})
			facturados = append(facturados, models.ProductoFacturado{
				ID:             producto.ID,
				Nombre:         producto.Nombre,
				Imagen:         producto.URLImagen,
				Cantidad:       linea.Cantidad,
				PrecioUnitario: precioUnitario,
				Subtotal:       subtotal,
			})
		}

		factura = models.Factura{
			ClienteID:  cliente.ID,
			Total:      money.Redondear(total),
			Fecha:      s.ahora(),
			MetodoPago: metodoPago,
		}
		if err := s.facturas.Crear(tx, &factura); err != nil {
			return err
		}

		for i := range detalles {
			detalles[i].FacturaID = factura.ID
			if err := s.facturas.CrearDetalle(tx, &detalles[i]); err != nil {
				return err
			}
			if err := s.catalogo.DescontarStock(tx, detalles[i].ProductoID, detalles[i].Cantidad); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Los locks de fila ya se liberaron en el commit: recién ahora se
	// tocan colaboradores externos
	emailEnviado := s.notificar(ctx, &factura, cliente, facturados)

	if s.eventos != nil {
		s.eventos.EnviarEvento(ctx, workflows.EventoVentaProcesada, map[string]interface{}{
			"factura_id":   factura.ID,
			"numero_orden": factura.NumeroOrden(),
			"total":        factura.Total.StringFixed(2),
			"cliente_id":   cliente.ID,
		})
	}

	return &models.VentaResponse{
		Success:      true,
		FacturaID:    factura.ID,
		NumeroOrden:  factura.NumeroOrden(),
		Total:        factura.Total,
		Fecha:        factura.Fecha.Format(time.RFC3339),
		Cliente:      cliente.Nombre + " " + cliente.Apellido,
		MetodoPago:   metodoPago,
		EmailEnviado: emailEnviado,
	}, nil
}

// ObtenerHistorial retorna las facturas de un usuario, resueltas contra su
// perfil de cliente por email. Un usuario sin perfil tiene historial vacío.
func (s *VentaService) ObtenerHistorial(usuarioID int64) ([]models.FacturaResumen, error) {
	usuario, err := s.usuarios.ObtenerPorID(usuarioID)
	if err != nil {
		return nil, err
	}

	cliente, err := s.clientes.ObtenerPorEmail(usuario.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return []models.FacturaResumen{}, nil
		}
		return nil, err
	}

	resumenes, err := s.facturas.ListarPorCliente(cliente.ID)
	if err != nil {
		return nil, err
	}

	datos := models.ClienteFacturado{
		Nombre:    cliente.Nombre,
		Apellido:  cliente.Apellido,
		Email:     cliente.Email,
		Cedula:    cliente.Cedula,
		Direccion: cliente.Direccion,
		Celular:   cliente.Celular,
	}
	for i := range resumenes {
		resumenes[i].Cliente = datos
	}
	if resumenes == nil {
		resumenes = []models.FacturaResumen{}
	}

	return resumenes, nil
}

// perfilConDefaults completa los campos faltantes del perfil de cliente con
// los valores por defecto derivados de la cuenta
func (s *VentaService) perfilConDefaults(datos models.DatosCliente, usuario *models.Usuario) (*models.Cliente, error) {
	email := datos.Email
	if email == "" {
		email = usuario.Email
	}

	nombre := datos.Nombre
	if nombre == "" {
		nombre = "Cliente"
	}

	apellido := datos.Apellido
	if apellido == "" {
		apellido = parteLocal(email)
	}

	cedula := datos.Cedula
	if cedula == "" {
		cedula = cedulaPorDefecto(usuario.ID)
	}

	sexo := datos.Sexo
	if sexo == "" {
		sexo = "Hombre"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passwordTemporal), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &models.Cliente{
		Nombre:       nombre,
		Apellido:     apellido,
		Cedula:       cedula,
		Direccion:    datos.Direccion,
		Celular:      datos.Celular,
		Email:        email,
		Sexo:         sexo,
		PasswordHash: string(hash),
	}, nil
}

// notificar envía el email de factura y reporta el resultado en la
// respuesta. Si falla, emite el evento de reintento y sigue adelante.
func (s *VentaService) notificar(ctx context.Context, factura *models.Factura, cliente *models.Cliente, productos []models.ProductoFacturado) bool {
	if s.notificador == nil {
		return false
	}

	if err := s.notificador.EnviarFactura(factura, cliente, productos); err != nil {
		s.logger.WithError(err).WithField("factura_id", factura.ID).
			Warn("Error sending invoice email")

		if s.eventos != nil {
			s.eventos.EnviarEvento(ctx, workflows.EventoEmailFallido, map[string]interface{}{
				"factura_id":    factura.ID,
				"cliente_email": cliente.Email,
			})
		}
		return false
	}

	return true
}
