package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// fakeTxRunner ejecuta el cuerpo de la transacción directamente, con tx nil.
// Los fakes de store ignoran el tx.
type fakeTxRunner struct {
	commits   int
	rollbacks int
}

func (f *fakeTxRunner) WithTransaction(fn func(*sql.Tx) error) error {
	if err := fn(nil); err != nil {
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

type fakeUsuarios struct {
	usuarios  map[int64]*models.Usuario
	siguiente int64
}

func (f *fakeUsuarios) Crear(u *models.Usuario) error {
	for _, existente := range f.usuarios {
		if existente.Email == u.Email {
			return &models.ConflictoClienteError{Campo: "email", Valor: u.Email}
		}
	}
	f.siguiente++
	u.ID = f.siguiente + 100
	if f.usuarios == nil {
		f.usuarios = map[int64]*models.Usuario{}
	}
	copia := *u
	f.usuarios[u.ID] = &copia
	return nil
}

func (f *fakeUsuarios) ObtenerPorID(id int64) (*models.Usuario, error) {
	if u, ok := f.usuarios[id]; ok {
		return u, nil
	}
	return nil, &models.UsuarioNoEncontradoError{UsuarioID: id}
}

func (f *fakeUsuarios) ObtenerPorEmail(email string) (*models.Usuario, error) {
	for _, u := range f.usuarios {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, &models.UsuarioNoEncontradoError{Email: email}
}

func (f *fakeUsuarios) ActualizarPassword(_ *sql.Tx, usuarioID int64, hash string) error {
	u, ok := f.usuarios[usuarioID]
	if !ok {
		return &models.UsuarioNoEncontradoError{UsuarioID: usuarioID}
	}
	u.PasswordHash = hash
	return nil
}

type fakeClientes struct {
	porEmail  map[string]*models.Cliente
	siguiente int64
	recibido  *models.Cliente
}

func (f *fakeClientes) Upsert(_ *sql.Tx, c *models.Cliente) (*models.Cliente, error) {
	f.recibido = c
	if existente, ok := f.porEmail[c.Email]; ok {
		copia := *c
		copia.ID = existente.ID
		copia.PasswordHash = existente.PasswordHash
		f.porEmail[c.Email] = &copia
		return &copia, nil
	}
	f.siguiente++
	copia := *c
	copia.ID = f.siguiente
	if f.porEmail == nil {
		f.porEmail = map[string]*models.Cliente{}
	}
	f.porEmail[c.Email] = &copia
	return &copia, nil
}

func (f *fakeClientes) Crear(c *models.Cliente) error {
	if _, ok := f.porEmail[c.Email]; ok {
		return &models.ConflictoClienteError{Campo: "email", Valor: c.Email}
	}
	f.siguiente++
	c.ID = f.siguiente
	if f.porEmail == nil {
		f.porEmail = map[string]*models.Cliente{}
	}
	copia := *c
	f.porEmail[c.Email] = &copia
	return nil
}

func (f *fakeClientes) ObtenerPorEmail(email string) (*models.Cliente, error) {
	if c, ok := f.porEmail[email]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeClientes) ObtenerPorID(id int64) (*models.Cliente, error) {
	for _, c := range f.porEmail {
		if c.ID == id {
			copia := *c
			return &copia, nil
		}
	}
	return nil, &models.ClienteNoEncontradoError{ClienteID: id}
}

func (f *fakeClientes) Actualizar(c *models.Cliente) error {
	for email, existente := range f.porEmail {
		if existente.ID == c.ID {
			if email != c.Email {
				delete(f.porEmail, email)
			}
			copia := *c
			f.porEmail[c.Email] = &copia
			return nil
		}
	}
	return &models.ClienteNoEncontradoError{ClienteID: c.ID}
}

type fakeCatalogo struct {
	productos   map[int64]*models.Producto
	bloqueados  []int64
	descontados map[int64]int
}

func (f *fakeCatalogo) ObtenerParaActualizar(_ *sql.Tx, id int64) (*models.Producto, error) {
	f.bloqueados = append(f.bloqueados, id)
	if p, ok := f.productos[id]; ok {
		copia := *p
		return &copia, nil
	}
	return nil, &models.ProductoNoEncontradoError{ProductoID: id}
}

func (f *fakeCatalogo) DescontarStock(_ *sql.Tx, id int64, cantidad int) error {
	p, ok := f.productos[id]
	if !ok {
		return &models.ProductoNoEncontradoError{ProductoID: id}
	}
	if p.Stock < cantidad {
		return &models.StockInsuficienteError{
			ProductoID: id,
			Producto:   p.Nombre,
			Disponible: p.Stock,
			Solicitado: cantidad,
		}
	}
	p.Stock -= cantidad
	if f.descontados == nil {
		f.descontados = map[int64]int{}
	}
	f.descontados[id] += cantidad
	return nil
}

type fakeFacturas struct {
	siguiente int64
	facturas  map[int64]*models.Factura
	detalles  []models.DetalleFactura
	historial map[int64][]models.FacturaResumen
}

func (f *fakeFacturas) Crear(_ *sql.Tx, factura *models.Factura) error {
	f.siguiente++
	factura.ID = f.siguiente
	if f.facturas == nil {
		f.facturas = map[int64]*models.Factura{}
	}
	copia := *factura
	f.facturas[factura.ID] = &copia
	return nil
}

func (f *fakeFacturas) CrearDetalle(_ *sql.Tx, d *models.DetalleFactura) error {
	d.ID = int64(len(f.detalles) + 1)
	f.detalles = append(f.detalles, *d)
	return nil
}

func (f *fakeFacturas) ListarPorCliente(clienteID int64) ([]models.FacturaResumen, error) {
	return f.historial[clienteID], nil
}

type fakeNotificador struct {
	err      error
	enviados []int64
}

func (f *fakeNotificador) EnviarFactura(factura *models.Factura, _ *models.Cliente, _ []models.ProductoFacturado) error {
	if f.err != nil {
		return f.err
	}
	f.enviados = append(f.enviados, factura.ID)
	return nil
}

type eventoEmitido struct {
	nombre string
	datos  map[string]interface{}
}

type fakeEventos struct {
	emitidos []eventoEmitido
}

func (f *fakeEventos) EnviarEvento(_ context.Context, nombre string, datos map[string]interface{}) {
	f.emitidos = append(f.emitidos, eventoEmitido{nombre: nombre, datos: datos})
}

// fakeDetalles implementa DetalleStore sobre mapas en memoria
type fakeDetalles struct {
	siguiente  int64
	totales    map[int64]decimal.Decimal
	lineas     map[int64]*models.DetalleFactura
	escrituras int
}

func (f *fakeDetalles) Obtener(id int64) (*models.Factura, error) {
	total, ok := f.totales[id]
	if !ok {
		return nil, &models.FacturaNoEncontradaError{FacturaID: id}
	}
	return &models.Factura{ID: id, Total: total}, nil
}

func (f *fakeDetalles) ObtenerDetalle(_ *sql.Tx, id int64) (*models.DetalleFactura, error) {
	if d, ok := f.lineas[id]; ok {
		copia := *d
		return &copia, nil
	}
	return nil, &models.DetalleNoEncontradoError{DetalleID: id}
}

func (f *fakeDetalles) CrearDetalle(_ *sql.Tx, d *models.DetalleFactura) error {
	f.siguiente++
	d.ID = f.siguiente
	copia := *d
	f.lineas[d.ID] = &copia
	return nil
}

func (f *fakeDetalles) ActualizarDetalle(_ *sql.Tx, d *models.DetalleFactura) error {
	if _, ok := f.lineas[d.ID]; !ok {
		return &models.DetalleNoEncontradoError{DetalleID: d.ID}
	}
	copia := *d
	f.lineas[d.ID] = &copia
	return nil
}

func (f *fakeDetalles) EliminarDetalle(_ *sql.Tx, id int64) (int64, error) {
	d, ok := f.lineas[id]
	if !ok {
		return 0, &models.DetalleNoEncontradoError{DetalleID: id}
	}
	delete(f.lineas, id)
	return d.FacturaID, nil
}

func (f *fakeDetalles) SumarSubtotales(_ *sql.Tx, facturaID int64) (decimal.Decimal, error) {
	suma := decimal.Zero
	for _, d := range f.lineas {
		if d.FacturaID == facturaID {
			suma = suma.Add(d.Subtotal)
		}
	}
	return suma, nil
}

func (f *fakeDetalles) ObtenerTotal(_ *sql.Tx, facturaID int64) (decimal.Decimal, error) {
	total, ok := f.totales[facturaID]
	if !ok {
		return decimal.Zero, &models.FacturaNoEncontradaError{FacturaID: facturaID}
	}
	return total, nil
}

func (f *fakeDetalles) ActualizarTotal(_ *sql.Tx, facturaID int64, total decimal.Decimal) error {
	if _, ok := f.totales[facturaID]; !ok {
		return &models.FacturaNoEncontradaError{FacturaID: facturaID}
	}
	f.totales[facturaID] = total
	f.escrituras++
	return nil
}

type fakeCodigos struct {
	siguiente int64
	codigos   map[int64]*models.PasswordResetCode

	// antesDeMarcar permite interponer un consumo concurrente del código
	antesDeMarcar func()
}

func (f *fakeCodigos) EliminarNoUsados(_ *sql.Tx, usuarioID int64) error {
	for id, c := range f.codigos {
		if c.UsuarioID == usuarioID && !c.Used {
			delete(f.codigos, id)
		}
	}
	return nil
}

func (f *fakeCodigos) Crear(_ *sql.Tx, c *models.PasswordResetCode) error {
	f.siguiente++
	c.ID = f.siguiente
	if f.codigos == nil {
		f.codigos = map[int64]*models.PasswordResetCode{}
	}
	copia := *c
	f.codigos[c.ID] = &copia
	return nil
}

func (f *fakeCodigos) ObtenerNoUsado(usuarioID int64, code string) (*models.PasswordResetCode, error) {
	for _, c := range f.codigos {
		if c.UsuarioID == usuarioID && c.Code == code && !c.Used {
			copia := *c
			return &copia, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCodigos) MarcarUsado(_ *sql.Tx, id int64) error {
	if f.antesDeMarcar != nil {
		f.antesDeMarcar()
	}
	c, ok := f.codigos[id]
	if !ok || c.Used {
		return models.ErrCodigoInvalido
	}
	c.Used = true
	return nil
}

type fakeLimitador struct {
	contador int64
	err      error
}

func (f *fakeLimitador) IncrementarConVentana(string, time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.contador++
	return f.contador, nil
}

type fakeNotificadorCodigo struct {
	err     error
	codigos []string
	emails  []string
}

func (f *fakeNotificadorCodigo) EnviarCodigoReset(destinatario, codigo string) error {
	if f.err != nil {
		return f.err
	}
	f.emails = append(f.emails, destinatario)
	f.codigos = append(f.codigos, codigo)
	return nil
}
