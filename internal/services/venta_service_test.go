package services

import (
	"context"
	"testing"
	"time"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/Raraulo/AppMovilBack/internal/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

type ventaFixture struct {
	tx          *fakeTxRunner
	usuarios    *fakeUsuarios
	clientes    *fakeClientes
	catalogo    *fakeCatalogo
	facturas    *fakeFacturas
	notificador *fakeNotificador
	eventos     *fakeEventos
	service     *VentaService
}

func nuevaVentaFixture(t *testing.T) *ventaFixture {
	t.Helper()

	calc, err := money.NewCalculadora("0.15")
	require.NoError(t, err)

	f := &ventaFixture{
		tx: &fakeTxRunner{},
		usuarios: &fakeUsuarios{usuarios: map[int64]*models.Usuario{
			7: {ID: 7, Email: "ana@example.com", Rol: models.RolCliente},
		}},
		clientes: &fakeClientes{},
		catalogo: &fakeCatalogo{productos: map[int64]*models.Producto{
			1: {ID: 1, Nombre: "Aqua Marina", Precio: dec(t, "11.50"), Stock: 10},
			2: {ID: 2, Nombre: "Noche Azul", Precio: dec(t, "99.99"), Stock: 5},
			5: {ID: 5, Nombre: "Brisa", Precio: dec(t, "30.00"), Stock: 3},
		}},
		facturas:    &fakeFacturas{},
		notificador: &fakeNotificador{},
		eventos:     &fakeEventos{},
	}

	f.service = NewVentaService(
		f.tx, f.usuarios, f.clientes, f.catalogo, f.facturas,
		f.notificador, f.eventos, calc, testLogger(),
	)
	f.service.ahora = func() time.Time {
		return time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	}

	return f
}

func TestProcesarVenta_CalculaMontos(t *testing.T) {
	f := nuevaVentaFixture(t)

	resp, err := f.service.ProcesarVenta(context.Background(), &models.VentaRequest{
		UsuarioID: 7,
		Productos: []models.LineaCarrito{{ID: 1, Cantidad: 3}},
	})
	require.NoError(t, err)

	// precio 11.50 con IVA: total 34.50, línea 10.00 / 30.00 sin IVA
	assert.True(t, resp.Success)
	assert.Equal(t, "34.50", resp.Total.StringFixed(2))
	assert.Equal(t, "ORD-000001", resp.NumeroOrden)
	assert.Equal(t, models.MetodoPagoEfectivo, resp.MetodoPago)

	require.Len(t, f.facturas.detalles, 1)
	detalle := f.facturas.detalles[0]
	assert.Equal(t, "10.00", detalle.PrecioUnitario.StringFixed(2))
	assert.Equal(t, "30.00", detalle.Subtotal.StringFixed(2))
	assert.Equal(t, 3, detalle.Cantidad)

	assert.Equal(t, 7, f.catalogo.productos[1].Stock)
	assert.Equal(t, 1, f.tx.commits)
}

func TestProcesarVenta_BloqueaEnOrdenAscendente(t *testing.T) {
	f := nuevaVentaFixture(t)

	_, err := f.service.ProcesarVenta(context.Background(), &models.VentaRequest{
		UsuarioID: 7,
		Productos: []models.LineaCarrito{
			{ID: 5, Cantidad: 1},
			{ID: 1, Cantidad: 1},
			{ID: 2, Cantidad: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 5}, f.catalogo.bloqueados)
}

func TestProcesarVenta_StockInsuficiente(t *testing.T) {
	f := nuevaVentaFixture(t)

	_, err := f.service.ProcesarVenta(context.Background(), &models.VentaRequest{
		UsuarioID: 7,
		Productos: []models.LineaCarrito{{ID: 5, Cantidad: 4}},
	})

	var stockErr *models.StockInsuficienteError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Brisa", stockErr.Producto)
	assert.Equal(t, 3, stockErr.Disponible)
	assert.Equal(t, 4, stockErr.Solicitado)

	assert.Empty(t, f.facturas.facturas)
	assert.Equal(t, 3, f.catalogo.productos[5].Stock)
	assert.Equal(t, 1, f.tx.rollbacks)
	assert.Empty(t, f.notificador.enviados)
	assert.Empty(t, f.eventos.emitidos)
}

func TestProcesarVenta_CantidadPorDefecto(t *testing.T) {
	f := nuevaVentaFixture(t)

	resp, err := f.service.ProcesarVenta(context.Background(), &models.VentaRequest{
		UsuarioID: 7,
		Productos: []models.LineaCarrito{{ID: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, "11.50", resp.Total.StringFixed(2))
	assert.Equal(t, 9, f.catalogo.productos[1].Stock)
}

func TestProcesarVenta_Validaciones(t *testing.T) {
	f := nuevaVentaFixture(t)
	ctx := context.Background()

	casos := []struct {
		nombre string
		req    *models.VentaRequest
		campo  string
	}{
		{"sin usuario", &models.VentaRequest{Productos: []models.LineaCarrito{{ID: 1}}}, "usuario_id"},
		{"sin productos", &models.VentaRequest{UsuarioID: 7}, "productos"},
		{"producto sin id", &models.VentaRequest{UsuarioID: 7, Productos: []models.LineaCarrito{{Cantidad: 1}}}, "productos.id"},
		{"cantidad negativa", &models.VentaRequest{UsuarioID: 7, Productos: []models.LineaCarrito{{ID: 1, Cantidad: -2}}}, "productos.cantidad"},
		{"metodo invalido", &models.VentaRequest{UsuarioID: 7, MetodoPago: "cheque", Productos: []models.LineaCarrito{{ID: 1}}}, "metodo_pago"},
	}

	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			_, err := f.service.ProcesarVenta(ctx, tc.req)
			var faltante *models.CamposFaltantesError
			require.ErrorAs(t, err, &faltante)
			assert.Equal(t, tc.campo, faltante.Campo)
		})
	}

	assert.Empty(t, f.facturas.facturas)
}

func TestProcesarVenta_UsuarioNoExiste(t *testing.T) {
	f := nuevaVentaFixture(t)

	_, err := f.service.ProcesarVenta(context.Background(), &models.VentaRequest{
		UsuarioID: 999,
		Productos: []models.LineaCarrito{{ID: 1}},
	})

	var noEncontrado *models.UsuarioNoEncontradoError
	require.ErrorAs(t, err, &noEncontrado)
	assert.Equal(t, int64(999), noEncontrado.UsuarioID)
}

func TestProcesarVenta_DefaultsDePerfil(t *testing.T) {
	f := nuevaVentaFixture(t)

	_, err := f.service.ProcesarVenta(context.Background(), &models.VentaRequest{
		UsuarioID: 7,
		Productos: []models.LineaCarrito{{ID: 1, Cantidad: 1}},
	})
	require.NoError(t, err)

	perfil := f.clientes.recibido
	require.NotNil(t, perfil)
	assert.Equal(t, "Cliente", perfil.Nombre)
	assert.Equal(t, "ana", perfil.Apellido)
	assert.Equal(t, "0000000007", perfil.Cedula)
	assert.Equal(t, "ana@example.com", perfil.Email)
	assert.Equal(t, "Hombre", perfil.Sexo)
	assert.NotEmpty(t, perfil.PasswordHash)
}

func TestProcesarVenta_DatosExplicitosDelCliente(t *testing.T) {
	f := nuevaVentaFixture(t)

	_, err := f.service.ProcesarVenta(context.Background(), &models.VentaRequest{
		UsuarioID: 7,
		Productos: []models.LineaCarrito{{ID: 1, Cantidad: 1}},
		Cliente: models.DatosCliente{
			Nombre:   "Ana",
			Apellido: "Suárez",
			Cedula:   "1712345678",
			Sexo:     "Mujer",
		},
	})
	require.NoError(t, err)

	perfil := f.clientes.recibido
	assert.Equal(t, "Ana", perfil.Nombre)
	assert.Equal(t, "Suárez", perfil.Apellido)
	assert.Equal(t, "1712345678", perfil.Cedula)
	assert.Equal(t, "Mujer", perfil.Sexo)
}

func TestProcesarVenta_EmailFallidoNoRevierte(t *testing.T) {
	f := nuevaVentaFixture(t)
	f.notificador.err = assert.AnError

	resp, err := f.service.ProcesarVenta(context.Background(), &models.VentaRequest{
		UsuarioID: 7,
		Productos: []models.LineaCarrito{{ID: 1, Cantidad: 2}},
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.False(t, resp.EmailEnviado)
	assert.Len(t, f.facturas.facturas, 1)

	// se emite el evento de reintento además del de venta procesada
	require.Len(t, f.eventos.emitidos, 2)
	assert.Equal(t, "factura/email.fallido", f.eventos.emitidos[0].nombre)
	assert.Equal(t, "venta/procesada", f.eventos.emitidos[1].nombre)
}

func TestProcesarVenta_EmailExitoso(t *testing.T) {
	f := nuevaVentaFixture(t)

	resp, err := f.service.ProcesarVenta(context.Background(), &models.VentaRequest{
		UsuarioID: 7,
		Productos: []models.LineaCarrito{{ID: 1, Cantidad: 1}},
	})
	require.NoError(t, err)

	assert.True(t, resp.EmailEnviado)
	assert.Equal(t, []int64{1}, f.notificador.enviados)
	require.Len(t, f.eventos.emitidos, 1)
	assert.Equal(t, "venta/procesada", f.eventos.emitidos[0].nombre)
}

func TestProcesarVenta_LineasDuplicadasDelMismoProducto(t *testing.T) {
	f := nuevaVentaFixture(t)

	// dos líneas del producto 5 (stock 3) por 2 unidades cada una: la
	// segunda línea no puede descontarse y la venta entera se revierte
	_, err := f.service.ProcesarVenta(context.Background(), &models.VentaRequest{
		UsuarioID: 7,
		Productos: []models.LineaCarrito{
			{ID: 5, Cantidad: 2},
			{ID: 5, Cantidad: 2},
		},
	})

	var stockErr *models.StockInsuficienteError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, f.tx.rollbacks)

	// el error reporta el producto y el stock que quedaba tras la primera línea
	assert.Equal(t, int64(5), stockErr.ProductoID)
	assert.Equal(t, "Brisa", stockErr.Producto)
	assert.Equal(t, 1, stockErr.Disponible)
	assert.Equal(t, 2, stockErr.Solicitado)
}

func TestObtenerHistorial_SinPerfil(t *testing.T) {
	f := nuevaVentaFixture(t)

	resumenes, err := f.service.ObtenerHistorial(7)
	require.NoError(t, err)
	assert.Empty(t, resumenes)
	assert.NotNil(t, resumenes)
}

func TestObtenerHistorial_ConFacturas(t *testing.T) {
	f := nuevaVentaFixture(t)
	f.clientes.porEmail = map[string]*models.Cliente{
		"ana@example.com": {
			ID: 3, Nombre: "Ana", Apellido: "Suárez",
			Email: "ana@example.com", Cedula: "1712345678",
		},
	}
	f.facturas.historial = map[int64][]models.FacturaResumen{
		3: {
			{ID: 2, NumeroOrden: "ORD-000002", Total: dec(t, "34.50")},
			{ID: 1, NumeroOrden: "ORD-000001", Total: dec(t, "99.99")},
		},
	}

	resumenes, err := f.service.ObtenerHistorial(7)
	require.NoError(t, err)
	require.Len(t, resumenes, 2)
	assert.Equal(t, "Ana", resumenes[0].Cliente.Nombre)
	assert.Equal(t, "ORD-000002", resumenes[0].NumeroOrden)
}
