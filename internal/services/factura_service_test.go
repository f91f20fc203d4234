package services

import (
	"testing"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/Raraulo/AppMovilBack/internal/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type facturaFixture struct {
	tx       *fakeTxRunner
	detalles *fakeDetalles
	catalogo *fakeCatalogo
	service  *FacturaService
}

func nuevaFacturaFixture(t *testing.T) *facturaFixture {
	t.Helper()

	calc, err := money.NewCalculadora("0.15")
	require.NoError(t, err)

	f := &facturaFixture{
		tx: &fakeTxRunner{},
		detalles: &fakeDetalles{
			totales: map[int64]decimal.Decimal{},
			lineas:  map[int64]*models.DetalleFactura{},
		},
		catalogo: &fakeCatalogo{productos: map[int64]*models.Producto{
			1: {ID: 1, Nombre: "Aqua Marina", Precio: dec(t, "11.50"), Stock: 10},
			2: {ID: 2, Nombre: "Noche Azul", Precio: dec(t, "23.00"), Stock: 5},
		}},
	}
	f.service = NewFacturaService(f.tx, f.detalles, f.catalogo, calc, testLogger())

	return f
}

// conFactura siembra una factura con sus líneas ya valuadas sin IVA
func (f *facturaFixture) conFactura(t *testing.T, id int64, total string, lineas ...models.DetalleFactura) {
	t.Helper()
	f.detalles.totales[id] = dec(t, total)
	for i := range lineas {
		lineas[i].FacturaID = id
		require.NoError(t, f.detalles.CrearDetalle(nil, &lineas[i]))
	}
}

func TestRecalcularTotal_CorrigeTotalDesviado(t *testing.T) {
	f := nuevaFacturaFixture(t)
	f.conFactura(t, 1, "99.99",
		models.DetalleFactura{ProductoID: 1, Cantidad: 3, Subtotal: dec(t, "30.00")},
	)

	total, cambiado, err := f.service.RecalcularTotal(1)
	require.NoError(t, err)

	// 30.00 sin IVA reinflado con 15%
	assert.True(t, cambiado)
	assert.Equal(t, "34.50", total.StringFixed(2))
	assert.Equal(t, "34.50", f.detalles.totales[1].StringFixed(2))
}

func TestRecalcularTotal_Idempotente(t *testing.T) {
	f := nuevaFacturaFixture(t)
	f.conFactura(t, 1, "34.50",
		models.DetalleFactura{ProductoID: 1, Cantidad: 3, Subtotal: dec(t, "30.00")},
	)

	total, cambiado, err := f.service.RecalcularTotal(1)
	require.NoError(t, err)
	assert.False(t, cambiado)
	assert.Equal(t, "34.50", total.StringFixed(2))
	assert.Zero(t, f.detalles.escrituras)
}

func TestRecalcularTotal_FacturaNoExiste(t *testing.T) {
	f := nuevaFacturaFixture(t)

	_, _, err := f.service.RecalcularTotal(42)
	var noEncontrada *models.FacturaNoEncontradaError
	require.ErrorAs(t, err, &noEncontrada)
}

func TestAgregarDetalle_DerivaPrecioDelCatalogo(t *testing.T) {
	f := nuevaFacturaFixture(t)
	f.conFactura(t, 1, "0.00")

	detalle, err := f.service.AgregarDetalle(1, &models.DetalleRequest{ProductoID: 2, Cantidad: 2})
	require.NoError(t, err)

	// 23.00 con IVA: unitario 20.00, subtotal 40.00, total 46.00
	assert.Equal(t, "20.00", detalle.PrecioUnitario.StringFixed(2))
	assert.Equal(t, "40.00", detalle.Subtotal.StringFixed(2))
	assert.Equal(t, "46.00", f.detalles.totales[1].StringFixed(2))
}

func TestAgregarDetalle_NoDescuentaStock(t *testing.T) {
	f := nuevaFacturaFixture(t)
	f.conFactura(t, 1, "0.00")

	_, err := f.service.AgregarDetalle(1, &models.DetalleRequest{ProductoID: 2, Cantidad: 2})
	require.NoError(t, err)

	assert.Equal(t, 5, f.catalogo.productos[2].Stock)
	assert.Empty(t, f.catalogo.descontados)
}

func TestAgregarDetalle_Validaciones(t *testing.T) {
	f := nuevaFacturaFixture(t)
	f.conFactura(t, 1, "0.00")

	_, err := f.service.AgregarDetalle(1, &models.DetalleRequest{Cantidad: 2})
	var faltante *models.CamposFaltantesError
	require.ErrorAs(t, err, &faltante)
	assert.Equal(t, "producto_id", faltante.Campo)

	_, err = f.service.AgregarDetalle(1, &models.DetalleRequest{ProductoID: 2})
	require.ErrorAs(t, err, &faltante)
	assert.Equal(t, "cantidad", faltante.Campo)

	_, err = f.service.AgregarDetalle(9, &models.DetalleRequest{ProductoID: 2, Cantidad: 1})
	var noEncontrada *models.FacturaNoEncontradaError
	require.ErrorAs(t, err, &noEncontrada)
}

func TestActualizarDetalle_RevaluaConPrecioVigente(t *testing.T) {
	f := nuevaFacturaFixture(t)
	f.conFactura(t, 1, "34.50",
		models.DetalleFactura{ProductoID: 1, Cantidad: 3, PrecioUnitario: dec(t, "10.00"), Subtotal: dec(t, "30.00")},
	)

	// el precio del producto subió después de la venta
	f.catalogo.productos[1].Precio = dec(t, "23.00")

	detalle, err := f.service.ActualizarDetalle(1, &models.DetalleRequest{Cantidad: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, detalle.Cantidad)
	assert.Equal(t, "20.00", detalle.PrecioUnitario.StringFixed(2))
	assert.Equal(t, "40.00", detalle.Subtotal.StringFixed(2))
	assert.Equal(t, "46.00", f.detalles.totales[1].StringFixed(2))
}

func TestActualizarDetalle_NoExiste(t *testing.T) {
	f := nuevaFacturaFixture(t)

	_, err := f.service.ActualizarDetalle(42, &models.DetalleRequest{Cantidad: 1})
	var noEncontrado *models.DetalleNoEncontradoError
	require.ErrorAs(t, err, &noEncontrado)
}

func TestEliminarDetalle_RecalculaTotal(t *testing.T) {
	f := nuevaFacturaFixture(t)
	f.conFactura(t, 1, "57.50",
		models.DetalleFactura{ProductoID: 1, Cantidad: 3, Subtotal: dec(t, "30.00")},
		models.DetalleFactura{ProductoID: 2, Cantidad: 1, Subtotal: dec(t, "20.00")},
	)

	total, err := f.service.EliminarDetalle(2)
	require.NoError(t, err)

	assert.Equal(t, "34.50", total.StringFixed(2))
	assert.Equal(t, "34.50", f.detalles.totales[1].StringFixed(2))
}

func TestEliminarDetalle_UltimaLineaDejaTotalCero(t *testing.T) {
	f := nuevaFacturaFixture(t)
	f.conFactura(t, 1, "34.50",
		models.DetalleFactura{ProductoID: 1, Cantidad: 3, Subtotal: dec(t, "30.00")},
	)

	total, err := f.service.EliminarDetalle(1)
	require.NoError(t, err)

	assert.Equal(t, "0.00", total.StringFixed(2))
	assert.Equal(t, "0.00", f.detalles.totales[1].StringFixed(2))
}
