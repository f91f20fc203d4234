package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nuevaCalculadora(t *testing.T) Calculadora {
	t.Helper()
	calc, err := NewCalculadora(TasaIVAPorDefecto)
	require.NoError(t, err)
	return calc
}

func TestNewCalculadora_TasaInvalida(t *testing.T) {
	_, err := NewCalculadora("quince")
	require.Error(t, err)

	_, err = NewCalculadora("-0.15")
	require.Error(t, err)
}

func TestSinIVA(t *testing.T) {
	calc := nuevaCalculadora(t)

	casos := []struct {
		conIVA   string
		esperado string
	}{
		{"11.50", "10.00"},
		{"115.00", "100.00"},
		{"1.15", "1.00"},
		{"0.00", "0.00"},
		{"99.99", "86.95"},  // 86.9478... redondea hacia abajo
		{"10.00", "8.70"},   // 8.6956... redondea hacia arriba
	}

	for _, c := range casos {
		got := calc.SinIVA(decimal.RequireFromString(c.conIVA))
		assert.True(t, got.Equal(decimal.RequireFromString(c.esperado)),
			"SinIVA(%s) = %s, esperado %s", c.conIVA, got, c.esperado)
	}
}

func TestConIVA(t *testing.T) {
	calc := nuevaCalculadora(t)

	casos := []struct {
		sinIVA   string
		esperado string
	}{
		{"10.00", "11.50"},
		{"100.00", "115.00"},
		{"30.00", "34.50"},
		{"0.00", "0.00"},
	}

	for _, c := range casos {
		got := calc.ConIVA(decimal.RequireFromString(c.sinIVA))
		assert.True(t, got.Equal(decimal.RequireFromString(c.esperado)),
			"ConIVA(%s) = %s, esperado %s", c.sinIVA, got, c.esperado)
	}
}

func TestIVA(t *testing.T) {
	calc := nuevaCalculadora(t)

	got := calc.IVA(decimal.RequireFromString("100.00"))
	assert.True(t, got.Equal(decimal.RequireFromString("15.00")))

	got = calc.IVA(decimal.RequireFromString("10.00"))
	assert.True(t, got.Equal(decimal.RequireFromString("1.50")))
}

// El redondeo almacenado es bancario: medio centavo va al dígito par.
func TestRedondear_HalfEven(t *testing.T) {
	casos := []struct {
		entrada  string
		esperado string
	}{
		{"2.125", "2.12"},
		{"2.135", "2.14"},
		{"2.145", "2.14"},
		{"-2.125", "-2.12"},
		{"2.124999", "2.12"},
	}

	for _, c := range casos {
		got := Redondear(decimal.RequireFromString(c.entrada))
		assert.True(t, got.Equal(decimal.RequireFromString(c.esperado)),
			"Redondear(%s) = %s, esperado %s", c.entrada, got, c.esperado)
	}
}

// ConIVA(SinIVA(x)) debe quedar a menos de 0.01 de x para todo precio positivo.
func TestIdaYVuelta(t *testing.T) {
	calc := nuevaCalculadora(t)
	tolerancia := decimal.RequireFromString("0.01")

	precios := []string{
		"0.01", "0.99", "1.15", "5.75", "11.50", "23.00", "34.49",
		"99.99", "100.00", "123.45", "999.99", "12345.67",
	}

	for _, p := range precios {
		original := decimal.RequireFromString(p)
		vuelta := calc.ConIVA(calc.SinIVA(original))
		diff := vuelta.Sub(original).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerancia),
			"ida y vuelta de %s dio %s (diferencia %s)", p, vuelta, diff)
	}
}
