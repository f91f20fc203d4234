// Package money implementa la aritmética monetaria de la perfumería.
// Todos los cálculos usan decimales exactos; los valores almacenados se
// redondean a 2 decimales con redondeo bancario (half-even), igual que el
// sistema de facturación original.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TasaIVAPorDefecto es la tasa de IVA vigente (15%)
const TasaIVAPorDefecto = "0.15"

// Calculadora convierte precios entre su forma con IVA y sin IVA.
// La tasa se fija una sola vez al arrancar el proceso.
type Calculadora struct {
	tasa   decimal.Decimal
	factor decimal.Decimal // 1 + tasa
}

// NewCalculadora crea una calculadora con la tasa indicada, expresada
// como fracción decimal ("0.15" para 15%).
func NewCalculadora(tasa string) (Calculadora, error) {
	t, err := decimal.NewFromString(tasa)
	if err != nil {
		return Calculadora{}, fmt.Errorf("tasa de IVA inválida %q: %w", tasa, err)
	}
	if t.IsNegative() {
		return Calculadora{}, fmt.Errorf("tasa de IVA inválida %q: debe ser no negativa", tasa)
	}
	return Calculadora{
		tasa:   t,
		factor: decimal.NewFromInt(1).Add(t),
	}, nil
}

// Tasa retorna la tasa configurada
func (c Calculadora) Tasa() decimal.Decimal {
	return c.tasa
}

// SinIVA convierte un precio con IVA a su base sin IVA, redondeada a 2 decimales
func (c Calculadora) SinIVA(precioConIVA decimal.Decimal) decimal.Decimal {
	return Redondear(precioConIVA.Div(c.factor))
}

// ConIVA convierte un precio sin IVA a su forma con IVA, redondeada a 2 decimales
func (c Calculadora) ConIVA(precioSinIVA decimal.Decimal) decimal.Decimal {
	return Redondear(precioSinIVA.Mul(c.factor))
}

// IVA retorna la porción de impuesto de un precio sin IVA, redondeada a 2 decimales
func (c Calculadora) IVA(precioSinIVA decimal.Decimal) decimal.Decimal {
	return Redondear(precioSinIVA.Mul(c.tasa))
}

// Redondear aplica el redondeo de 2 decimales usado en todo valor almacenado
func Redondear(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}
