package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Genero representa el público objetivo de un perfume
type Genero string

const (
	GeneroMasculino Genero = "Masculino"
	GeneroFemenino  Genero = "Femenino"
	GeneroUnisex    Genero = "Unisex"
)

// Marca representa una casa de perfumes
type Marca struct {
	ID          int64  `json:"id" db:"id"`
	Nombre      string `json:"nombre" db:"nombre"`
	Logo        string `json:"logo" db:"logo"`
	Descripcion string `json:"descripcion" db:"descripcion"`
}

// Tipo representa la categoría de un producto (eau de parfum, colonia, etc.)
type Tipo struct {
	ID          int64  `json:"id" db:"id"`
	Nombre      string `json:"nombre" db:"nombre"`
	Descripcion string `json:"descripcion" db:"descripcion"`
}

// Producto representa un perfume del catálogo.
// El precio almacenado incluye IVA; el stock nunca es negativo.
type Producto struct {
	ID          int64           `json:"id" db:"id"`
	Nombre      string          `json:"nombre" db:"nombre"`
	MarcaID     int64           `json:"marca_id" db:"marca_id"`
	TipoID      int64           `json:"tipo_id" db:"tipo_id"`
	Descripcion string          `json:"descripcion" db:"descripcion"`
	Precio      decimal.Decimal `json:"precio" db:"precio"`
	URLImagen   string          `json:"url_imagen" db:"url_imagen"`
	Stock       int             `json:"stock" db:"stock"`
	Genero      Genero          `json:"genero" db:"genero"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`

	// Nombres resueltos por JOIN, no columnas propias
	Marca string `json:"marca,omitempty" db:"-"`
	Tipo  string `json:"tipo,omitempty" db:"-"`
}

// CrearProductoRequest representa la solicitud de alta de producto
type CrearProductoRequest struct {
	Nombre      string          `json:"nombre"`
	MarcaID     int64           `json:"marca_id"`
	TipoID      int64           `json:"tipo_id"`
	Descripcion string          `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio"`
	URLImagen   string          `json:"url_imagen"`
	Stock       int             `json:"stock"`
	Genero      Genero          `json:"genero"`
}

// ProductoRefRequest referencia un producto por ID (favoritos, carrito)
type ProductoRefRequest struct {
	ProductoID int64 `json:"producto_id"`
}
