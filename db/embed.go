// Package db expone el schema SQL embebido de la aplicación.
package db

import _ "embed"

// Schema contiene el DDL de todas las tablas de la aplicación.
//
//go:embed schema.sql
var Schema string
