package services

import (
	"fmt"
	"strings"
)

// parteLocal extrae la parte local de una dirección de email
func parteLocal(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

// cedulaPorDefecto genera la cédula sintética de los perfiles creados sin
// cédula real: el ID de la cuenta con padding a 10 dígitos
func cedulaPorDefecto(usuarioID int64) string {
	return fmt.Sprintf("%010d", usuarioID)
}
