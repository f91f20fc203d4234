package models

// Capacidad representa un permiso concreto del sistema
type Capacidad string

const (
	CapGestionarProductos Capacidad = "gestionar_productos"
	CapGestionarClientes  Capacidad = "gestionar_clientes"
	CapGestionarFacturas  Capacidad = "gestionar_facturas"
	CapGestionarUsuarios  Capacidad = "gestionar_usuarios"
	CapVerProductos       Capacidad = "ver_productos"
	CapRealizarCompras    Capacidad = "realizar_compras"
)

// capacidadesPorRol es la tabla estática rol → permisos
var capacidadesPorRol = map[Rol]map[Capacidad]bool{
	RolAdmin: {
		CapGestionarProductos: true,
		CapGestionarClientes:  true,
		CapGestionarFacturas:  true,
		CapGestionarUsuarios:  true,
	},
	RolEmpleado: {
		CapGestionarProductos: true,
		CapGestionarClientes:  true,
		CapGestionarFacturas:  true,
	},
	RolCliente: {
		CapVerProductos:    true,
		CapRealizarCompras: true,
	},
}

// RolPuede indica si el rol tiene la capacidad indicada
func RolPuede(rol Rol, cap Capacidad) bool {
	return capacidadesPorRol[rol][cap]
}
