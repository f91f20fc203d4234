package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Raraulo/AppMovilBack/internal/database"
	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/Raraulo/AppMovilBack/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// API maneja todos los endpoints de la API
type API struct {
	ventaService    *services.VentaService
	facturaService  *services.FacturaService
	codigoService   *services.CodigoService
	productoService *services.ProductoService
	clienteService  *services.ClienteService
	usuarioService  *services.UsuarioService
	usuarioRepo     *database.UsuarioRepository
	marcaRepo       *database.MarcaRepository
	tipoRepo        *database.TipoRepository
	logger          *logrus.Logger
}

// NewAPI crea una nueva instancia de la API
func NewAPI(
	ventaService *services.VentaService,
	facturaService *services.FacturaService,
	codigoService *services.CodigoService,
	productoService *services.ProductoService,
	clienteService *services.ClienteService,
	usuarioService *services.UsuarioService,
	usuarioRepo *database.UsuarioRepository,
	marcaRepo *database.MarcaRepository,
	tipoRepo *database.TipoRepository,
	logger *logrus.Logger,
) *API {
	return &API{
		ventaService:    ventaService,
		facturaService:  facturaService,
		codigoService:   codigoService,
		productoService: productoService,
		clienteService:  clienteService,
		usuarioService:  usuarioService,
		usuarioRepo:     usuarioRepo,
		marcaRepo:       marcaRepo,
		tipoRepo:        tipoRepo,
		logger:          logger,
	}
}

// RequestIDMiddleware asigna un ID único a cada request para correlación en logs
func (api *API) RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// RequireCapacidad autoriza el acceso según la tabla rol → capacidades.
// La cuenta llega en el header X-Usuario-ID.
func (api *API) RequireCapacidad(capacidad models.Capacidad) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.GetHeader("X-Usuario-ID")
		if idStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewUnauthorizedError("Cuenta no identificada"))
			return
		}

		usuarioID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewUnauthorizedError("Identificador de cuenta inválido"))
			return
		}

		usuario, err := api.usuarioRepo.ObtenerPorID(usuarioID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewUnauthorizedError("Cuenta no encontrada"))
			return
		}

		if !models.RolPuede(usuario.Rol, capacidad) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				models.NewForbiddenError("La cuenta no tiene permisos para esta operación"))
			return
		}

		c.Next()
	}
}

// ProcesarVenta procesa un checkout completo
func (api *API) ProcesarVenta(c *gin.Context) {
	var req models.VentaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.logger.WithError(err).Error("Error binding sale request")
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	response, err := api.ventaService.ProcesarVenta(c.Request.Context(), &req)
	if err != nil {
		api.responderError(c, err, "Error processing sale")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ObtenerFacturasUsuario obtiene el historial de compras de un usuario
func (api *API) ObtenerFacturasUsuario(c *gin.Context) {
	usuarioID, ok := api.parseIDParam(c, "id")
	if !ok {
		return
	}

	facturas, err := api.ventaService.ObtenerHistorial(usuarioID)
	if err != nil {
		api.responderError(c, err, "Error getting purchase history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"facturas": facturas})
}

// SolicitarCodigoReset emite un código de recuperación de contraseña
func (api *API) SolicitarCodigoReset(c *gin.Context) {
	var req models.SolicitarCodigoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	if err := api.codigoService.Emitir(req.Email); err != nil {
		api.responderError(c, err, "Error issuing reset code")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Código enviado al correo registrado",
	})
}

// VerificarCodigoReset valida un código sin consumirlo
func (api *API) VerificarCodigoReset(c *gin.Context) {
	var req models.VerificarCodigoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	if err := api.codigoService.Verificar(req.Email, req.Codigo); err != nil {
		api.responderError(c, err, "Error verifying reset code")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "valido": true})
}

// ConfirmarReset consume el código y cambia la contraseña
func (api *API) ConfirmarReset(c *gin.Context) {
	var req models.ConfirmarResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	if err := api.codigoService.Confirmar(req.Email, req.Codigo, req.Password); err != nil {
		api.responderError(c, err, "Error confirming password reset")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Contraseña actualizada correctamente",
	})
}

// ListarProductos retorna el catálogo completo
func (api *API) ListarProductos(c *gin.Context) {
	productos, err := api.productoService.Listar()
	if err != nil {
		api.responderError(c, err, "Error listing products")
		return
	}

	c.JSON(http.StatusOK, gin.H{"productos": productos})
}

// ObtenerProducto obtiene un producto por ID
func (api *API) ObtenerProducto(c *gin.Context) {
	id, ok := api.parseIDParam(c, "id")
	if !ok {
		return
	}

	producto, err := api.productoService.Obtener(id)
	if err != nil {
		api.responderError(c, err, "Error getting product")
		return
	}

	c.JSON(http.StatusOK, producto)
}

// ListarProductosPorMarca retorna los productos de una marca
func (api *API) ListarProductosPorMarca(c *gin.Context) {
	marcaID, ok := api.parseIDParam(c, "id")
	if !ok {
		return
	}

	productos, err := api.productoService.ListarPorMarca(marcaID)
	if err != nil {
		api.responderError(c, err, "Error listing products by brand")
		return
	}

	c.JSON(http.StatusOK, gin.H{"productos": productos})
}

// CrearProducto da de alta un producto en el catálogo
func (api *API) CrearProducto(c *gin.Context) {
	var req models.CrearProductoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	producto, err := api.productoService.Crear(&req)
	if err != nil {
		api.responderError(c, err, "Error creating product")
		return
	}

	c.JSON(http.StatusCreated, producto)
}

// ActualizarProducto modifica un producto existente
func (api *API) ActualizarProducto(c *gin.Context) {
	id, ok := api.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.CrearProductoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	producto, err := api.productoService.Actualizar(id, &req)
	if err != nil {
		api.responderError(c, err, "Error updating product")
		return
	}

	c.JSON(http.StatusOK, producto)
}

// EliminarProducto da de baja un producto
func (api *API) EliminarProducto(c *gin.Context) {
	id, ok := api.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := api.productoService.Eliminar(id); err != nil {
		api.responderError(c, err, "Error deleting product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RegistrarCliente registra un perfil de cliente de forma explícita
func (api *API) RegistrarCliente(c *gin.Context) {
	var req models.RegistroClienteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	cliente, err := api.clienteService.Registrar(&req)
	if err != nil {
		api.responderError(c, err, "Error registering client")
		return
	}

	c.JSON(http.StatusCreated, cliente)
}

// RegistrarUsuario da de alta una cuenta de acceso con rol cliente
func (api *API) RegistrarUsuario(c *gin.Context) {
	var req models.RegistroUsuarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	usuario, err := api.usuarioService.Registrar(&req)
	if err != nil {
		api.responderError(c, err, "Error registering user account")
		return
	}

	c.JSON(http.StatusCreated, usuario)
}

// ObtenerCliente devuelve el perfil de un cliente por ID
func (api *API) ObtenerCliente(c *gin.Context) {
	id, ok := api.parseIDParam(c, "id")
	if !ok {
		return
	}

	cliente, err := api.clienteService.Obtener(id)
	if err != nil {
		api.responderError(c, err, "Error getting client")
		return
	}

	c.JSON(http.StatusOK, cliente)
}

// ActualizarCliente aplica una actualización parcial del perfil de un cliente
func (api *API) ActualizarCliente(c *gin.Context) {
	id, ok := api.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.ActualizarClienteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	cliente, err := api.clienteService.Actualizar(id, &req)
	if err != nil {
		api.responderError(c, err, "Error updating client")
		return
	}

	c.JSON(http.StatusOK, cliente)
}

// AgregarAFavoritos acusa recibo del producto marcado como favorito.
// Los favoritos no se persisten todavía; el cliente móvil solo espera
// la confirmación.
func (api *API) AgregarAFavoritos(c *gin.Context) {
	var req models.ProductoRefRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductoID == 0 {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "producto_id", Issue: "es requerido"},
		}))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje": fmt.Sprintf("Producto %d añadido a favoritos", req.ProductoID),
	})
}

// AgregarAlCarrito acusa recibo del producto añadido al carrito. El carrito
// vive en el cliente móvil; la venta recibe las líneas completas.
func (api *API) AgregarAlCarrito(c *gin.Context) {
	var req models.ProductoRefRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductoID == 0 {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "producto_id", Issue: "es requerido"},
		}))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mensaje": fmt.Sprintf("Producto %d añadido al carrito", req.ProductoID),
	})
}

// ListarMarcas retorna todas las casas de perfume
func (api *API) ListarMarcas(c *gin.Context) {
	marcas, err := api.marcaRepo.Listar()
	if err != nil {
		api.responderError(c, err, "Error listing brands")
		return
	}

	c.JSON(http.StatusOK, gin.H{"marcas": marcas})
}

// CrearMarca da de alta una marca
func (api *API) CrearMarca(c *gin.Context) {
	var marca models.Marca
	if err := c.ShouldBindJSON(&marca); err != nil || marca.Nombre == "" {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "nombre", Issue: "es requerido"},
		}))
		return
	}

	marca.ID = 0
	if err := api.marcaRepo.Crear(&marca); err != nil {
		api.responderError(c, err, "Error creating brand")
		return
	}

	c.JSON(http.StatusCreated, marca)
}

// ActualizarMarca modifica una marca existente
func (api *API) ActualizarMarca(c *gin.Context) {
	id, ok := api.parseIDParam(c, "id")
	if !ok {
		return
	}

	var marca models.Marca
	if err := c.ShouldBindJSON(&marca); err != nil || marca.Nombre == "" {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "nombre", Issue: "es requerido"},
		}))
		return
	}

	marca.ID = id
	if err := api.marcaRepo.Actualizar(&marca); err != nil {
		api.responderError(c, err, "Error updating brand")
		return
	}

	c.JSON(http.StatusOK, marca)
}

// EliminarMarca da de baja una marca
func (api *API) EliminarMarca(c *gin.Context) {
	id, ok := api.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := api.marcaRepo.Eliminar(id); err != nil {
		api.responderError(c, err, "Error deleting brand")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListarTipos retorna todos los tipos de producto
func (api *API) ListarTipos(c *gin.Context) {
	tipos, err := api.tipoRepo.Listar()
	if err != nil {
		api.responderError(c, err, "Error listing product types")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tipos": tipos})
}

// CrearTipo da de alta un tipo de producto
func (api *API) CrearTipo(c *gin.Context) {
	var tipo models.Tipo
	if err := c.ShouldBindJSON(&tipo); err != nil || tipo.Nombre == "" {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "nombre", Issue: "es requerido"},
		}))
		return
	}

	tipo.ID = 0
	if err := api.tipoRepo.Crear(&tipo); err != nil {
		api.responderError(c, err, "Error creating product type")
		return
	}

	c.JSON(http.StatusCreated, tipo)
}

// EliminarTipo da de baja un tipo de producto
func (api *API) EliminarTipo(c *gin.Context) {
	id, ok := api.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := api.tipoRepo.Eliminar(id); err != nil {
		api.responderError(c, err, "Error deleting product type")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ObtenerFactura obtiene una factura por ID
func (api *API) ObtenerFactura(c *gin.Context) {
	id, ok := api.parseIDParam(c, "id")
	if !ok {
		return
	}

	factura, err := api.facturaService.Obtener(id)
	if err != nil {
		api.responderError(c, err, "Error getting invoice")
		return
	}

	c.JSON(http.StatusOK, factura)
}

// RecalcularFactura recalcula el total de una factura desde sus líneas
func (api *API) RecalcularFactura(c *gin.Context) {
	id, ok := api.parseIDParam(c, "id")
	if !ok {
		return
	}

	total, cambiado, err := api.facturaService.RecalcularTotal(id)
	if err != nil {
		api.responderError(c, err, "Error recalculating invoice")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"factura_id": id,
		"total":      total,
		"cambiado":   cambiado,
	})
}

// AgregarDetalleFactura agrega una línea a una factura existente
func (api *API) AgregarDetalleFactura(c *gin.Context) {
	facturaID, ok := api.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.DetalleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	detalle, err := api.facturaService.AgregarDetalle(facturaID, &req)
	if err != nil {
		api.responderError(c, err, "Error adding invoice line")
		return
	}

	c.JSON(http.StatusCreated, detalle)
}

// ActualizarDetalleFactura cambia la cantidad de una línea de factura
func (api *API) ActualizarDetalleFactura(c *gin.Context) {
	detalleID, ok := api.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.DetalleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de solicitud inválido", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	detalle, err := api.facturaService.ActualizarDetalle(detalleID, &req)
	if err != nil {
		api.responderError(c, err, "Error updating invoice line")
		return
	}

	c.JSON(http.StatusOK, detalle)
}

// EliminarDetalleFactura elimina una línea de factura
func (api *API) EliminarDetalleFactura(c *gin.Context) {
	detalleID, ok := api.parseIDParam(c, "id")
	if !ok {
		return
	}

	total, err := api.facturaService.EliminarDetalle(detalleID)
	if err != nil {
		api.responderError(c, err, "Error deleting invoice line")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "total": total})
}

// parseIDParam parsea un parámetro de ruta numérico; responde 400 si es inválido
func (api *API) parseIDParam(c *gin.Context, nombre string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(nombre), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Identificador inválido", []models.ErrorDetail{
			{Field: nombre, Issue: "Debe ser un entero positivo"},
		}))
		return 0, false
	}
	return id, true
}

// responderError mapea los errores de dominio a la taxonomía HTTP
func (api *API) responderError(c *gin.Context, err error, logMsg string) {
	var (
		faltante   *models.CamposFaltantesError
		stock      *models.StockInsuficienteError
		usuarioNF  *models.UsuarioNoEncontradoError
		productoNF *models.ProductoNoEncontradoError
		clienteNF  *models.ClienteNoEncontradoError
		facturaNF  *models.FacturaNoEncontradaError
		detalleNF  *models.DetalleNoEncontradoError
		marcaNF    *models.MarcaNoEncontradaError
		tipoNF     *models.TipoNoEncontradoError
		conflicto  *models.ConflictoClienteError
	)

	switch {
	case errors.As(err, &faltante):
		c.JSON(http.StatusBadRequest, models.NewValidationError(faltante.Error(), []models.ErrorDetail{
			{Field: faltante.Campo, Issue: "es requerido o inválido"},
		}))
	case errors.As(err, &stock):
		c.JSON(http.StatusBadRequest, models.NewValidationError(stock.Error(), []models.ErrorDetail{
			{Field: "productos", Issue: stock.Error()},
		}))
	case errors.As(err, &usuarioNF):
		c.JSON(http.StatusNotFound, models.NewNotFoundError(usuarioNF.Error()))
	case errors.As(err, &productoNF):
		c.JSON(http.StatusNotFound, models.NewNotFoundError(productoNF.Error()))
	case errors.As(err, &clienteNF):
		c.JSON(http.StatusNotFound, models.NewNotFoundError(clienteNF.Error()))
	case errors.As(err, &facturaNF):
		c.JSON(http.StatusNotFound, models.NewNotFoundError(facturaNF.Error()))
	case errors.As(err, &detalleNF):
		c.JSON(http.StatusNotFound, models.NewNotFoundError(detalleNF.Error()))
	case errors.As(err, &marcaNF):
		c.JSON(http.StatusNotFound, models.NewNotFoundError(marcaNF.Error()))
	case errors.As(err, &tipoNF):
		c.JSON(http.StatusNotFound, models.NewNotFoundError(tipoNF.Error()))
	case errors.As(err, &conflicto):
		c.JSON(http.StatusConflict, models.NewConflictError(conflicto.Error()))
	case errors.Is(err, models.ErrCodigoInvalido), errors.Is(err, models.ErrCodigoExpirado),
		errors.Is(err, models.ErrPasswordDebil):
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrorCodeInvalidRequest, err.Error()))
	case errors.Is(err, models.ErrLimiteExcedido):
		c.JSON(http.StatusTooManyRequests, models.NewRateLimitedError(err.Error()))
	default:
		api.logger.WithError(err).Error(logMsg)
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error interno del servidor"))
	}
}
