package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Raraulo/AppMovilBack/db"
	"github.com/Raraulo/AppMovilBack/internal/api"
	"github.com/Raraulo/AppMovilBack/internal/config"
	"github.com/Raraulo/AppMovilBack/internal/database"
	"github.com/Raraulo/AppMovilBack/internal/email"
	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/Raraulo/AppMovilBack/internal/money"
	"github.com/Raraulo/AppMovilBack/internal/services"
	"github.com/Raraulo/AppMovilBack/internal/workflows"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Cargar configuración
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Configurar logging
	logger := setupLogger(cfg)
	logger.Info("Starting Perfumeria API...")

	// Configurar modo de Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Conectar a la base de datos
	conn, err := database.Connect(cfg)
	if err != nil {
		logger.Fatalf("Error connecting to database: %v", err)
	}
	defer conn.Close()

	// Aplicar schema embebido (idempotente)
	if err := conn.AplicarSchema(db.Schema); err != nil {
		logger.Fatalf("Error applying database schema: %v", err)
	}

	// Conectar a Redis (opcional: cache de catálogo y rate limiting)
	redis, err := database.ConnectRedis(cfg)
	if err != nil {
		logger.Warnf("Error connecting to Redis: %v", err)
		redis = nil
	} else {
		defer redis.Close()
	}

	// Calculadora de IVA con la tasa configurada
	calculadora, err := money.NewCalculadora(cfg.Impuestos.IVA)
	if err != nil {
		logger.Fatalf("Invalid tax rate %q: %v", cfg.Impuestos.IVA, err)
	}

	// Inicializar servicio de Resend
	var resendService *email.ResendService
	if cfg.Email.ResendAPIKey != "" {
		resendService = email.NewResendService(cfg.Email.ResendAPIKey, cfg.Email.From, logger)
		logger.Info("Resend service initialized successfully")
	} else {
		logger.Warn("Resend API key not provided, email service will not be available")
	}

	// Inicializar repositorios
	usuarioRepo := database.NewUsuarioRepository(conn, logger)
	clienteRepo := database.NewClienteRepository(conn, logger)
	productoRepo := database.NewProductoRepository(conn, logger)
	facturaRepo := database.NewFacturaRepository(conn, logger)
	resetCodeRepo := database.NewResetCodeRepository(conn, logger)
	marcaRepo := database.NewMarcaRepository(conn, logger)
	tipoRepo := database.NewTipoRepository(conn, logger)

	// Inicializar cliente de Inngest y registrar workflows
	inngestClient, err := workflows.NewInngestClient(cfg, logger)
	if err != nil {
		logger.Warnf("Error initializing Inngest client: %v", err)
		inngestClient = nil
	}
	if inngestClient != nil && resendService != nil {
		retryWorkflow := workflows.NewEmailRetryWorkflow(logger, resendService, facturaRepo, clienteRepo)
		if err := retryWorkflow.Registrar(inngestClient); err != nil {
			logger.Warnf("Error registering workflows: %v", err)
		}
	} else {
		logger.Warn("Inngest or email not configured, email retry workflow disabled")
	}

	// Los colaboradores opcionales se pasan como interfaces nil cuando no
	// están configurados
	var notificador services.Notificador
	var notificadorCodigo services.NotificadorCodigo
	if resendService != nil {
		notificador = resendService
		notificadorCodigo = resendService
	}
	var eventos services.EmisorEventos
	if inngestClient != nil {
		eventos = inngestClient
	}
	var cache services.CacheCatalogo
	var limitador services.LimitadorEmision
	if redis != nil {
		cache = redis
		limitador = redis
	}

	// Inicializar servicios
	ventaService := services.NewVentaService(
		conn, usuarioRepo, clienteRepo, productoRepo, facturaRepo,
		notificador, eventos, calculadora, logger,
	)
	facturaService := services.NewFacturaService(conn, facturaRepo, productoRepo, calculadora, logger)
	codigoService := services.NewCodigoService(
		conn, resetCodeRepo, usuarioRepo, limitador, notificadorCodigo,
		cfg.RateLimit.CodigosMax, cfg.RateLimit.CodigosVentana, logger,
	)
	productoService := services.NewProductoService(productoRepo, cache, logger)
	clienteService := services.NewClienteService(clienteRepo, logger)
	usuarioService := services.NewUsuarioService(usuarioRepo, logger)

	// Inicializar API
	apiHandler := api.NewAPI(
		ventaService,
		facturaService,
		codigoService,
		productoService,
		clienteService,
		usuarioService,
		usuarioRepo,
		marcaRepo,
		tipoRepo,
		logger,
	)

	// Configurar router
	router := setupRouter(apiHandler, inngestClient, conn, redis, cfg)

	// Crear servidor HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Canal para señales de terminación
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Iniciar servidor en goroutine
	go func() {
		logger.Infof("Server starting on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	// Esperar señal de terminación
	<-quit
	logger.Info("Shutting down server...")

	// Contexto con timeout para shutdown graceful
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown graceful del servidor
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// setupLogger configura el logger según la configuración
func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	// Configurar nivel de log
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Configurar formato
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// setupRouter configura el router principal
func setupRouter(apiHandler *api.API, inngestClient *workflows.InngestClient, conn *database.DB, redis *database.Redis, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Middleware global
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(apiHandler.RequestIDMiddleware())

	// Middleware de CORS para desarrollo
	if cfg.IsDevelopment() {
		router.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Usuario-ID, X-Request-ID")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}

			c.Next()
		})
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		estado := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "perfumeria-api",
			"version":   "1.0.0",
		}
		if err := conn.HealthCheck(); err != nil {
			estado["status"] = "degraded"
			estado["database"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, estado)
			return
		}
		if redis != nil {
			if err := redis.HealthCheck(); err != nil {
				estado["redis"] = err.Error()
			}
		}
		c.JSON(http.StatusOK, estado)
	})

	// Endpoint de workflows de Inngest
	if inngestClient != nil {
		router.Any("/api/inngest", gin.WrapH(inngestClient.Handler()))
	}

	// Endpoints públicos
	router.POST("/ventas/procesar", apiHandler.ProcesarVenta)
	router.POST("/usuarios", apiHandler.RegistrarUsuario)
	router.GET("/usuarios/:id/facturas", apiHandler.ObtenerFacturasUsuario)
	router.POST("/clientes", apiHandler.RegistrarCliente)
	router.GET("/clientes/:id", apiHandler.ObtenerCliente)
	router.PUT("/clientes/:id", apiHandler.ActualizarCliente)

	router.POST("/favoritos/agregar", apiHandler.AgregarAFavoritos)
	router.POST("/carrito/agregar", apiHandler.AgregarAlCarrito)

	router.POST("/password-reset/request", apiHandler.SolicitarCodigoReset)
	router.POST("/password-reset/verify", apiHandler.VerificarCodigoReset)
	router.POST("/password-reset/confirm", apiHandler.ConfirmarReset)

	router.GET("/productos", apiHandler.ListarProductos)
	router.GET("/productos/:id", apiHandler.ObtenerProducto)
	router.GET("/marcas", apiHandler.ListarMarcas)
	router.GET("/marcas/:id/productos", apiHandler.ListarProductosPorMarca)
	router.GET("/tipos", apiHandler.ListarTipos)

	// Endpoints administrativos
	adminProductos := router.Group("/admin/productos")
	adminProductos.Use(apiHandler.RequireCapacidad(models.CapGestionarProductos))
	{
		adminProductos.POST("", apiHandler.CrearProducto)
		adminProductos.PUT("/:id", apiHandler.ActualizarProducto)
		adminProductos.DELETE("/:id", apiHandler.EliminarProducto)
	}

	adminCatalogo := router.Group("/admin")
	adminCatalogo.Use(apiHandler.RequireCapacidad(models.CapGestionarProductos))
	{
		adminCatalogo.POST("/marcas", apiHandler.CrearMarca)
		adminCatalogo.PUT("/marcas/:id", apiHandler.ActualizarMarca)
		adminCatalogo.DELETE("/marcas/:id", apiHandler.EliminarMarca)
		adminCatalogo.POST("/tipos", apiHandler.CrearTipo)
		adminCatalogo.DELETE("/tipos/:id", apiHandler.EliminarTipo)
	}

	adminFacturas := router.Group("/admin")
	adminFacturas.Use(apiHandler.RequireCapacidad(models.CapGestionarFacturas))
	{
		adminFacturas.GET("/facturas/:id", apiHandler.ObtenerFactura)
		adminFacturas.POST("/facturas/:id/recalcular", apiHandler.RecalcularFactura)
		adminFacturas.POST("/facturas/:id/detalles", apiHandler.AgregarDetalleFactura)
		adminFacturas.PUT("/detalles/:id", apiHandler.ActualizarDetalleFactura)
		adminFacturas.DELETE("/detalles/:id", apiHandler.EliminarDetalleFactura)
	}

	return router
}
