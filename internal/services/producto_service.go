package services

import (
	"encoding/json"
	"time"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/sirupsen/logrus"
)

// cacheCatalogoKey es la clave del listado completo en Redis
const cacheCatalogoKey = "catalogo:productos"

// cacheCatalogoTTL acota cuánto puede vivir un listado desactualizado si
// una invalidación se pierde
const cacheCatalogoTTL = 5 * time.Minute

// ProductoStore expone las operaciones de catálogo fuera del checkout
type ProductoStore interface {
	Crear(req *models.CrearProductoRequest) (*models.Producto, error)
	ObtenerPorID(id int64) (*models.Producto, error)
	Listar() ([]models.Producto, error)
	ListarPorMarca(marcaID int64) ([]models.Producto, error)
	Actualizar(id int64, req *models.CrearProductoRequest) (*models.Producto, error)
	Eliminar(id int64) error
}

// CacheCatalogo es la porción del cliente de Redis que usa el catálogo
type CacheCatalogo interface {
	Get(key string) (string, error)
	SetWithTTL(key string, value interface{}, ttl time.Duration) error
	Delete(key string) error
}

// ProductoService implementa el catálogo público y su administración.
// El listado completo se cachea en Redis; toda escritura administrativa
// invalida el cache.
type ProductoService struct {
	productos ProductoStore
	cache     CacheCatalogo
	logger    *logrus.Logger
}

// NewProductoService crea una nueva instancia del servicio.
// cache puede ser nil cuando Redis no está configurado.
func NewProductoService(productos ProductoStore, cache CacheCatalogo, logger *logrus.Logger) *ProductoService {
	return &ProductoService{
		productos: productos,
		cache:     cache,
		logger:    logger,
	}
}

// Listar retorna el catálogo completo, sirviendo desde cache cuando está
// vigente. Un error de Redis degrada a consultar la base directamente.
func (s *ProductoService) Listar() ([]models.Producto, error) {
	if s.cache != nil {
		if cacheado, err := s.cache.Get(cacheCatalogoKey); err == nil {
			var productos []models.Producto
			if err := json.Unmarshal([]byte(cacheado), &productos); err == nil {
				return productos, nil
			}
			// cache corrupto: se descarta y se repuebla
			_ = s.cache.Delete(cacheCatalogoKey)
		}
	}

	productos, err := s.productos.Listar()
	if err != nil {
		return nil, err
	}
	if productos == nil {
		productos = []models.Producto{}
	}

	if s.cache != nil {
		if datos, err := json.Marshal(productos); err == nil {
			if err := s.cache.SetWithTTL(cacheCatalogoKey, datos, cacheCatalogoTTL); err != nil {
				s.logger.WithError(err).Warn("Error caching product list")
			}
		}
	}

	return productos, nil
}

// ListarPorMarca retorna los productos de una marca, sin cache
func (s *ProductoService) ListarPorMarca(marcaID int64) ([]models.Producto, error) {
	productos, err := s.productos.ListarPorMarca(marcaID)
	if err != nil {
		return nil, err
	}
	if productos == nil {
		productos = []models.Producto{}
	}
	return productos, nil
}

// Obtener obtiene un producto por ID
func (s *ProductoService) Obtener(id int64) (*models.Producto, error) {
	return s.productos.ObtenerPorID(id)
}

// Crear da de alta un producto y descarta el cache del listado
func (s *ProductoService) Crear(req *models.CrearProductoRequest) (*models.Producto, error) {
	if err := validarProducto(req); err != nil {
		return nil, err
	}

	producto, err := s.productos.Crear(req)
	if err != nil {
		return nil, err
	}

	s.invalidarCache()
	return producto, nil
}

// Actualizar modifica un producto y descarta el cache del listado
func (s *ProductoService) Actualizar(id int64, req *models.CrearProductoRequest) (*models.Producto, error) {
	if err := validarProducto(req); err != nil {
		return nil, err
	}

	producto, err := s.productos.Actualizar(id, req)
	if err != nil {
		return nil, err
	}

	s.invalidarCache()
	return producto, nil
}

// Eliminar da de baja un producto y descarta el cache del listado
func (s *ProductoService) Eliminar(id int64) error {
	if err := s.productos.Eliminar(id); err != nil {
		return err
	}

	s.invalidarCache()
	return nil
}

func (s *ProductoService) invalidarCache() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(cacheCatalogoKey); err != nil {
		s.logger.WithError(err).Warn("Error invalidating product cache")
	}
}

func validarProducto(req *models.CrearProductoRequest) error {
	if req.Nombre == "" {
		return &models.CamposFaltantesError{Campo: "nombre"}
	}
	if req.MarcaID == 0 {
		return &models.CamposFaltantesError{Campo: "marca_id"}
	}
	if req.TipoID == 0 {
		return &models.CamposFaltantesError{Campo: "tipo_id"}
	}
	if req.Precio.IsNegative() || req.Precio.IsZero() {
		return &models.CamposFaltantesError{Campo: "precio"}
	}
	if req.Stock < 0 {
		return &models.CamposFaltantesError{Campo: "stock"}
	}
	return nil
}
