// Package catalog arma la vista de productos y servicios que consume el POS y
// construye carritos del lado del servidor a partir de una petición.
package catalog

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/inventory"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
	domsales "github.com/jhoicas/ventas-pos/internal/domain/sales"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

// CatalogUseCase lecturas del catálogo.
type CatalogUseCase struct {
	productRepo repository.ProductRepository
	serviceRepo repository.ServiceRepository
	cache       CatalogCache
	ttl         time.Duration
	lowStock    int
	log         *logger.Logger
}

// NewCatalogUseCase construye el caso de uso. cache nil equivale a NoopCache.
func NewCatalogUseCase(
	productRepo repository.ProductRepository,
	serviceRepo repository.ServiceRepository,
	cache CatalogCache,
	ttl time.Duration,
	lowStockThreshold int,
	log *logger.Logger,
) *CatalogUseCase {
	if cache == nil {
		cache = NoopCache{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogUseCase{
		productRepo: productRepo,
		serviceRepo: serviceRepo,
		cache:       cache,
		ttl:         ttl,
		lowStock:    lowStockThreshold,
		log:         log.Named("catalog"),
	}
}

// Snapshot productos y servicios activos. Puede venir de caché: el stock mostrado es
// informativo y el commit siempre lo revalida. Un fallo de caché no falla la lectura.
func (uc *CatalogUseCase) Snapshot(ctx context.Context) (*dto.CatalogResponse, error) {
	if cached, ok, err := uc.cache.Get(ctx, SnapshotCacheKey); err != nil {
		uc.log.Warn().Err(err).Msg("caché de catálogo no disponible")
	} else if ok {
		return cached, nil
	}

	products, err := uc.productRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	services, err := uc.serviceRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.CatalogResponse{
		Products:    make([]dto.CatalogItemResponse, 0, len(products)),
		Services:    make([]dto.CatalogItemResponse, 0, len(services)),
		GeneratedAt: time.Now().UTC(),
	}
	for _, p := range products {
		out.Products = append(out.Products, uc.toItemResponse(entity.ProductItem(p)))
	}
	for _, s := range services {
		out.Services = append(out.Services, uc.toItemResponse(entity.ServiceItem(s)))
	}

	if uc.ttl > 0 {
		if err := uc.cache.Set(ctx, SnapshotCacheKey, out, uc.ttl); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo guardar el catálogo en caché")
		}
	}
	return out, nil
}

// Invalidate descarta la foto en caché (tras mover stock o cambiar el catálogo).
func (uc *CatalogUseCase) Invalidate(ctx context.Context) {
	if err := uc.cache.Invalidate(ctx, SnapshotCacheKey); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar el catálogo en caché")
	}
}

// Item lectura fresca de un producto o servicio (nunca desde caché).
func (uc *CatalogUseCase) Item(ctx context.Context, kind, id string) (entity.CatalogItem, error) {
	switch kind {
	case entity.ItemKindProduct:
		p, err := uc.productRepo.GetByID(ctx, id)
		if err != nil {
			return entity.CatalogItem{}, err
		}
		if !p.Active {
			return entity.CatalogItem{}, domain.ErrNotFound
		}
		return entity.ProductItem(p), nil
	case entity.ItemKindService:
		s, err := uc.serviceRepo.GetByID(ctx, id)
		if err != nil {
			return entity.CatalogItem{}, err
		}
		if !s.Active {
			return entity.CatalogItem{}, domain.ErrNotFound
		}
		return entity.ServiceItem(s), nil
	default:
		return entity.CatalogItem{}, domain.ErrInvalidInput
	}
}

// BuildCart arma un carrito desde la petición del POS. Valida ítems y tallas contra el
// catálogo; si la línea no trae precio se captura el actual. El stock no se valida
// aquí: el commit lo revalida en vivo.
func (uc *CatalogUseCase) BuildCart(ctx context.Context, in dto.CartRequest) (*domsales.Cart, error) {
	cart := domsales.NewCart()
	for _, l := range in.Lines {
		item, err := uc.Item(ctx, l.Kind, l.ItemID)
		if err != nil {
			return nil, err
		}
		key, _, _, err := inventory.Resolve(item, l.VariantID)
		if err != nil {
			return nil, err
		}
		price := item.UnitPrice
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		if _, err := cart.AppendLine(domsales.CartLine{
			ItemID:    item.ID,
			Kind:      item.Kind,
			VariantID: key.VariantID,
			Name:      item.Name,
			Quantity:  l.Quantity,
			UnitPrice: price,
		}); err != nil {
			return nil, err
		}
	}
	if in.Discount != nil {
		if err := cart.SetDiscount(domsales.Discount{Type: in.Discount.Type, Value: in.Discount.Value}); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

func (uc *CatalogUseCase) toItemResponse(item entity.CatalogItem) dto.CatalogItemResponse {
	stock := inventory.EffectiveStock(item)
	out := dto.CatalogItemResponse{
		Kind:      item.Kind,
		ID:        item.ID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		ImageRef:  item.ImageRef,
		Stock:     stock,
		LowStock:  item.IsProduct() && inventory.IsLowStock(stock, uc.lowStock),
	}
	for _, v := range item.Variants {
		out.Variants = append(out.Variants, dto.VariantResponse{
			ID:            v.ID,
			Size:          v.Size,
			StockQuantity: v.StockQuantity,
		})
	}
	return out
}
