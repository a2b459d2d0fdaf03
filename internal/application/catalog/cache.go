package catalog

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
)

// SnapshotCacheKey clave única de la foto del catálogo.
const SnapshotCacheKey = "pos:catalog:snapshot"

// CatalogCache caché de la foto del catálogo (solo visualización).
type CatalogCache interface {
	Get(ctx context.Context, key string) (*dto.CatalogResponse, bool, error)
	Set(ctx context.Context, key string, value *dto.CatalogResponse, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// NoopCache no guarda nada; cada Snapshot lee del almacenamiento.
type NoopCache struct{}

func (NoopCache) Get(_ context.Context, _ string) (*dto.CatalogResponse, bool, error) {
	return nil, false, nil
}

func (NoopCache) Set(_ context.Context, _ string, _ *dto.CatalogResponse, _ time.Duration) error {
	return nil
}

func (NoopCache) Invalidate(_ context.Context, _ string) error { return nil }
