package repository

import (
	"context"

	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

// ServiceRepository puerto de persistencia para servicios vendibles.
type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) error
	GetByID(ctx context.Context, id string) (*entity.Service, error)
	ListActive(ctx context.Context) ([]*entity.Service, error)
}
