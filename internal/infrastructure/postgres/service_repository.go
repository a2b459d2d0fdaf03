package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ repository.ServiceRepository = (*ServiceRepo)(nil)

// ServiceRepo servicios vendibles sobre PostgreSQL.
type ServiceRepo struct {
	q Querier
}

// NewServiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewServiceRepository(q Querier) *ServiceRepo {
	return &ServiceRepo{q: q}
}

const serviceColumns = `id, name, description, price, image_ref, active, created_at, updated_at`

func (r *ServiceRepo) Create(ctx context.Context, s *entity.Service) error {
	stamp(&s.CreatedAt, &s.UpdatedAt)
	query := `
		INSERT INTO services (` + serviceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, s.ID, s.Name, s.Description, s.Price, s.ImageRef, s.Active, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

func (r *ServiceRepo) GetByID(ctx context.Context, id string) (*entity.Service, error) {
	var s entity.Service
	err := r.q.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.Price, &s.ImageRef, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return &s, nil
}

func (r *ServiceRepo) ListActive(ctx context.Context) ([]*entity.Service, error) {
	rows, err := r.q.Query(ctx, `SELECT `+serviceColumns+` FROM services WHERE active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()
	var list []*entity.Service
	for rows.Next() {
		var s entity.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.ImageRef, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
