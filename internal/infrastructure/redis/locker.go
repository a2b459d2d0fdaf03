package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	appsales "github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

var _ appsales.SaleLocker = (*SaleLocker)(nil)

const (
	saleLockPrefix = "pos:lock:sale:"
	lockRetryEvery = 100 * time.Millisecond
	releaseTimeout = 2 * time.Second
)

// SaleLocker bloqueo por venta compartido entre nodos.
type SaleLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewSaleLocker ttl acota tanto la vida del bloqueo como la espera por obtenerlo.
func NewSaleLocker(client *goredis.Client, ttl time.Duration, log *logger.Logger) *SaleLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SaleLocker{locker: redislock.New(client), ttl: ttl, log: log.Named("sale_lock")}
}

// Lock domain.ErrConflict si otra sesión retiene la venta durante toda la espera.
func (l *SaleLocker) Lock(ctx context.Context, saleID string) (func(), error) {
	key := saleLockPrefix + saleID
	lock, err := l.locker.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(lockRetryEvery),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		l.log.Warn().Str("sale_id", saleID).Msg("venta bloqueada por otra sesión")
		return nil, fmt.Errorf("%w: venta %s en uso", domain.ErrConflict, saleID)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock: %w", err)
	}

	return func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if err := lock.Release(rctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Error().Err(err).Str("sale_id", saleID).Msg("no se pudo liberar el bloqueo")
		}
	}, nil
}
