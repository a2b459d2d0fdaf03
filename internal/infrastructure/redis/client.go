// Package redis adapta Redis para el POS: bloqueo distribuido por venta (redislock) y caché
// de la foto del catálogo. Ambos son opcionales; sin Redis se usa LocalLocker y NoopCache.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/ventas-pos/pkg/config"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

const (
	connectAttempts = 5
	connectBackoff  = time.Second
)

// NewClient conecta y verifica con PING, reintentando con espera creciente.
func NewClient(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = client.Ping(ctx).Err(); err == nil {
			log.Info().Str("addr", cfg.Addr).Int("attempt", attempt).Msg("conectado a redis")
			return client, nil
		}
		wait := connectBackoff * time.Duration(1<<(attempt-1))
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("redis no responde")
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	_ = client.Close()
	return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
}
