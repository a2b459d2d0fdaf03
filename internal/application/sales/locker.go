package sales

import (
	"context"
	"sync"
)

var _ SaleLocker = (*LocalLocker)(nil)

// LocalLocker bloqueo por venta dentro del proceso (un solo nodo, sin Redis).
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localLock
}

type localLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker construye el bloqueo local.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localLock)}
}

// Lock espera hasta obtener la venta o hasta que ctx se cancele.
func (l *LocalLocker) Lock(ctx context.Context, saleID string) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[saleID]
	if !ok {
		lk = &localLock{ch: make(chan struct{}, 1)}
		l.locks[saleID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(saleID, lk)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lk.ch
			l.release(saleID, lk)
		})
	}, nil
}

func (l *LocalLocker) release(saleID string, lk *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, saleID)
	}
}
