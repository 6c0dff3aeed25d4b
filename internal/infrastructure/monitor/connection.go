package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/internal/infrastructure/buffer"
)

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

// Probes are the dependencies the monitor watches. A nil probe reports down.
type Probes struct {
	Postgres   PingFunc
	Redis      PingFunc
	BufferSize func() (int, error)
}

// ProbesFor builds probes from live clients; any of them may be nil.
func ProbesFor(pg *pgxpool.Pool, rdb *redislib.Client, buf *buffer.Store) Probes {
	var p Probes
	if pg != nil {
		p.Postgres = pg.Ping
	}
	if rdb != nil {
		p.Redis = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if buf != nil {
		p.BufferSize = buf.Size
	}
	return p
}

// Monitor periodically probes the data sources. Task writes are only
// replayed while Postgres answers; Redis loss just drops viewed marks.
type Monitor struct {
	probes   Probes
	interval time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	status Status

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func New(probes Probes, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   probes,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

// Stop ends the loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	<-m.doneCh
}

// IsOnline reports whether the primary task store is reachable.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.PostgreSQL
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh runs all probes once.
func (m *Monitor) Refresh(ctx context.Context) Status {
	bufferOK, bufferSize := m.checkBuffer()
	status := Status{
		PostgreSQL: ping(ctx, m.probes.Postgres, 3*time.Second),
		Redis:      ping(ctx, m.probes.Redis, 2*time.Second),
		Buffer:     bufferOK,
		BufferSize: bufferSize,
		LastCheck:  time.Now(),
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	if !prev.LastCheck.IsZero() && prev.PostgreSQL != status.PostgreSQL {
		m.logger.Warn("postgres availability changed", zap.Bool("online", status.PostgreSQL))
	}
	return status
}

func (m *Monitor) loop() {
	defer close(m.doneCh)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

func ping(parent context.Context, fn PingFunc, timeout time.Duration) bool {
	if fn == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	return fn(ctx) == nil
}

func (m *Monitor) checkBuffer() (bool, int) {
	if m.probes.BufferSize == nil {
		return false, 0
	}
	size, err := m.probes.BufferSize()
	if err != nil {
		m.logger.Warn("buffer size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
