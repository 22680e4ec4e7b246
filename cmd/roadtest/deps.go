package main

import (
	"fmt"
	"io"

	"github.com/aretw0/roadtest/internal/config"
	"github.com/aretw0/roadtest/pkg/adapters/memory"
	"github.com/aretw0/roadtest/pkg/adapters/redis"
	"github.com/aretw0/roadtest/pkg/persistence/middleware"
	"github.com/aretw0/roadtest/pkg/ports"
)

// backends are the report store and run lock selected by the configuration.
type backends struct {
	// store is base decorated with redaction and retention.
	store  ports.ReportStore
	base   ports.ReportStore
	locker ports.DistributedLocker
	closer io.Closer
}

func (b *backends) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

func openBackends(cfg *config.Config) (*backends, error) {
	be, err := openBase(cfg)
	if err != nil {
		return nil, err
	}
	be.store = middleware.Chain(be.base,
		middleware.NewRedactionMiddleware(middleware.DefaultRedactions),
		middleware.NewRetentionMiddleware(cfg.Run.Retention),
	)
	return be, nil
}

func openBase(cfg *config.Config) (*backends, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		return &backends{base: memory.NewStore(), locker: memory.NewLocker()}, nil
	case config.StoreRedis:
		rc := cfg.Store.Redis
		opts := []redis.Option{redis.WithTTL(rc.TTL.Duration)}
		if rc.Prefix != "" {
			opts = append(opts, redis.WithPrefix(rc.Prefix))
		}
		s := redis.New(rc.Addr, rc.Password, rc.DB, opts...)
		return &backends{
			base:   s,
			locker: redis.NewLocker(s.Client(), "roadtest:lock:"),
			closer: s,
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
