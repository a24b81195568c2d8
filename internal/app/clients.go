package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/codesheets-backend/internal/clients/redis"
	"github.com/yungbote/codesheets-backend/internal/observability"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
	"github.com/yungbote/codesheets-backend/internal/services"
)

var _ services.AdvisoryStore = (*redis.AdvisoryStore)(nil)

type Clients struct {
	Redis    *redis.AdvisoryStore
	Advisory services.AdvisoryStore
}

// wireClients connects optional backends. Without REDIS_ADDR the advisory
// snapshot is disabled and sheet progress is always computed on read.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		log.Info("REDIS_ADDR not set, advisory progress cache disabled")
		return Clients{Advisory: services.NewNoopAdvisoryStore()}, nil
	}
	store, err := redis.NewAdvisoryStore(log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis advisory store: %w", err)
	}
	metrics.StartRedisCollector(ctx, log, store.Client(), 15*time.Second)
	return Clients{Redis: store, Advisory: store}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
