package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/codesheets-backend/internal/domain"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

const (
	advisoryKeyPrefix  = "sheet_progress:"
	defaultAdvisoryTTL = 10 * time.Minute
)

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// AdvisoryStore keeps one hash per sheet (field = user id) holding the viewer's
// last computed progress summary. Entries expire with the hash.
type AdvisoryStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewAdvisoryStore(log *logger.Logger, cfg Config) (*AdvisoryStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newAdvisoryStore(log, rdb, cfg.TTL), nil
}

func newAdvisoryStore(log *logger.Logger, rdb *goredis.Client, ttl time.Duration) *AdvisoryStore {
	if ttl <= 0 {
		ttl = defaultAdvisoryTTL
	}
	return &AdvisoryStore{
		log: log.With("client", "RedisAdvisoryStore"),
		rdb: rdb,
		ttl: ttl,
	}
}

func advisoryKey(sheetID uuid.UUID) string {
	return advisoryKeyPrefix + sheetID.String()
}

// Client exposes the underlying connection for health metrics.
func (s *AdvisoryStore) Client() goredis.UniversalClient {
	if s == nil {
		return nil
	}
	return s.rdb
}

func (s *AdvisoryStore) Get(ctx context.Context, sheetID, userID uuid.UUID) (*types.AdvisoryProgress, error) {
	if s == nil || s.rdb == nil {
		return nil, fmt.Errorf("redis advisory store not initialized")
	}
	raw, err := s.rdb.HGet(ctx, advisoryKey(sheetID), userID.String()).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeAdvisory(raw)
}

func decodeAdvisory(raw []byte) (*types.AdvisoryProgress, error) {
	var out types.AdvisoryProgress
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode advisory progress: %w", err)
	}
	return &out, nil
}

func (s *AdvisoryStore) Put(ctx context.Context, sheetID, userID uuid.UUID, p types.AdvisoryProgress) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis advisory store not initialized")
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	key := advisoryKey(sheetID)
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key, userID.String(), raw)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

// InvalidateSheet drops every viewer's cached summary for the sheet.
func (s *AdvisoryStore) InvalidateSheet(ctx context.Context, sheetID uuid.UUID) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis advisory store not initialized")
	}
	return s.rdb.Del(ctx, advisoryKey(sheetID)).Err()
}

func (s *AdvisoryStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
