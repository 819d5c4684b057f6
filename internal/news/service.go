package news

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/patholens/patholens-api/internal/apperr"
)

const cacheKey = "news:latest"

// Service serves upstream news with a Redis cache in front. Cache failures
// never block the request; a provider failure surfaces as an upstream error.
type Service struct {
	client   *Client
	cache    *redis.Client
	query    string
	language string
	ttl      time.Duration
	logger   *slog.Logger
}

// NewService creates a news service.
func NewService(client *Client, cache *redis.Client, query, language string, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		client:   client,
		cache:    cache,
		query:    query,
		language: language,
		ttl:      ttl,
		logger:   logger,
	}
}

// Latest returns the cached article payload, refreshing it from the provider
// when the cache is cold.
func (s *Service) Latest(ctx context.Context) (map[string]any, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	payload, err := s.client.Fetch(ctx, s.query, s.language)
	if err != nil {
		return nil, apperr.Upstream("News service is currently unavailable", err)
	}

	s.toCache(ctx, payload)
	return payload, nil
}

func (s *Service) fromCache(ctx context.Context) (map[string]any, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("news cache read failed", "error", err)
		}
		return nil, false
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.logger.Warn("news cache entry invalid", "error", err)
		return nil, false
	}
	return payload, true
}

func (s *Service) toCache(ctx context.Context, payload map[string]any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("news cache write failed", "error", err)
	}
}
