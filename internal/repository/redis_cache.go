package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/strengthlab/overload/internal/domain"
)

const suggestionKeyPrefix = "suggestion:"

// RedisCacheRepository implements domain.CacheRepository using Redis
type RedisCacheRepository struct {
	client *redis.Client
}

// NewRedisCacheRepository creates a new Redis cache repository
func NewRedisCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{client: client}
}

// GetSuggestion retrieves the cached suggestion for a workout. A nil result
// with nil error is a cache miss.
func (r *RedisCacheRepository) GetSuggestion(ctx context.Context, workoutID string) (*domain.Suggestion, error) {
	data, err := r.client.Get(ctx, suggestionKeyPrefix+workoutID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached suggestion: %w", err)
	}

	var suggestion domain.Suggestion
	if err := json.Unmarshal(data, &suggestion); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached suggestion: %w", err)
	}
	return &suggestion, nil
}

// SetSuggestion caches a suggestion for a workout with TTL
func (r *RedisCacheRepository) SetSuggestion(ctx context.Context, workoutID string, s *domain.Suggestion, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestion: %w", err)
	}

	if err := r.client.Set(ctx, suggestionKeyPrefix+workoutID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache suggestion: %w", err)
	}
	return nil
}

// InvalidateSuggestion drops the cached suggestion for a workout. Called on
// every workout mutation so stale numbers never survive an edit.
func (r *RedisCacheRepository) InvalidateSuggestion(ctx context.Context, workoutID string) error {
	if err := r.client.Del(ctx, suggestionKeyPrefix+workoutID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate suggestion cache: %w", err)
	}
	return nil
}
