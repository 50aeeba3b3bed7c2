package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const moveKeyPrefix = "move:"

// MoveCache keeps search results keyed by position. It never holds game state.
type MoveCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMoveCache - a zero ttl keeps entries until redis evicts them.
func NewMoveCache(client *redis.Client, ttl time.Duration) *MoveCache {
	return &MoveCache{
		client: client,
		ttl:    ttl,
	}
}

func (that *MoveCache) Get(ctx context.Context, key string) (entity.SearchResult, error) {
	response, err := that.client.Get(ctx, moveKeyPrefix+key).Bytes()

	if errors.Is(err, redis.Nil) {
		return entity.SearchResult{Move: entity.NoMove}, apperror.ErrMoveNotCached
	}

	if err != nil {
		return entity.SearchResult{Move: entity.NoMove}, fmt.Errorf("failed to get move: %w", err)
	}

	var result entity.SearchResult
	if err = json.Unmarshal(response, &result); err != nil {
		return entity.SearchResult{Move: entity.NoMove}, fmt.Errorf("failed to unmarshal move: %w", err)
	}

	return result, nil
}

func (that *MoveCache) Set(ctx context.Context, key string, result entity.SearchResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal move: %w", err)
	}

	if err = that.client.Set(ctx, moveKeyPrefix+key, resultJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set move: %w", err)
	}

	return nil
}
