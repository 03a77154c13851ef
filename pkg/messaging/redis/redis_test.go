package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisBrokerInvalidURL(t *testing.T) {
	_, err := NewRedisBroker(context.Background(), DefaultConfig("not-a-url"))
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}

func TestNewRedisBrokerUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cfg := DefaultConfig("redis://127.0.0.1:1/0")
	cfg.MaxRetries = -1
	_, err := NewRedisBroker(ctx, cfg)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
