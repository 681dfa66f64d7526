package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-monitor/internal/logger"
)

func TestRedis_BypassMode(t *testing.T) {
	r := NewWithClient(nil, logger.Discard())
	ctx := context.Background()

	var out map[string]any
	hit, err := r.GetJSON(ctx, "report:status:x", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, r.SetJSON(ctx, "report:status:x", map[string]any{"a": 1}, time.Minute))
	assert.NoError(t, r.Delete(ctx, "report:status:x"))

	ok, err := r.SetJSONIfAbsent(ctx, "report:status:x", map[string]any{"a": 1}, time.Minute)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.ErrorIs(t, r.Ping(ctx), ErrUnavailable)
	assert.NoError(t, r.Close())
}

func TestRedis_NilReceiver(t *testing.T) {
	var r *Redis
	hit, err := r.GetJSON(context.Background(), "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, hit)
}
