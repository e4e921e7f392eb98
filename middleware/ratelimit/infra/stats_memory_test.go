package infra

import (
	"context"
	"testing"

	"application-portal/middleware/ratelimit/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStatsStore_CountsByRouteAndTotal(t *testing.T) {
	s := NewMemoryStatsStore()
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: "a", Allowed: true, Method: "POST", Path: "/upload"}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: "a", Allowed: false, Method: "POST", Path: "/upload"}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: "b", Allowed: true, Method: "POST", Path: "/upload"}))

	assert.Equal(t, Counters{Allowed: 2, Denied: 1}, s.Total())
	assert.Equal(t, map[string]Counters{"POST /upload": {Allowed: 2, Denied: 1}}, s.ByRoute())
	assert.Empty(t, s.ByKey(), "keys are only tracked when enabled")
}

func TestMemoryStatsStore_TrackKeys(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackKeys(true))
	ctx := context.Background()

	_ = s.Record(ctx, domain.StatsEvent{Key: "a", Allowed: true})
	_ = s.Record(ctx, domain.StatsEvent{Key: "a", Allowed: false})

	byKey := s.ByKey()
	assert.Equal(t, Counters{Allowed: 1, Denied: 1}, byKey["a"])

	// o snapshot é uma cópia.
	byKey["a"] = Counters{}
	assert.Equal(t, Counters{Allowed: 1, Denied: 1}, s.ByKey()["a"])
}
