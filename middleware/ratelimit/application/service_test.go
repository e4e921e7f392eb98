package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"application-portal/middleware/ratelimit/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLimiter struct {
	dec    domain.Decision
	err    error
	gotNow time.Time
}

func (f *fakeLimiter) Admit(_ context.Context, now time.Time) (domain.Decision, error) {
	f.gotNow = now
	return f.dec, f.err
}

type fakeStore struct {
	lim    domain.Limiter
	gotKey domain.Key
}

func (s *fakeStore) Get(k domain.Key) domain.Limiter {
	s.gotKey = k
	return s.lim
}

type recordingStats struct {
	events []domain.StatsEvent
}

func (r *recordingStats) Record(_ context.Context, ev domain.StatsEvent) error {
	r.events = append(r.events, ev)
	return errors.New("stats backend down")
}

func TestService_Decide_AllowsWhenNoStore(t *testing.T) {
	svc := Service{}
	dec, err := svc.Decide(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Zero(t, dec.RetryAfter)
}

func TestService_Decide_AllowsWhenStoreHasNoLimiter(t *testing.T) {
	svc := Service{Store: &fakeStore{}}
	dec, err := svc.Decide(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

func TestService_Decide_PassesClockToLimiter(t *testing.T) {
	at := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	lim := &fakeLimiter{dec: domain.Decision{Allowed: true, Remaining: 2}}
	svc := Service{Store: &fakeStore{lim: lim}, Now: func() time.Time { return at }}

	dec, err := svc.Decide(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Equal(t, 2, dec.Remaining)
	assert.Equal(t, at, lim.gotNow)
}

func TestService_Decide_EmptyKeyUsesUnknownBucket(t *testing.T) {
	store := &fakeStore{lim: &fakeLimiter{dec: domain.Decision{Allowed: true}}}
	svc := Service{Store: store}

	_, err := svc.Decide(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.UnknownKey, store.gotKey)
}

func TestService_Decide_BlocksWithLimiterRetryAfter(t *testing.T) {
	lim := &fakeLimiter{dec: domain.Decision{Allowed: false, RetryAfter: 42 * time.Minute}}
	svc := Service{Store: &fakeStore{lim: lim}}

	dec, err := svc.Decide(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, 42*time.Minute, dec.RetryAfter)
}

func TestService_Decide_PropagatesLimiterError(t *testing.T) {
	lim := &fakeLimiter{err: errors.New("redis: connection refused")}
	svc := Service{Store: &fakeStore{lim: lim}}

	_, err := svc.Decide(context.Background(), "k")
	require.Error(t, err)
}

func TestService_Decide_RecordsStatsBestEffort(t *testing.T) {
	stats := &recordingStats{}
	lim := &fakeLimiter{dec: domain.Decision{Allowed: false}}
	svc := Service{Store: &fakeStore{lim: lim}, Stats: stats, Method: "POST", Path: "/upload"}

	dec, err := svc.Decide(context.Background(), "k")
	require.NoError(t, err, "stats failures must not fail the decision")
	assert.False(t, dec.Allowed)

	require.Len(t, stats.events, 1)
	ev := stats.events[0]
	assert.Equal(t, domain.Key("k"), ev.Key)
	assert.False(t, ev.Allowed)
	assert.Equal(t, "POST", ev.Method)
	assert.Equal(t, "/upload", ev.Path)
}
