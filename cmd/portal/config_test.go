package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rlinfra "application-portal/middleware/ratelimit/infra"
	"application-portal/upload/infra"
)

// clearEnv zera as variáveis lidas por readConfig; vazio equivale a ausente.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LISTEN_ADDR", "LOG_LEVEL", "LOG_FORMAT",
		"STORAGE_BACKEND", "STORAGE_BUCKET", "SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY",
		"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY", "S3_FORCE_PATH_STYLE",
		"RATE_BACKEND", "RATE_MAX", "RATE_WINDOW", "RATE_REDIS_ADDR", "RATE_REDIS_PASSWORD",
		"RATE_REDIS_DB", "RATE_REDIS_PREFIX", "RATE_KEY_REMOTE_ADDR", "RATE_CLEANUP_EVERY",
		"RATE_STATS_ENABLED", "RATE_STATS_REDIS_ADDR", "RATE_STATS_REDIS_PASSWORD", "RATE_STATS_REDIS_DB",
		"RATE_STATS_PREFIX", "RATE_STATS_TTL", "RATE_STATS_BUCKET", "RATE_STATS_TRACK_KEYS",
		"CONCURRENCY_MAX", "CONCURRENCY_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func TestReadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := readConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.listenAddr)
	assert.Equal(t, "supabase", cfg.storageBackend)
	assert.Equal(t, "job-applications", cfg.storageBucket)
	assert.Equal(t, "memory", cfg.rateBackend)
	assert.Equal(t, 3, cfg.rateMax)
	assert.Equal(t, time.Hour, cfg.rateWindow)
	assert.Equal(t, 0, cfg.concurrencyMax)
	assert.False(t, cfg.rateKeyRemoteAddr)
}

func TestReadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_MAX", "5")
	t.Setenv("RATE_WINDOW", "10m")
	t.Setenv("RATE_KEY_REMOTE_ADDR", "true")
	t.Setenv("STORAGE_BACKEND", "S3")
	t.Setenv("S3_FORCE_PATH_STYLE", "1")
	t.Setenv("CONCURRENCY_MAX", "20")
	t.Setenv("CONCURRENCY_TIMEOUT", "250ms")

	cfg, err := readConfig()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.rateMax)
	assert.Equal(t, 10*time.Minute, cfg.rateWindow)
	assert.True(t, cfg.rateKeyRemoteAddr)
	assert.Equal(t, "s3", cfg.storageBackend)
	assert.True(t, cfg.s3PathStyle)
	assert.Equal(t, 20, cfg.concurrencyMax)
	assert.Equal(t, 250*time.Millisecond, cfg.concurrencyTimeout)
}

func TestReadConfig_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_MAX", "three")
	t.Setenv("RATE_WINDOW", "an hour")

	cfg, err := readConfig()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.rateMax)
	assert.Equal(t, time.Hour, cfg.rateWindow)
}

func TestReadConfig_Errors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown storage", map[string]string{"STORAGE_BACKEND": "gcs"}, "STORAGE_BACKEND"},
		{"unknown rate backend", map[string]string{"RATE_BACKEND": "etcd"}, "RATE_BACKEND"},
		{"redis without addr", map[string]string{"RATE_BACKEND": "redis"}, "RATE_REDIS_ADDR"},
		{"stats without addr", map[string]string{"RATE_STATS_ENABLED": "true"}, "RATE_STATS_REDIS_ADDR"},
		{"zero max", map[string]string{"RATE_MAX": "0"}, "RATE_MAX"},
		{"negative window", map[string]string{"RATE_WINDOW": "-1h"}, "RATE_WINDOW"},
		{"negative concurrency", map[string]string{"CONCURRENCY_MAX": "-1"}, "CONCURRENCY_MAX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := readConfig()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadConfig_StatsReuseRateRedis(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_BACKEND", "redis")
	t.Setenv("RATE_REDIS_ADDR", "redis:6379")
	t.Setenv("RATE_STATS_ENABLED", "true")

	cfg, err := readConfig()
	require.NoError(t, err)

	assert.Equal(t, "redis:6379", cfg.rateStatsRedisAddr)
}

func TestBuildObjectStore_SupabaseMissingEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")

	cfg, err := readConfig()
	require.NoError(t, err)

	store, err := buildObjectStore(context.Background(), cfg)
	require.NoError(t, err)

	assert.Nil(t, store)
	assert.Equal(t, "SUPABASE_SERVICE_ROLE_KEY", cfg.missingStorage())
}

func TestBuildObjectStore_Supabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-role")

	cfg, err := readConfig()
	require.NoError(t, err)

	store, err := buildObjectStore(context.Background(), cfg)
	require.NoError(t, err)

	assert.IsType(t, &infra.SupabaseStore{}, store)
	assert.Empty(t, cfg.missingStorage())
}

func TestBuildObjectStore_S3(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("S3_ACCESS_KEY_ID", "minio")
	t.Setenv("S3_SECRET_ACCESS_KEY", "minio123")
	t.Setenv("S3_FORCE_PATH_STYLE", "true")

	cfg, err := readConfig()
	require.NoError(t, err)

	store, err := buildObjectStore(context.Background(), cfg)
	require.NoError(t, err)

	assert.IsType(t, &infra.S3Store{}, store)
	assert.Empty(t, cfg.missingStorage())
}

func TestBuildObjectStore_S3MissingEnv(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		missing string
	}{
		{
			name:    "nothing set",
			env:     map[string]string{},
			missing: "S3_ENDPOINT, S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY",
		},
		{
			name:    "no secret",
			env:     map[string]string{"S3_ENDPOINT": "http://localhost:9000", "S3_ACCESS_KEY_ID": "minio"},
			missing: "S3_SECRET_ACCESS_KEY",
		},
		{
			name:    "no endpoint",
			env:     map[string]string{"S3_ACCESS_KEY_ID": "minio", "S3_SECRET_ACCESS_KEY": "minio123"},
			missing: "S3_ENDPOINT",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("STORAGE_BACKEND", "s3")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := readConfig()
			require.NoError(t, err)

			store, err := buildObjectStore(context.Background(), cfg)
			require.NoError(t, err)

			assert.Nil(t, store)
			assert.Equal(t, tc.missing, cfg.missingStorage())
		})
	}
}

func TestBuildLimiterStore_Memory(t *testing.T) {
	clearEnv(t)
	cfg, err := readConfig()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeFn, err := buildLimiterStore(ctx, cfg)
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &rlinfra.Store{}, store)
}

func TestBuildLimiterStore_Redis(t *testing.T) {
	clearEnv(t)
	mr := miniredis.RunT(t)
	t.Setenv("RATE_BACKEND", "redis")
	t.Setenv("RATE_REDIS_ADDR", mr.Addr())
	t.Setenv("RATE_STATS_ENABLED", "true")

	cfg, err := readConfig()
	require.NoError(t, err)

	store, closeFn, err := buildLimiterStore(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &rlinfra.RedisStore{}, store)

	dec, err := store.Get("203.0.113.7").Admit(context.Background(), time.Now())
	require.NoError(t, err)
	assert.True(t, dec.Allowed)

	stats, closeStats, err := buildStatsStore(context.Background(), cfg)
	require.NoError(t, err)
	defer closeStats()
	assert.IsType(t, &rlinfra.RedisStatsStore{}, stats)
}

func TestBuildLimiterStore_RedisDown(t *testing.T) {
	clearEnv(t)
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	t.Setenv("RATE_BACKEND", "redis")
	t.Setenv("RATE_REDIS_ADDR", addr)

	cfg, err := readConfig()
	require.NoError(t, err)

	_, closeFn, err := buildLimiterStore(context.Background(), cfg)
	closeFn()

	assert.Error(t, err)
}
