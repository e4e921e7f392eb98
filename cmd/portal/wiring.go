package main

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	rldomain "application-portal/middleware/ratelimit/domain"
	rlinfra "application-portal/middleware/ratelimit/infra"
	"application-portal/upload/domain"
	"application-portal/upload/infra"
)

// buildObjectStore devolve nil (sem erro) quando faltam variáveis do backend
// escolhido: o servidor sobe e cada envio responde com erro de configuração.
func buildObjectStore(ctx context.Context, cfg config) (domain.ObjectStore, error) {
	if cfg.missingStorage() != "" {
		return nil, nil
	}
	switch cfg.storageBackend {
	case "s3":
		store, err := infra.NewS3Store(ctx, infra.S3Config{
			Endpoint:        cfg.s3Endpoint,
			Region:          cfg.s3Region,
			Bucket:          cfg.storageBucket,
			AccessKeyID:     cfg.s3AccessKeyID,
			SecretAccessKey: cfg.s3SecretKey,
			UsePathStyle:    cfg.s3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := infra.NewSupabaseStore(infra.SupabaseConfig{
			URL:        cfg.supabaseURL,
			ServiceKey: cfg.supabaseKey,
			Bucket:     cfg.storageBucket,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func newRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "redis ping %s", addr)
	}
	return rdb, nil
}

// buildLimiterStore monta o backend da janela deslizante. O close retornado
// nunca é nil.
func buildLimiterStore(ctx context.Context, cfg config) (rldomain.LimiterStore, func(), error) {
	if cfg.rateBackend == "redis" {
		rdb, err := newRedisClient(ctx, cfg.rateRedisAddr, cfg.rateRedisPassword, cfg.rateRedisDB)
		if err != nil {
			return nil, func() {}, err
		}
		store := rlinfra.NewRedisStore(rdb, cfg.rateMax, cfg.rateWindow, rlinfra.WithKeyPrefix(cfg.rateRedisPrefix))
		return store, func() { _ = rdb.Close() }, nil
	}

	store := rlinfra.NewStore(cfg.rateMax, cfg.rateWindow, rlinfra.WithCleanupEvery(cfg.rateCleanupEvery))
	store.StartJanitor(ctx)
	return store, func() {}, nil
}

func buildStatsStore(ctx context.Context, cfg config) (rldomain.StatsStore, func(), error) {
	if !cfg.rateStatsEnabled {
		return nil, func() {}, nil
	}
	rdb, err := newRedisClient(ctx, cfg.rateStatsRedisAddr, cfg.rateStatsRedisPassword, cfg.rateStatsRedisDB)
	if err != nil {
		return nil, func() {}, err
	}
	stats := rlinfra.NewRedisStatsStore(
		rdb,
		rlinfra.WithStatsPrefix(cfg.rateStatsPrefix),
		rlinfra.WithStatsTTL(cfg.rateStatsTTL),
		rlinfra.WithStatsBucket(cfg.rateStatsBucket),
		rlinfra.WithStatsTrackKeys(cfg.rateStatsTrackKeys),
	)
	return stats, func() { _ = rdb.Close() }, nil
}

func logStartup(logger *zap.Logger, cfg config, store domain.ObjectStore) {
	if store == nil {
		logger.Warn("storage not configured: every upload will fail with a configuration error",
			zap.String("missing", cfg.missingStorage()))
	} else {
		logger.Info("storage", zap.Any("store", store), zap.String("bucket", cfg.storageBucket))
	}
	logger.Info("rate limit",
		zap.String("backend", cfg.rateBackend),
		zap.Int("max", cfg.rateMax),
		zap.Duration("window", cfg.rateWindow),
		zap.Bool("keyRemoteAddr", cfg.rateKeyRemoteAddr),
	)
	logger.Info("rate stats",
		zap.Bool("enabled", cfg.rateStatsEnabled),
		zap.String("redisAddr", cfg.rateStatsRedisAddr),
		zap.String("bucket", cfg.rateStatsBucket),
		zap.Duration("ttl", cfg.rateStatsTTL),
		zap.Bool("trackKeys", cfg.rateStatsTrackKeys),
	)
	logger.Info("concurrency", zap.Int("max", cfg.concurrencyMax), zap.Duration("acquireTimeout", cfg.concurrencyTimeout))
}
