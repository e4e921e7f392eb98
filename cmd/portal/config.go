package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"application-portal/upload/domain"
)

type config struct {
	listenAddr string
	logLevel   string
	logFormat  string

	storageBackend string
	storageBucket  string
	supabaseURL    string
	supabaseKey    string
	s3Endpoint     string
	s3Region       string
	s3AccessKeyID  string
	s3SecretKey    string
	s3PathStyle    bool

	rateBackend       string
	rateMax           int
	rateWindow        time.Duration
	rateRedisAddr     string
	rateRedisPassword string
	rateRedisDB       int
	rateRedisPrefix   string
	rateKeyRemoteAddr bool
	rateCleanupEvery  time.Duration

	rateStatsEnabled       bool
	rateStatsRedisAddr     string
	rateStatsRedisPassword string
	rateStatsRedisDB       int
	rateStatsPrefix        string
	rateStatsTTL           time.Duration
	rateStatsBucket        string
	rateStatsTrackKeys     bool

	concurrencyMax     int
	concurrencyTimeout time.Duration
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.logLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.logFormat = getenvDefault("LOG_FORMAT", "json")

	cfg.storageBackend = strings.ToLower(getenvDefault("STORAGE_BACKEND", "supabase"))
	cfg.storageBucket = getenvDefault("STORAGE_BUCKET", domain.DefaultBucket)
	cfg.supabaseURL = strings.TrimSpace(os.Getenv("SUPABASE_URL"))
	cfg.supabaseKey = strings.TrimSpace(os.Getenv("SUPABASE_SERVICE_ROLE_KEY"))
	cfg.s3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.s3Region = getenvDefault("S3_REGION", "us-east-1")
	cfg.s3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.s3SecretKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	cfg.s3PathStyle = getenvBoolDefault("S3_FORCE_PATH_STYLE", false)

	cfg.rateBackend = strings.ToLower(getenvDefault("RATE_BACKEND", "memory"))
	cfg.rateMax = getenvIntDefault("RATE_MAX", 3)
	cfg.rateWindow = getenvDurationDefault("RATE_WINDOW", time.Hour)
	cfg.rateRedisAddr = os.Getenv("RATE_REDIS_ADDR")
	cfg.rateRedisPassword = os.Getenv("RATE_REDIS_PASSWORD")
	cfg.rateRedisDB = getenvIntDefault("RATE_REDIS_DB", 0)
	cfg.rateRedisPrefix = getenvDefault("RATE_REDIS_PREFIX", "portal:ratelimit")
	// Atrás de proxy confiável deixe false: o IP vem do X-Forwarded-For.
	// Sem proxy, true evita que todo mundo caia na chave "unknown".
	cfg.rateKeyRemoteAddr = getenvBoolDefault("RATE_KEY_REMOTE_ADDR", false)
	cfg.rateCleanupEvery = getenvDurationDefault("RATE_CLEANUP_EVERY", 10*time.Minute)

	cfg.rateStatsEnabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.rateStatsRedisAddr = getenvDefault("RATE_STATS_REDIS_ADDR", cfg.rateRedisAddr)
	cfg.rateStatsRedisPassword = getenvDefault("RATE_STATS_REDIS_PASSWORD", cfg.rateRedisPassword)
	cfg.rateStatsRedisDB = getenvIntDefault("RATE_STATS_REDIS_DB", cfg.rateRedisDB)
	cfg.rateStatsPrefix = getenvDefault("RATE_STATS_PREFIX", "portal:ratelimit:stats")
	cfg.rateStatsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.rateStatsBucket = getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.rateStatsTrackKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 0)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	switch cfg.storageBackend {
	case "supabase", "s3":
	default:
		return config{}, errors.Newf("STORAGE_BACKEND must be supabase or s3, got %q", cfg.storageBackend)
	}
	switch cfg.rateBackend {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.rateRedisAddr) == "" {
			return config{}, errors.New("RATE_REDIS_ADDR is required when RATE_BACKEND=redis")
		}
	default:
		return config{}, errors.Newf("RATE_BACKEND must be memory or redis, got %q", cfg.rateBackend)
	}
	if cfg.rateStatsEnabled && strings.TrimSpace(cfg.rateStatsRedisAddr) == "" {
		return config{}, errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}
	if cfg.rateMax <= 0 {
		return config{}, errors.New("RATE_MAX must be > 0")
	}
	if cfg.rateWindow <= 0 {
		return config{}, errors.New("RATE_WINDOW must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

// missingStorage lista as variáveis que faltam para o backend escolhido.
// Vazio quando o storage pode ser montado.
func (c config) missingStorage() string {
	var missing []string
	switch c.storageBackend {
	case "s3":
		// sem chaves estáticas o SDK cairia na cadeia padrão da AWS e o erro
		// só apareceria no upload.
		if strings.TrimSpace(c.s3Endpoint) == "" {
			missing = append(missing, "S3_ENDPOINT")
		}
		if strings.TrimSpace(c.s3AccessKeyID) == "" {
			missing = append(missing, "S3_ACCESS_KEY_ID")
		}
		if strings.TrimSpace(c.s3SecretKey) == "" {
			missing = append(missing, "S3_SECRET_ACCESS_KEY")
		}
	default:
		if c.supabaseURL == "" {
			missing = append(missing, "SUPABASE_URL")
		}
		if c.supabaseKey == "" {
			missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
		}
	}
	return strings.Join(missing, ", ")
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
