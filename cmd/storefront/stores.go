package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/Skotchmaster/rad_plants/internal/catalog"
	"github.com/Skotchmaster/rad_plants/internal/config"
	"github.com/Skotchmaster/rad_plants/internal/db"
	"github.com/Skotchmaster/rad_plants/internal/es"
	"github.com/Skotchmaster/rad_plants/internal/kv"
	"github.com/Skotchmaster/rad_plants/internal/mykafka"
)

// backing holds whatever KV backend was opened so it can be pinged and
// closed on shutdown.
type backing struct {
	store kv.Store
	gorm  *gorm.DB
	redis *redis.Client
}

func openStore(ctx context.Context, cfg config.Config) (*backing, error) {
	switch cfg.KVBackend {
	case config.BackendSQLite:
		gdb, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store, err := kv.NewGormStore(gdb)
		if err != nil {
			return nil, err
		}
		return &backing{store: store, gorm: gdb}, nil

	case config.BackendPostgres:
		config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
		gdb, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store, err := kv.NewGormStore(gdb)
		if err != nil {
			return nil, err
		}
		return &backing{store: store, gorm: gdb}, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return &backing{store: kv.NewRedisStore(client), redis: client}, nil
	}
	return nil, fmt.Errorf("unknown KV_BACKEND %q", cfg.KVBackend)
}

func (b *backing) ready(ctx context.Context) error {
	if b.redis != nil {
		return b.redis.Ping(ctx).Err()
	}
	sqlDB, err := b.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (b *backing) close(l *slog.Logger) {
	if b.gorm != nil {
		if err := db.Close(b.gorm); err != nil {
			l.Error("db_close_error", "error", err)
		}
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			l.Error("redis_close_error", "error", err)
		}
	}
}

func openPublisher(cfg config.Config, l *slog.Logger) mykafka.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		l.Info("kafka_disabled", "reason", "KAFKA_BROKERS empty")
		return mykafka.Noop{}
	}
	prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		l.Warn("kafka_unavailable", "error", err)
		return mykafka.Noop{}
	}
	return prod
}

// openSearcher indexes the catalogue into Elasticsearch when ES_URL is set
// and falls back to in-memory search otherwise.
func openSearcher(ctx context.Context, cfg config.Config, store *catalog.Store, l *slog.Logger) catalog.Searcher {
	fallback := catalog.StoreSearcher{Store: store}
	if cfg.ESURL == "" {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := es.NewClient(ctx, &cfg)
	if err != nil {
		l.Warn("es_unavailable", "url", cfg.ESURL, "error", err)
		return fallback
	}
	s := &catalog.ESSearcher{ES: client, Index: cfg.ESIndex}
	if err := s.IndexProducts(ctx, store.All()); err != nil {
		l.Warn("es_index_error", "index", cfg.ESIndex, "error", err)
		return fallback
	}
	l.Info("es_ready", "index", cfg.ESIndex, "products", len(store.All()))
	return s
}
