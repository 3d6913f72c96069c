package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"CardPulse/internal/domain/repository"
	"CardPulse/internal/handler/api"
	mid "CardPulse/internal/middleware"
	internalrepo "CardPulse/internal/repository"
	icache "CardPulse/internal/service/cache"
	"CardPulse/internal/service/feed"
	"CardPulse/internal/service/notify"
	"CardPulse/internal/usecase"
	pkgcache "CardPulse/pkg/cache"
	pkgch "CardPulse/pkg/clickhouse"
	"CardPulse/pkg/config"
	pkgkafka "CardPulse/pkg/kafka"
	applogger "CardPulse/pkg/logger"
	"CardPulse/pkg/metrics"
	"CardPulse/pkg/queue"
	"CardPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		`CREATE TABLE IF NOT EXISTS ` + db + `.products (
            id String,
            name String,
            type String,
            series_bloc String,
            release_date Date,
            retail_price Float64,
            image_url String
        ) ENGINE=ReplacingMergeTree ORDER BY id`,
		`CREATE TABLE IF NOT EXISTS ` + db + `.observations (
            ts DateTime,
            product_id String,
            price Float64,
            source_url String,
            event_id String
        ) ENGINE=ReplacingMergeTree ORDER BY (product_id, ts, event_id)`,
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when no brokers are
// configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideObservationStorage creates ClickHouse storage repository.
func ProvideObservationStorage(chClient *pkgch.Client, cfg *config.Config) repository.ObservationStore {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".observations")
}

// ProvideObservationPublisher creates Kafka publisher repository.
func ProvideObservationPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML, or nil
// when no brokers are configured.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerAutoOffsetReset(cfg.Kafka.Consumer.OffsetReset),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaObservationsHandler registers the handler for the observations topic.
func ProvideKafkaObservationsHandler(store repository.ObservationStore, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaObservationsHandler {
	return usecase.NewKafkaObservationsHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideFeedStream creates the marketplace WebSocket stream.
func ProvideFeedStream(cfg *config.Config) repository.ObservationStream {
	return feed.New(
		cfg.Feed.APIKey,
		cfg.Feed.WebSocketURL,
		cfg.Feed.ProductIDs,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
	)
}

// ProvideRedisClient creates the shared Redis client, or nil when disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideCacheService builds the layered cache (memory over Redis), or nil
// when Redis is disabled.
func ProvideCacheService(cfg *config.Config) pkgcache.Service {
	if !cfg.Redis.Enabled {
		return nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix("cardpulse"),
	)
	if err != nil {
		return nil
	}
	return pkgcache.NewLayeredCache(rc)
}

// ProvideRecomputeQueue creates the Redis-backed recompute queue in
// producer-consumer mode, or nil when Redis is disabled.
func ProvideRecomputeQueue(cfg *config.Config, l *applogger.Logger, client *redis.Client) *queue.RedisQueue {
	if client == nil {
		return nil
	}
	return queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Recompute.Workers,
		RetryLimit: 3,
		RetryDelay: 10 * time.Second,
	}, client, queue.ModeProducerConsumer, queue.WithKeyPrefix("cardpulse:queue"))
}

// ProvideRecomputeScheduler debounces recompute requests. Nil without a queue.
func ProvideRecomputeScheduler(q *queue.RedisQueue, cache pkgcache.Service, cfg *config.Config) usecase.Recomputer {
	if q == nil {
		return nil
	}
	return usecase.NewRecomputeScheduler(q, cache, cfg.Recompute.Debounce)
}

// ProvideObservationProcessor creates the backend routing use case.
func ProvideObservationProcessor(
	pub repository.Publisher,
	store repository.ObservationStore,
	metrics repository.Metrics,
	recompute usecase.Recomputer,
	cfg *config.Config,
) *usecase.ObservationProcessor {
	return usecase.NewObservationProcessor(
		pub,
		store,
		metrics,
		recompute,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideObservationCollector creates the feed-draining use case.
func ProvideObservationCollector(
	stream repository.ObservationStream,
	processor *usecase.ObservationProcessor,
	metrics repository.Metrics,
) *usecase.ObservationCollector {
	// Throttle and buffer between the WebSocket and the backend
	pipe := mid.NewIngestPipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewObservationCollector(stream, processor, metrics, pipe)
}

// ProvideCatalog creates the ClickHouse-backed product catalog.
func ProvideCatalog(chClient *pkgch.Client, l *applogger.Logger) repository.ProductCatalog {
	c := internalrepo.NewCHCatalog(chClient)
	c.SetLogger(l)
	return c
}

// ProvideMarketAnalysis creates the analysis use case with engine settings
// from config.
func ProvideMarketAnalysis(
	catalog repository.ProductCatalog,
	cache pkgcache.Service,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.MarketAnalysisUseCase {
	return usecase.NewMarketAnalysisUseCase(catalog, cfg.EngineSettings(), cache, metrics, cfg.Cache.OverviewTTL)
}

// ProvideObservationsUseCase serves raw observation history.
func ProvideObservationsUseCase(store repository.ObservationStore) *usecase.ObservationsUseCase {
	return usecase.NewObservationsUseCase(store)
}

// ProvideSnapshotPublisher broadcasts recomputed overviews, or nil without a
// snapshots topic.
func ProvideSnapshotPublisher(producer *pkgkafka.Producer, cfg *config.Config) usecase.SnapshotPublisher {
	if producer == nil || cfg.Kafka.SnapshotsTopic == "" {
		return nil
	}
	return internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.SnapshotsTopic)
}

// ProvideTrendObserver creates the webhook notifier, or nil when disabled.
func ProvideTrendObserver(cfg *config.Config, l *applogger.Logger) usecase.TrendObserver {
	if !cfg.Notifier.Enabled {
		return nil
	}
	return notify.NewWebhookNotifier(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout, cfg.Notifier.MaxRetries, l)
}

// ProvideRecomputeJob creates the recompute queue worker.
func ProvideRecomputeJob(
	analysis *usecase.MarketAnalysisUseCase,
	snapshots usecase.SnapshotPublisher,
	observer usecase.TrendObserver,
	metrics repository.Metrics,
	l *applogger.Logger,
) *usecase.RecomputeJob {
	return usecase.NewRecomputeJob(analysis, snapshots, observer, metrics, l)
}

// ProvideHTTPHandler creates the market API handler with a short-TTL byte
// cache on top.
func ProvideHTTPHandler(
	l *applogger.Logger,
	analysis *usecase.MarketAnalysisUseCase,
	observations *usecase.ObservationsUseCase,
	collector *usecase.ObservationCollector,
	cfg *config.Config,
) *api.MarketEchoHandler {
	h := api.NewMarketEchoHandler(l, analysis, observations, collector,
		cfg.API.RateLimitPerMinute, cfg.API.RateLimitBurst)
	var bc icache.BytesCache = icache.NewTTLCache()
	if cfg.Redis.Enabled {
		bc = icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	h.SetCache(bc)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.ObservationCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaObservationsHandler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	rq *queue.RedisQueue,
	job *usecase.RecomputeJob,
	handler *api.MarketEchoHandler,
	m repository.Metrics,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NewHookChain(usecase.NewConsumerTraceHook(m)))
	}
	app := server.New(cfg, l, collector, consumer, kh, chClient)
	app.SetHTTPHandler(handler)
	if rq != nil && job != nil {
		rq.RegisterJob(job)
		app.SetQueue(rq)
	}
	if producer != nil && cfg.Kafka.LogsTopic != "" {
		app.SetLogPublisher(producer)
	}
	return app
}
