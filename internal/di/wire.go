//go:build wireinject
// +build wireinject

package di

import (
	"CardPulse/pkg/config"
	"CardPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisClient,
		ProvideCacheService,
		ProvideRecomputeQueue,

		// Repositories
		ProvideObservationStorage,
		ProvideObservationPublisher,
		ProvideFeedStream,
		ProvideCatalog,
		ProvideSnapshotPublisher,

		// Use cases
		ProvideKafkaObservationsHandler,
		ProvideRecomputeScheduler,
		ProvideObservationProcessor,
		ProvideObservationCollector,
		ProvideMarketAnalysis,
		ProvideObservationsUseCase,
		ProvideTrendObserver,
		ProvideRecomputeJob,

		// HTTP surface
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
