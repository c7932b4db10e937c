//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"shiftwatch/internal"
	"shiftwatch/internal/controllers"
	"shiftwatch/internal/extraction"
	"shiftwatch/internal/notify"
	"shiftwatch/internal/providers"
	"shiftwatch/internal/scheduler"
	"shiftwatch/internal/services"
	"shiftwatch/internal/store"
	"shiftwatch/internal/structures"
)

var coreSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewLogProvider,
	providers.NewMetricsProvider,
	providers.NewInstrumentedCacheProvider,
	providers.NewHTTPClientProvider,

	store.NewKVProvider,
	store.NewRepositoryProvider,
	store.NewMigratorProvider,

	extraction.NewFetcher,
	wire.Bind(new(extraction.FetcherInterface), new(*extraction.Fetcher)),
	notify.NewDispatcher,
	services.NewMonitorService,
	wire.Bind(new(services.MonitorServiceInterface), new(*services.MonitorService)),
	scheduler.NewScheduler,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {
	wire.Build(
		coreSet,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}

func InitRunner(cfg *structures.CliFlags) (*internal.Runner, func(), error) {
	wire.Build(
		coreSet,
		internal.NewRunner,
	)

	return nil, nil, nil
}
