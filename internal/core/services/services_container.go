package services

import (
	"github.com/emretit/paftamobile-sub007/internal/core/ports"
	portsrepo "github.com/emretit/paftamobile-sub007/internal/core/ports/repositories"
	portssvc "github.com/emretit/paftamobile-sub007/internal/core/ports/services"
	"github.com/emretit/paftamobile-sub007/internal/platform/config"
	"github.com/emretit/paftamobile-sub007/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	feed ports.FeedClient,
	parser ports.DocumentParser,
	publisher ports.EventPublisher,
	m *metrics.IngestionMetrics,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The ingestion run is shared by the façade, the scheduler and the CLI
	ingestion := NewIngestionService(
		feed,
		parser,
		repos.RateQuoteRepo,
		repos.IngestionLogRepo,
		WithEventPublisher(publisher),
		WithIngestionMetrics(m),
	)
	container.Ingestion = ingestion

	container.ExchangeRate = NewExchangeRateService(
		repos.RateQuoteRepo,
		repos.IngestionLogRepo,
		ingestion,
		WithExchangeRateMetrics(m),
	)
	container.Schedule = NewScheduleService(repos.ScheduleRepo, cfg.ScheduleInterval)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.IngestionSvc          = (*IngestionService)(nil)
	_ portssvc.ExchangeRateSvcFacade = (*ExchangeRateService)(nil)
	_ portssvc.ScheduleSvc           = (*ScheduleService)(nil)
)
