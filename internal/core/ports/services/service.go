package services

// ServiceContainer holds instances of all the application services.
// Handlers, the scheduler and the CLI modes all reach the core through it.
type ServiceContainer struct {
	ExchangeRate ExchangeRateSvcFacade
	Ingestion    IngestionSvc
	Schedule     ScheduleSvc
}
