package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Both the Postgres and the SQLite stores fill it.
type RepositoryProvider struct {
	RateQuoteRepo    RateQuoteRepositoryFacade
	IngestionLogRepo IngestionLogRepositoryFacade
	ScheduleRepo     ScheduleRepositoryFacade
	// Close releases the underlying connection pool.
	Close func()
}
