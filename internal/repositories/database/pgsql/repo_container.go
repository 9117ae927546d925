package pgsql

import (
	portsrepo "github.com/emretit/paftamobile-sub007/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the Postgres-backed repositories over one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		RateQuoteRepo:    NewPgxRateQuoteRepository(dbPool),
		IngestionLogRepo: NewPgxIngestionLogRepository(dbPool),
		ScheduleRepo:     NewPgxScheduleRepository(dbPool),
		Close:            dbPool.Close,
	}
}
