package ports

import (
	"context"

	"github.com/emretit/paftamobile-sub007/internal/core/domain"
)

// FeedClient retrieves the raw daily rate document. One call is one attempt.
type FeedClient interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// DocumentParser turns a raw feed document into normalized quotes.
type DocumentParser interface {
	Parse(raw []byte) (*domain.ParsedFeed, error)
}

// EventPublisher announces a freshly stored rate set to downstream consumers.
type EventPublisher interface {
	PublishRatesIngested(ctx context.Context, result domain.IngestionResult) error
	Close() error
}
