package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	"github.com/emretit/paftamobile-sub007/internal/core/ports"
	"github.com/segmentio/kafka-go"
)

// RatesIngestedEvent is the message published after a rate set was stored.
type RatesIngestedEvent struct {
	EventType     string       `json:"eventType"`
	EffectiveDate string       `json:"effectiveDate"`
	Trigger       string       `json:"trigger"`
	Count         int          `json:"count"`
	Quotes        []EventQuote `json:"quotes"`
	PublishedAt   time.Time    `json:"publishedAt"`
}

// EventQuote carries rates as strings so consumers keep full precision.
type EventQuote struct {
	CurrencyCode    string `json:"currencyCode"`
	Unit            int    `json:"unit"`
	ForexBuying     string `json:"forexBuying"`
	ForexSelling    string `json:"forexSelling"`
	BanknoteBuying  string `json:"banknoteBuying"`
	BanknoteSelling string `json:"banknoteSelling"`
}

const ratesIngestedType = "exchange_rates.ingested"

// NewRatesIngestedEvent builds the event payload for result.
func NewRatesIngestedEvent(result domain.IngestionResult, now time.Time) RatesIngestedEvent {
	event := RatesIngestedEvent{
		EventType:     ratesIngestedType,
		EffectiveDate: result.EffectiveDate.Format("2006-01-02"),
		Trigger:       string(result.Trigger),
		Count:         len(result.Quotes),
		Quotes:        make([]EventQuote, 0, len(result.Quotes)),
		PublishedAt:   now.UTC(),
	}
	for _, q := range result.Quotes {
		event.Quotes = append(event.Quotes, EventQuote{
			CurrencyCode:    q.CurrencyCode,
			Unit:            q.Unit,
			ForexBuying:     q.ForexBuying.String(),
			ForexSelling:    q.ForexSelling.String(),
			BanknoteBuying:  q.BanknoteBuying.String(),
			BanknoteSelling: q.BanknoteSelling.String(),
		})
	}
	return event
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes rate events to a Kafka topic.
type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
		now: time.Now,
	}
}

// PublishRatesIngested writes one message keyed by the effective date.
func (k *KafkaPublisher) PublishRatesIngested(ctx context.Context, result domain.IngestionResult) error {
	event := NewRatesIngestedEvent(result, k.now())
	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal rates event: %w", err)
	}

	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EffectiveDate),
		Value: msg,
		Time:  event.PublishedAt,
	}); err != nil {
		return fmt.Errorf("failed to publish rates event: %w", err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

var _ ports.EventPublisher = NoopPublisher{}

func (NoopPublisher) PublishRatesIngested(context.Context, domain.IngestionResult) error { return nil }
func (NoopPublisher) Close() error                                                       { return nil }
