// Package notify publishes committed booking changes to Kafka.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/internal/metrics"
	"tour-marketplace/pkg/utils"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// publishTimeout bounds how long a booking request waits on the writer.
const publishTimeout = 2 * time.Second

// NewWriter returns an async writer: WriteMessages only enqueues, delivery
// results arrive through Completion.
func NewWriter(cfg utils.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
		Async:                  true,
	}
}

type Publisher struct {
	writer  MessageWriter
	async   bool
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewPublisher publishes through writer and counts a message as delivered
// once WriteMessages returns.
func NewPublisher(writer MessageWriter, m *metrics.Metrics, log *zap.Logger) *Publisher {
	return &Publisher{
		writer:  writer,
		metrics: m,
		log:     log.With(zap.String("component", "kafka_publisher")),
	}
}

// NewKafkaPublisher builds the async writer for cfg and reports deliveries
// from its Completion callback.
func NewKafkaPublisher(cfg utils.KafkaConfig, m *metrics.Metrics, log *zap.Logger) *Publisher {
	writer := NewWriter(cfg)
	p := NewPublisher(writer, m, log)
	p.async = true
	writer.Completion = p.Completion
	return p
}

// Completion records the outcome of an async batch.
func (p *Publisher) Completion(msgs []kafka.Message, err error) {
	if err != nil {
		p.metrics.PublishErrors.Add(float64(len(msgs)))
		p.log.Error("Failed to deliver booking events", zap.Error(err), zap.Int("messages", len(msgs)))
		return
	}
	p.metrics.EventsPublished.Add(float64(len(msgs)))
}

type eventPayload struct {
	Type          entity.BookingEventType `json:"type"`
	BookingID     string                  `json:"booking_id"`
	BookingCode   string                  `json:"booking_code"`
	TourPackageID string                  `json:"tour_package_id"`
	TravelerID    string                  `json:"traveler_id"`
	TravelDate    string                  `json:"travel_date"`
	FromStatus    entity.BookingStatus    `json:"from_status,omitempty"`
	ToStatus      entity.BookingStatus    `json:"to_status"`
	TotalPeople   int                     `json:"total_people"`
	TotalAmount   string                  `json:"total_amount"`
	ActorID       *string                 `json:"actor_id,omitempty"`
	OccurredAt    time.Time               `json:"occurred_at"`
}

// OnBookingEvent writes one message keyed by booking id so a booking's events
// stay ordered within a partition. The change is already committed, so the
// write outlives the request's cancellation but not publishTimeout.
func (p *Publisher) OnBookingEvent(ctx context.Context, event entity.BookingEvent) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	b := event.Booking
	payload := eventPayload{
		Type:          event.Type,
		BookingID:     b.ID.String(),
		BookingCode:   b.BookingCode,
		TourPackageID: b.TourPackageID.String(),
		TravelerID:    b.TravelerID.String(),
		TravelDate:    b.TravelDate.Format("2006-01-02"),
		FromStatus:    event.FromStatus,
		ToStatus:      event.ToStatus,
		TotalPeople:   b.TotalPeople(),
		TotalAmount:   b.TotalAmount.StringFixed(2),
		OccurredAt:    event.OccurredAt,
	}
	if event.ActorID != nil {
		actor := event.ActorID.String()
		payload.ActorID = &actor
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.BookingID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		p.metrics.PublishErrors.Inc()
		p.log.Error("Failed to publish booking event",
			zap.Error(err),
			zap.String("type", string(event.Type)),
			zap.String("booking_code", b.BookingCode),
		)
		return fmt.Errorf("publish %s event for booking %s: %w", event.Type, b.BookingCode, err)
	}

	if !p.async {
		p.metrics.EventsPublished.Inc()
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
