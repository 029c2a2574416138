package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"ms-restaurant/internal/models"

	"github.com/segmentio/kafka-go"
)

const (
	TopicOrderPlaced        = "order_placed"
	TopicOrderStatusChanged = "order_status_changed"
	TopicOrderLineAdded     = "order_line_added"
	TopicOrderLineCancelled = "order_line_cancelled"
	TopicReservationChanged = "reservation_changed"
)

// Producer streams order and reservation events. One writer, topic chosen
// per message. Publishing is best-effort: callers log failures and never
// roll back committed state.
type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

// Disabled returns a producer that drops every event. Used when publishing
// is switched off by configuration.
func Disabled() *Producer {
	return &Producer{}
}

type orderEvent struct {
	Order models.Order      `json:"order"`
	Line  *models.OrderLine `json:"line,omitempty"`
}

func (p *Producer) publish(topic, key string, payload any) error {
	if p.Writer == nil {
		return nil
	}
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: msgBytes,
		},
	)
}

func (p *Producer) PublishOrderPlaced(order models.Order) error {
	return p.publish(TopicOrderPlaced, order.ID, orderEvent{Order: order})
}

func (p *Producer) PublishOrderStatusChanged(order models.Order) error {
	return p.publish(TopicOrderStatusChanged, order.ID, orderEvent{Order: order})
}

func (p *Producer) PublishLineAdded(order models.Order, line models.OrderLine) error {
	return p.publish(TopicOrderLineAdded, order.ID, orderEvent{Order: order, Line: &line})
}

func (p *Producer) PublishLineCancelled(order models.Order, line models.OrderLine) error {
	return p.publish(TopicOrderLineCancelled, order.ID, orderEvent{Order: order, Line: &line})
}

func (p *Producer) PublishReservationChanged(res models.Reservation) error {
	return p.publish(TopicReservationChanged, res.ID, res)
}

func (p *Producer) Close() error {
	if p.Writer == nil {
		return nil
	}
	return p.Writer.Close()
}
