package vulnerabilities

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/ortelius/component-monitor/model"
)

// Publisher announces newly recorded vulnerabilities.
type Publisher interface {
	PublishDiscovered(ctx context.Context, component model.Component, trigger string, vulns []model.Vulnerability) error
	Close() error
}

// NewEvent builds the event contract for a component and its new vulnerabilities.
func NewEvent(component model.Component, trigger string, vulns []model.Vulnerability) DiscoveredEvent {
	return DiscoveredEvent{
		EventType:     EventTypeDiscovered,
		EventID:       uuid.New().String(),
		EventTime:     time.Now().UTC(),
		SchemaVersion: "v1",
		Component: ComponentRef{
			ID:         component.ID,
			Name:       component.Name,
			Version:    component.Version,
			Type:       component.Type,
			Ecosystem:  component.Ecosystem,
			Identifier: component.Identifier,
		},
		Trigger:         trigger,
		Vulnerabilities: vulns,
	}
}

// Producer handles sending discovery events to Kafka
type Producer struct {
	Writer *kafka.Writer
}

// NewProducer initializes a new Kafka writer for vulnerability events
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		Writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

// PublishDiscovered sends the event keyed by component id so a component's events stay ordered
func (p *Producer) PublishDiscovered(ctx context.Context, component model.Component, trigger string, vulns []model.Vulnerability) error {
	if len(vulns) == 0 {
		return nil
	}

	payload, err := json.Marshal(NewEvent(component, trigger, vulns))
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(component.ID, 10)),
		Value: payload,
	})
}

// Close cleans up the Kafka writer
func (p *Producer) Close() error {
	return p.Writer.Close()
}

// Noop discards events. It is used when no brokers are configured.
type Noop struct{}

// PublishDiscovered implements Publisher.
func (Noop) PublishDiscovered(context.Context, model.Component, string, []model.Vulnerability) error {
	return nil
}

// Close implements Publisher.
func (Noop) Close() error { return nil }
