// Package kafka consumes component requests from Kafka and feeds them to the monitor.
package kafka

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"

	"github.com/ortelius/component-monitor/config"
	"github.com/ortelius/component-monitor/events/modules/components"
)

// NewDialer returns a dialer that uses SASL/PLAIN over TLS when credentials are configured.
func NewDialer(cfg *config.Config) *kafka.Dialer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if cfg.KafkaAPIKey != "" && cfg.KafkaAPISecret != "" {
		dialer.SASLMechanism = plain.Mechanism{
			Username: cfg.KafkaAPIKey,
			Password: cfg.KafkaAPISecret,
		}
		dialer.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return dialer
}

// RunEventProcessor checks the first broker is reachable, then consumes component requests in the
// background until ctx ends.
func RunEventProcessor(ctx context.Context, cfg *config.Config, adder components.Adder, logger *zap.Logger) error {
	if len(cfg.KafkaBrokers) == 0 || cfg.KafkaIngestTopic == "" {
		return fmt.Errorf("kafka brokers and ingest topic are required")
	}
	dialer := NewDialer(cfg)

	var err error
	for i := 1; i <= 3; i++ {
		logger.Info("Kafka connection attempt", zap.Int("attempt", i))
		var conn *kafka.Conn
		conn, err = dialer.DialContext(ctx, "tcp", cfg.KafkaBrokers[0])
		if err == nil {
			conn.Close()
			break
		}
		if i < 3 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return fmt.Errorf("connecting to kafka: %w", err)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		Topic:    cfg.KafkaIngestTopic,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})

	go func() {
		defer reader.Close()
		logger.Info("Kafka event processor started", zap.String("topic", cfg.KafkaIngestTopic))

		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("Reading kafka message failed", zap.Error(err))
				continue
			}
			if err := components.HandleComponentRequested(ctx, msg.Value, adder, logger); err != nil {
				logger.Warn("Component request rejected", zap.Int64("offset", msg.Offset), zap.Error(err))
			}
		}
	}()

	return nil
}
