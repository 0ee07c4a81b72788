package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/uk-accident-dashboard/internal/config"
	"github.com/couchcryptid/uk-accident-dashboard/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes aggregated bar groups to the export topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured export topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaExportTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBarGroups serializes groups and publishes them in a single
// WriteMessages call. An empty slice is a no-op.
func (w *Writer) PublishBarGroups(ctx context.Context, groups []domain.BarGroup, generatedAt time.Time) error {
	if len(groups) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(groups))
	for i := range groups {
		msg, err := serializeToMessage(groups[i], generatedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish bar groups: %w", err)
	}
	w.logger.Info("bar groups published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// messageKey identifies a group by severity and speed limit, so every
// update for a bar lands on the same partition.
func messageKey(g domain.BarGroup) []byte {
	return []byte(string(g.Severity) + "|" + strconv.Itoa(g.SpeedLimit))
}

// serializeToMessage marshals a BarGroup into a Kafka message.
func serializeToMessage(g domain.BarGroup, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize bar group: %w", err)
	}
	return kafkago.Message{
		Key:   messageKey(g),
		Value: data,
		Time:  generatedAt,
		Headers: []kafkago.Header{
			{Key: "severity", Value: []byte(g.Severity)},
			{Key: "generated_at", Value: []byte(generatedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
