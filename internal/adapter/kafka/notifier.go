// Package kafka publishes artifact-fetched notifications so downstream
// decoders can pick up new grib2 files without polling the filesystem.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/naqfc-fetch/internal/config"
	"github.com/couchcryptid/naqfc-fetch/internal/naqfc"
	kafkago "github.com/segmentio/kafka-go"
)

// Notifier produces artifact notifications to a Kafka topic.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the configured artifact topic.
func NewNotifier(cfg *config.Config, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Notifier{writer: w, logger: logger}
}

// Notify serializes and publishes the artifacts in a single WriteMessages
// call for efficiency.
func (n *Notifier) Notify(ctx context.Context, artifacts []naqfc.Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(artifacts))
	for i := range artifacts {
		msg, err := serializeToMessage(artifacts[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return n.writer.WriteMessages(ctx, msgs...)
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

// serializeToMessage marshals an Artifact into a Kafka message keyed by the
// artifact's stable ID.
func serializeToMessage(artifact naqfc.Artifact) (kafkago.Message, error) {
	data, err := json.Marshal(artifact)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize artifact: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(artifact.ID()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "product", Value: []byte(artifact.Product)},
			{Key: "domain", Value: []byte(artifact.Domain)},
			{Key: "cycle", Value: []byte(artifact.Cycle.UTC().Format(time.RFC3339))},
		},
	}, nil
}
