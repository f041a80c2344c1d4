package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/segmentio/kafka-go"

	"crowd-safety-service/internal/logging"
	"crowd-safety-service/internal/models"
	"crowd-safety-service/internal/monitor"
)

type Config struct {
	Broker  string
	Topic   string
	GroupID string
}

// Consumer feeds density readings from Kafka into the monitor service.
type Consumer struct {
	reader *kafka.Reader
	svc    *monitor.Service
	logger *logging.Logger
}

func NewConsumer(cfg Config, svc *monitor.Service, logger *logging.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Broker},
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	return &Consumer{reader: reader, svc: svc, logger: logger}
}

// Start consumes until ctx is cancelled. Malformed messages are logged and
// skipped; the loop never dies on bad input.
func (c *Consumer) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("Kafka consumer started on topic %s", c.reader.Config().Topic)

		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, io.ErrClosedPipe) {
					return
				}
				c.logger.Errorf("Read message failed: %v", err)
				continue
			}

			var reading models.DensityReading
			if err := json.Unmarshal(msg.Value, &reading); err != nil {
				c.logger.Errorf("Unmarshal reading failed: %v", err)
				continue
			}
			if reading.AreaID == "" || reading.Density < 0 {
				c.logger.Errorf("Invalid reading: missing area_id or negative density")
				continue
			}

			c.svc.QueueReading(reading)
			c.logger.Debugf("Queued reading: area=%s density=%.0f", reading.AreaID, reading.Density)
		}
	}()
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Errorf("Kafka reader close failed: %v", err)
	}
}
