// Package tradefeed streams fills out of the engine over Kafka. The
// feed is an egress stream for downstream consumers (tape displays,
// analytics); engine state stays volatile either way.
package tradefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/uuid"
	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/joripage/limitbook/pkg/orderbook"
)

// Publisher pushes batches of fills somewhere downstream.
type Publisher interface {
	Publish(ctx context.Context, trades []orderbook.Trade) error
	Close() error
}

type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
	// VerifyBrokers dials the first broker before accepting traffic,
	// retrying under exponential backoff.
	VerifyBrokers bool `yaml:"verify_brokers"`
}

// KafkaPublisher writes one JSON message per trade, hash-keyed by taker
// id so one aggressive order's fills land on one partition in order.
type KafkaPublisher struct {
	w     *kafka.Writer
	topic string
}

func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("tradefeed: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("tradefeed: no topic configured")
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}

	if cfg.VerifyBrokers {
		boff := backoff.NewExponentialBackOff()
		boff.MaxElapsedTime = 30 * time.Second
		err := backoff.Retry(func() error {
			conn, err := kafka.Dial("tcp", cfg.Brokers[0])
			if err != nil {
				zap.S().Debugf("tradefeed broker dial failed: %v", err)
				return err
			}
			return conn.Close()
		}, boff)
		if err != nil {
			return nil, fmt.Errorf("tradefeed: brokers unreachable: %w", err)
		}
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireNone,
		Async:                  true,
	}
	return &KafkaPublisher{w: w, topic: cfg.Topic}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, trades []orderbook.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(trades))
	for _, t := range trades {
		value, err := json.Marshal(t)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   hashKey(fmt.Sprintf("%d", t.TakerOrderID)),
			Value: value,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(uuid.New().String())},
			},
			Time: time.Now(),
		})
	}
	return p.w.WriteMessages(ctx, msgs...)
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// LogPublisher is the feed-less fallback: fills go to the logger.
type LogPublisher struct {
	log *zap.SugaredLogger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log.Sugar()}
}

func (p *LogPublisher) Publish(_ context.Context, trades []orderbook.Trade) error {
	for _, t := range trades {
		p.log.Infow("fill",
			"maker_order_id", t.MakerOrderID,
			"taker_order_id", t.TakerOrderID,
			"price", t.Price,
			"quantity", t.Qty,
		)
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }

func hashKey(s string) []byte {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	sum := h.Sum64()
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(sum >> (56 - 8*i))
	}
	return b
}
