package tradefeed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/joripage/limitbook/pkg/orderbook"
)

type ConsumerConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// Consumer tails the trade topic and hands decoded fills to a handler.
type Consumer struct {
	r *kafka.Reader
}

func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("tradefeed: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("tradefeed: no topic configured")
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.FirstOffset,
		MaxWait:     500 * time.Millisecond,
		MinBytes:    1,
		MaxBytes:    10 << 20,
	})
	return &Consumer{r: r}, nil
}

// Run blocks, delivering fills until ctx is cancelled. Messages that
// fail to decode are logged and committed so the feed keeps moving.
func (c *Consumer) Run(ctx context.Context, handler func(orderbook.Trade)) error {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		var trade orderbook.Trade
		if err := json.Unmarshal(m.Value, &trade); err != nil {
			zap.S().Warnw("tradefeed: bad message", "offset", m.Offset, "err", err)
			_ = c.r.CommitMessages(ctx, m)
			continue
		}

		handler(trade)
		if err := c.r.CommitMessages(ctx, m); err != nil {
			return err
		}
	}
}

func (c *Consumer) Close() error {
	return c.r.Close()
}
