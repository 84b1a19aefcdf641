package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/joripage/limitbook/pkg/bookprint"
	"github.com/joripage/limitbook/pkg/logging"
	"github.com/joripage/limitbook/pkg/orderbook"
	"github.com/joripage/limitbook/pkg/tradefeed"
)

func main() {
	brokers := flag.String("brokers", "localhost:9092", "comma-separated kafka brokers")
	topic := flag.String("topic", "limitbook.trades", "trade feed topic")
	group := flag.String("group", "feedtail", "consumer group id")
	flag.Parse()

	logger, err := logging.Init("info")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	consumer, err := tradefeed.NewConsumer(tradefeed.ConsumerConfig{
		Brokers: strings.Split(*brokers, ","),
		Topic:   *topic,
		GroupID: *group,
	})
	if err != nil {
		zap.S().Fatalw("consumer init failed", "err", err)
	}
	defer func() { _ = consumer.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zap.S().Infow("tailing trade feed", "topic", *topic)
	err = consumer.Run(ctx, func(t orderbook.Trade) {
		bookprint.PrintTrades(os.Stdout, []orderbook.Trade{t})
	})
	if err != nil {
		zap.S().Fatalw("consumer stopped", "err", err)
	}
}
