package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/joripage/limitbook/config"
	"github.com/joripage/limitbook/pkg/bookprint"
	"github.com/joripage/limitbook/pkg/logging"
	"github.com/joripage/limitbook/pkg/orderbook"
	"github.com/joripage/limitbook/pkg/price"
	"github.com/joripage/limitbook/pkg/tape"
	"github.com/joripage/limitbook/pkg/tradefeed"
)

const helpText = `
Commands:
    buy  <price> <qty>              Submit a limit buy order
    sell <price> <qty>              Submit a limit sell order
    cancel <id>                     Cancel an order by ID
    modify <id> <new_price> <qty>   Modify order (price change = cancel+resubmit)
    book [levels]                   Print order book (default 5 levels)
    top                             Print best bid/ask, spread, mid
    trades [n]                      Print the last n fills (default 10)
    help                            Show this menu
    quit                            Exit

Prices are in dollars (e.g. 99.50). Stored internally as fixed-point cents.
`

func main() {
	configFile := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Init(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	engine := orderbook.NewMatchingEngine()
	sessionTape := tape.NewTradeTape()
	engine.RegisterTradeCallback(sessionTape.Append)

	if cfg.TradeFeed != nil && cfg.TradeFeed.Enabled {
		pub, err := tradefeed.NewKafkaPublisher(cfg.TradeFeed.KafkaConfig)
		if err != nil {
			zap.S().Fatalw("trade feed init failed", "err", err)
		}
		defer func() { _ = pub.Close() }()

		engine.RegisterTradeCallback(func(trades []orderbook.Trade) {
			if err := pub.Publish(context.Background(), trades); err != nil {
				zap.S().Warnw("trade feed publish failed", "err", err)
			}
		})
		zap.S().Infow("trade feed enabled", "topic", cfg.TradeFeed.Topic)
	}

	fmt.Print(helpText)
	repl(engine, sessionTape, cfg.BookDepth)
}

func repl(engine *orderbook.MatchingEngine, sessionTape *tape.TradeTape, defaultDepth int) {
	out := os.Stdout
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "quit", "q":
			return

		case "help", "h":
			fmt.Fprint(out, helpText)

		case "buy", "sell":
			if len(args) != 2 {
				fmt.Fprintf(out, "  Usage: %s <price> <qty>\n", cmd)
				continue
			}
			p, err := price.Parse(args[0])
			if err != nil {
				fmt.Fprintf(out, "  Error: %v\n", err)
				continue
			}
			qty, err := parseQty(args[1])
			if err != nil {
				fmt.Fprintf(out, "  Error: %v\n", err)
				continue
			}
			side := orderbook.Buy
			if cmd == "sell" {
				side = orderbook.Sell
			}

			trades, err := engine.SubmitOrder(side, p, qty)
			if err != nil {
				fmt.Fprintf(out, "  Error: %v\n", err)
				continue
			}
			id := engine.LastOrderID()

			if len(trades) == 0 {
				fmt.Fprintf(out, "  Order #%d resting in book (%s $%s x%d)\n",
					id, cmd, args[0], qty)
				continue
			}
			bookprint.PrintTrades(out, trades)
			if engine.Book().HasOrder(id) {
				fmt.Fprintf(out, "  Order #%d partially filled — remainder resting.\n", id)
			} else {
				fmt.Fprintf(out, "  Order #%d fully filled.\n", id)
			}

		case "cancel":
			if len(args) != 1 {
				fmt.Fprintln(out, "Usage: cancel <id>")
				continue
			}
			id, err := parseID(args[0])
			if err != nil {
				fmt.Fprintf(out, "  Error: %v\n", err)
				continue
			}
			if engine.CancelOrder(id) {
				fmt.Fprintf(out, "  Order #%d cancelled.\n", id)
			} else {
				fmt.Fprintf(out, "  Order #%d not found.\n", id)
			}

		case "modify":
			if len(args) != 3 {
				fmt.Fprintln(out, "Usage: modify <id> <new_price> <qty>")
				continue
			}
			id, err := parseID(args[0])
			if err != nil {
				fmt.Fprintf(out, "  Error: %v\n", err)
				continue
			}
			p, err := price.Parse(args[1])
			if err != nil {
				fmt.Fprintf(out, "  Error: %v\n", err)
				continue
			}
			qty, err := parseQty(args[2])
			if err != nil {
				fmt.Fprintf(out, "  Error: %v\n", err)
				continue
			}

			trades, err := engine.ModifyOrder(id, p, qty)
			if err != nil {
				fmt.Fprintf(out, "  Error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "Order #%d modified.\n", id)
			bookprint.PrintTrades(out, trades)

		case "book":
			levels := defaultDepth
			if len(args) > 0 {
				if n, err := strconv.Atoi(args[0]); err == nil {
					levels = n
				}
			}
			bookprint.PrintBook(out, engine.Book(), levels)

		case "top":
			bookprint.PrintTopOfBook(out, engine.Book())

		case "trades":
			n := 10
			if len(args) > 0 {
				if v, err := strconv.Atoi(args[0]); err == nil {
					n = v
				}
			}
			recent := sessionTape.Recent(n)
			if len(recent) == 0 {
				fmt.Fprintln(out, "  No trades this session.")
				continue
			}
			bookprint.PrintTrades(out, recent)
			fmt.Fprintf(out, "  Session volume: %d across %d fills\n",
				sessionTape.TotalVolume(), sessionTape.Len())

		default:
			fmt.Fprintln(out, "Unknown command. Type 'help'.")
		}
	}
}

func parseQty(s string) (orderbook.Quantity, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return orderbook.Quantity(v), nil
}

func parseID(s string) (orderbook.OrderID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid order id %q", s)
	}
	return orderbook.OrderID(v), nil
}
