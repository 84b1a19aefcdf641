// Package bookprint renders the order book and trade feed for the
// interactive console.
package bookprint

import (
	"fmt"
	"io"

	"github.com/joripage/limitbook/pkg/orderbook"
	"github.com/joripage/limitbook/pkg/price"
)

const (
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorReset = "\033[0m"
)

// PrintBook writes a two-sided depth table, asks above bids with the
// best prices meeting in the middle.
func PrintBook(w io.Writer, book *orderbook.OrderBook, levels int) {
	depth := book.Depth(levels)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════╗")
	fmt.Fprintln(w, "║            LIMIT ORDER BOOK              ║")
	fmt.Fprintln(w, "╠══════════════════════╦═══════════════════╣")
	fmt.Fprintln(w, "║   Price       Qty    ║  Side             ║")
	fmt.Fprintln(w, "╠══════════════════════╬═══════════════════╣")

	// Asks print worst-first so the best ask sits next to the spread line.
	for i := len(depth.Asks) - 1; i >= 0; i-- {
		l := depth.Asks[i]
		fmt.Fprintf(w, "║  %s%8s   %6d%s    ║  ASK              ║\n",
			colorRed, price.Format(l.Price), l.Qty, colorReset)
	}

	fmt.Fprintln(w, "╠══════════════════════╬═══════════════════╣")
	if spread, ok := book.Spread(); ok {
		mid, _ := book.MidPrice()
		fmt.Fprintf(w, "║  spread: $%-7s    ║  mid: $%-9s  ║\n",
			price.Format(spread), price.FormatMid(mid))
		fmt.Fprintln(w, "╠══════════════════════╬═══════════════════╣")
	}

	for _, l := range depth.Bids {
		fmt.Fprintf(w, "║  %s%8s   %6d%s    ║  BID              ║\n",
			colorGreen, price.Format(l.Price), l.Qty, colorReset)
	}

	fmt.Fprintln(w, "╚══════════════════════╩═══════════════════╝")
}

// PrintTrades writes one [FILL] line per trade. No output for an empty
// batch.
func PrintTrades(w io.Writer, trades []orderbook.Trade) {
	if len(trades) == 0 {
		return
	}
	fmt.Fprintln(w, "\nTrades executed:")
	for _, t := range trades {
		fmt.Fprintf(w, "     [FILL] maker=#%d taker=#%d  price=$%s  qty=%d\n",
			t.MakerOrderID, t.TakerOrderID, price.Format(t.Price), t.Qty)
	}
}

// PrintTopOfBook writes a one-line best bid / best ask summary.
func PrintTopOfBook(w io.Writer, book *orderbook.OrderBook) {
	fmt.Fprint(w, "  Top-of-book → ")

	bid, hasBid := book.BestBid()
	ask, hasAsk := book.BestAsk()

	if hasBid {
		fmt.Fprintf(w, "BID $%s", price.Format(bid))
	} else {
		fmt.Fprint(w, "BID [empty]")
	}
	fmt.Fprint(w, "  |  ")
	if hasAsk {
		fmt.Fprintf(w, "ASK $%s", price.Format(ask))
	} else {
		fmt.Fprint(w, "ASK [empty]")
	}

	if hasBid && hasAsk {
		spread, _ := book.Spread()
		mid, _ := book.MidPrice()
		fmt.Fprintf(w, "  |  spread $%s  mid $%s", price.Format(spread), price.FormatMid(mid))
	}
	fmt.Fprintln(w)
}
