// Package tape keeps the session's fill history in memory so the
// console can replay recent trades and report volume.
package tape

import (
	"sync"

	"github.com/joripage/limitbook/pkg/orderbook"
)

type TradeTape struct {
	mu       sync.RWMutex
	trades   []orderbook.Trade
	totalQty orderbook.Quantity
}

func NewTradeTape() *TradeTape {
	return &TradeTape{}
}

// Append records a batch of fills. Safe to register directly as an
// engine trade callback.
func (t *TradeTape) Append(trades []orderbook.Trade) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.trades = append(t.trades, trades...)
	for _, tr := range trades {
		t.totalQty += tr.Qty
	}
}

// Recent returns the last n fills, oldest first. n <= 0 means all.
func (t *TradeTape) Recent(n int) []orderbook.Trade {
	t.mu.RLock()
	defer t.mu.RUnlock()

	start := 0
	if n > 0 && len(t.trades) > n {
		start = len(t.trades) - n
	}
	out := make([]orderbook.Trade, len(t.trades)-start)
	copy(out, t.trades[start:])
	return out
}

func (t *TradeTape) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.trades)
}

// TotalVolume returns the sum of all filled quantities this session.
func (t *TradeTape) TotalVolume() orderbook.Quantity {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalQty
}
