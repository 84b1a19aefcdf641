package orderbook

import (
	"fmt"
	"sort"
)

// OrderBook maintains the bid and ask sides of a single instrument.
//
// Each side is a map of price -> PriceLevel plus a price heap (max-heap
// for bids, min-heap for asks) giving O(1) best-price reads. A separate
// id index gives O(1) cancel/modify lookup.
//
// The book trusts its callers: the matching engine is the sole writer
// and drives it single-threaded.
type OrderBook struct {
	bids map[Price]*PriceLevel
	asks map[Price]*PriceLevel

	bidPrices *priceHeap
	askPrices *priceHeap

	index map[OrderID]*Order
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids:      make(map[Price]*PriceLevel),
		asks:      make(map[Price]*PriceLevel),
		bidPrices: newPriceHeap(func(a, b Price) bool { return a > b }),
		askPrices: newPriceHeap(func(a, b Price) bool { return a < b }),
		index:     make(map[OrderID]*Order),
	}
}

func (b *OrderBook) sideLevels(side Side) (map[Price]*PriceLevel, *priceHeap) {
	if side == Buy {
		return b.bids, b.bidPrices
	}
	return b.asks, b.askPrices
}

// AddOrder rests an order in the book. The caller guarantees Qty > 0 and
// an id not already in the index.
func (b *OrderBook) AddOrder(order *Order) {
	levels, prices := b.sideLevels(order.Side)
	level, ok := levels[order.Price]
	if !ok {
		level = NewPriceLevel(order.Price)
		levels[order.Price] = level
		prices.push(order.Price)
	}
	level.Add(order)
	b.index[order.ID] = order
}

// CancelOrder removes a resting order. Returns false if the id is not
// live, which makes cancel idempotent under at-least-once delivery.
func (b *OrderBook) CancelOrder(id OrderID) bool {
	order, ok := b.index[id]
	if !ok {
		return false
	}

	levels, prices := b.sideLevels(order.Side)
	if level, ok := levels[order.Price]; ok {
		level.Remove(id)
		if level.Empty() {
			delete(levels, order.Price)
			prices.remove(order.Price)
		}
	}

	delete(b.index, id)
	return true
}

// ModifyQuantity reduces a resting order's quantity in place, preserving
// its queue position. Only strict reductions to a positive quantity are
// supported here; a reprice goes through the engine's cancel+resubmit.
func (b *OrderBook) ModifyQuantity(id OrderID, newQty Quantity) bool {
	order, ok := b.index[id]
	if !ok {
		return false
	}
	if newQty <= 0 || newQty >= order.Qty {
		return false
	}

	delta := order.Qty - newQty
	order.Qty = newQty

	levels, _ := b.sideLevels(order.Side)
	if level, ok := levels[order.Price]; ok {
		level.AdjustTotal(delta)
	}
	return true
}

// CleanLevel drops the named level if it exists and is empty. Called by
// the matching engine after draining a level; idempotent.
func (b *OrderBook) CleanLevel(side Side, price Price) {
	levels, prices := b.sideLevels(side)
	if level, ok := levels[price]; ok && level.Empty() {
		delete(levels, price)
		prices.remove(price)
	}
}

// RemoveFromIndex unlinks an id without touching any level. Used by the
// matching engine after fully filling a maker it has already popped.
func (b *OrderBook) RemoveFromIndex(id OrderID) {
	delete(b.index, id)
}

func (b *OrderBook) BestBid() (Price, bool) { return b.bidPrices.peek() }
func (b *OrderBook) BestAsk() (Price, bool) { return b.askPrices.peek() }

// Spread returns best ask minus best bid in minor units.
func (b *OrderBook) Spread() (Price, bool) {
	bid, ok1 := b.BestBid()
	ask, ok2 := b.BestAsk()
	if !ok1 || !ok2 {
		return 0, false
	}
	return ask - bid, true
}

// MidPrice returns the exact midpoint of the top of book, in minor
// units with half-cent precision. Decimal display is a presentation
// concern.
func (b *OrderBook) MidPrice() (float64, bool) {
	bid, ok1 := b.BestBid()
	ask, ok2 := b.BestAsk()
	if !ok1 || !ok2 {
		return 0, false
	}
	return float64(bid+ask) / 2, true
}

func (b *OrderBook) HasOrder(id OrderID) bool {
	_, ok := b.index[id]
	return ok
}

func (b *OrderBook) GetOrder(id OrderID) (*Order, bool) {
	order, ok := b.index[id]
	return order, ok
}

// OrderCount returns the number of live resting orders.
func (b *OrderBook) OrderCount() int { return len(b.index) }

// Depth returns the top-N levels of both sides, bids descending and
// asks ascending. levels <= 0 means all levels.
func (b *OrderBook) Depth(levels int) Depth {
	return Depth{
		Bids: snapshotSide(b.bids, levels, func(a, p Price) bool { return a > p }),
		Asks: snapshotSide(b.asks, levels, func(a, p Price) bool { return a < p }),
	}
}

func snapshotSide(levels map[Price]*PriceLevel, n int, bestFirst func(a, b Price) bool) []LevelSnapshot {
	prices := make([]Price, 0, len(levels))
	for p := range levels {
		prices = append(prices, p)
	}
	sort.Slice(prices, func(i, j int) bool { return bestFirst(prices[i], prices[j]) })

	if n > 0 && len(prices) > n {
		prices = prices[:n]
	}

	out := make([]LevelSnapshot, 0, len(prices))
	for _, p := range prices {
		level := levels[p]
		out = append(out, LevelSnapshot{
			Price:  p,
			Qty:    level.TotalQuantity(),
			Orders: level.OrderCount(),
		})
	}
	return out
}

// CheckConsistency audits the structural invariants: every level is
// non-empty with an accurate quantity total, every indexed order sits in
// exactly one level on its own side and price, and the book never
// crosses. Any error returned here means corruption.
func (b *OrderBook) CheckConsistency() error {
	seen := make(map[OrderID]bool)

	for side, levels := range map[Side]map[Price]*PriceLevel{Buy: b.bids, Sell: b.asks} {
		for price, level := range levels {
			if level.Empty() {
				return fmt.Errorf("empty %s level at %d", side, price)
			}
			var sum Quantity
			for i := 0; i < level.OrderCount(); i++ {
				o := level.orders.At(i)
				if o.Qty <= 0 {
					return fmt.Errorf("order %d resting with qty %d", o.ID, o.Qty)
				}
				if o.Side != side || o.Price != price {
					return fmt.Errorf("order %d misfiled at %s/%d", o.ID, side, price)
				}
				indexed, ok := b.index[o.ID]
				if !ok || indexed != o {
					return fmt.Errorf("order %d in level but not in index", o.ID)
				}
				if seen[o.ID] {
					return fmt.Errorf("order %d appears in more than one level", o.ID)
				}
				seen[o.ID] = true
				sum += o.Qty
			}
			if sum != level.TotalQuantity() {
				return fmt.Errorf("level %s/%d total %d, orders sum %d",
					side, price, level.TotalQuantity(), sum)
			}
		}
	}

	for id := range b.index {
		if !seen[id] {
			return fmt.Errorf("order %d in index but in no level", id)
		}
	}

	if bid, ok := b.BestBid(); ok {
		if ask, ok := b.BestAsk(); ok && bid >= ask {
			return fmt.Errorf("book crossed: bid %d >= ask %d", bid, ask)
		}
	}

	return nil
}
