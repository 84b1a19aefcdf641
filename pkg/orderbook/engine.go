package orderbook

import (
	"fmt"
	"time"
)

// MatchingEngine drives price-time priority matching over a single
// instrument's book.
//
// Matching rules:
//   - A new BUY matches resting asks while ask price <= buy price.
//   - A new SELL matches resting bids while bid price >= sell price.
//   - Fills happen at the maker's resting price.
//   - Makers at one price fill in FIFO order; the resting side always
//     wins the tie against the incoming order.
//   - Any unfilled remainder rests in the book.
//
// The engine owns all Order objects for the life of the session and is
// deterministic: the same call sequence produces the same trades and
// the same final book. It is not safe for concurrent use; multiple
// producers must serialize externally.
type MatchingEngine struct {
	book        *OrderBook
	storage     []*Order
	nextOrderID OrderID

	callbacks []func([]Trade)
}

func NewMatchingEngine() *MatchingEngine {
	return &MatchingEngine{
		book:        NewOrderBook(),
		nextOrderID: 1,
	}
}

// RegisterTradeCallback adds a hook invoked with every non-empty batch
// of fills produced by SubmitOrder or ModifyOrder.
func (e *MatchingEngine) RegisterTradeCallback(fn func([]Trade)) {
	e.callbacks = append(e.callbacks, fn)
}

// SubmitOrder accepts a new limit order, matches it against the opposite
// side, and rests any remainder. Returns the fills generated, possibly
// none.
func (e *MatchingEngine) SubmitOrder(side Side, price Price, qty Quantity) ([]Trade, error) {
	if price <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPrice, price)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}

	order := &Order{
		ID:          e.nextOrderID,
		Side:        side,
		Price:       price,
		Qty:         qty,
		OriginalQty: qty,
		Timestamp:   Timestamp(time.Now().UnixNano()),
	}
	e.nextOrderID++
	e.storage = append(e.storage, order)

	trades := e.match(order)

	if order.Qty > 0 {
		e.book.AddOrder(order)
	}

	if len(trades) > 0 {
		for _, cb := range e.callbacks {
			cb(trades)
		}
	}

	return trades, nil
}

// CancelOrder removes a resting order. False means the id was not live.
func (e *MatchingEngine) CancelOrder(id OrderID) bool {
	return e.book.CancelOrder(id)
}

// ModifyOrder changes a resting order.
//
// Reducing quantity at the same price preserves time priority. Changing
// price is cancel + resubmit: the order forfeits its queue position,
// gets a fresh id (see LastOrderID), and may match immediately.
func (e *MatchingEngine) ModifyOrder(id OrderID, newPrice Price, newQty Quantity) ([]Trade, error) {
	order, ok := e.book.GetOrder(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, id)
	}

	if newPrice == order.Price {
		if newQty <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, newQty)
		}
		if !e.book.ModifyQuantity(id, newQty) {
			return nil, fmt.Errorf("%w: qty %d -> %d", ErrInvalidModify, order.Qty, newQty)
		}
		return nil, nil
	}

	// Validate before cancelling so a bad reprice can't destroy the
	// resting order.
	if newPrice <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPrice, newPrice)
	}
	if newQty <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, newQty)
	}

	side := order.Side
	e.book.CancelOrder(id)
	return e.SubmitOrder(side, newPrice, newQty)
}

// Book exposes the book for queries. Callers must not mutate it.
func (e *MatchingEngine) Book() *OrderBook { return e.book }

// LastOrderID returns the most recently assigned order id. It never
// decreases and ids are never reused within a session.
func (e *MatchingEngine) LastOrderID() OrderID { return e.nextOrderID - 1 }

func (e *MatchingEngine) match(taker *Order) []Trade {
	var trades []Trade

	levels, prices := e.book.sideLevels(taker.Side.Opposite())

	for taker.Qty > 0 {
		bestPrice, ok := prices.peek()
		if !ok || !crosses(taker, bestPrice) {
			break
		}

		level := levels[bestPrice]
		trades = e.fillLevel(taker, level, trades)

		if level.Empty() {
			e.book.CleanLevel(taker.Side.Opposite(), bestPrice)
		}
	}

	return trades
}

func crosses(taker *Order, levelPrice Price) bool {
	if taker.Side == Buy {
		return levelPrice <= taker.Price
	}
	return levelPrice >= taker.Price
}

// fillLevel fills as much as possible at a single price level.
func (e *MatchingEngine) fillLevel(taker *Order, level *PriceLevel, trades []Trade) []Trade {
	for taker.Qty > 0 && !level.Empty() {
		maker := level.Front()
		fillQty := min(taker.Qty, maker.Qty)

		trades = append(trades, Trade{
			MakerOrderID: maker.ID,
			TakerOrderID: taker.ID,
			Price:        maker.Price,
			Qty:          fillQty,
		})

		taker.Qty -= fillQty
		maker.Qty -= fillQty
		level.AdjustTotal(fillQty)

		if maker.Qty == 0 {
			e.book.RemoveFromIndex(maker.ID)
			level.PopFront()
		}
	}
	return trades
}
