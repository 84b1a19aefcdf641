package orderbook

import "github.com/gammazero/deque"

// PriceLevel holds all resting orders at one price on one side, in time
// priority (FIFO). totalQty caches the sum of remaining quantities so
// depth queries don't walk the queue.
type PriceLevel struct {
	price    Price
	orders   deque.Deque[*Order]
	totalQty Quantity
}

func NewPriceLevel(price Price) *PriceLevel {
	return &PriceLevel{price: price}
}

func (l *PriceLevel) Price() Price { return l.price }

// Add appends an order to the back of the queue.
func (l *PriceLevel) Add(order *Order) {
	l.orders.PushBack(order)
	l.totalQty += order.Qty
}

// Front returns the oldest order, or nil if the level is empty.
func (l *PriceLevel) Front() *Order {
	if l.orders.Len() == 0 {
		return nil
	}
	return l.orders.Front()
}

// PopFront removes the oldest order.
func (l *PriceLevel) PopFront() {
	if l.orders.Len() == 0 {
		return
	}
	l.totalQty -= l.orders.Front().Qty
	l.orders.PopFront()
}

// Remove unlinks the order with the given id. Linear scan; levels are
// short in practice.
func (l *PriceLevel) Remove(id OrderID) bool {
	for i := 0; i < l.orders.Len(); i++ {
		o := l.orders.At(i)
		if o.ID == id {
			l.totalQty -= o.Qty
			l.orders.Remove(i)
			return true
		}
	}
	return false
}

// AdjustTotal subtracts delta from the cached total. The sign convention
// is "amount removed": callers pass the quantity taken out of an order
// whose Qty they reduced in place.
func (l *PriceLevel) AdjustTotal(delta Quantity) {
	l.totalQty -= delta
}

// ReduceFront lowers the front order's quantity without changing its
// queue position.
func (l *PriceLevel) ReduceFront(qty Quantity) {
	if l.orders.Len() == 0 {
		return
	}
	l.orders.Front().Qty -= qty
	l.totalQty -= qty
}

func (l *PriceLevel) TotalQuantity() Quantity { return l.totalQty }
func (l *PriceLevel) Empty() bool             { return l.orders.Len() == 0 }
func (l *PriceLevel) OrderCount() int         { return l.orders.Len() }
