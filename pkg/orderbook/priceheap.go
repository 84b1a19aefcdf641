package orderbook

import "container/heap"

// priceHeap keeps the best price of one side at the root. The position
// index lets the book remove an arbitrary price the moment its level
// empties, so the heap never carries stale entries.
type priceHeap struct {
	prices []Price
	less   func(a, b Price) bool
	pos    map[Price]int
}

func newPriceHeap(less func(a, b Price) bool) *priceHeap {
	return &priceHeap{
		less: less,
		pos:  make(map[Price]int),
	}
}

func (h *priceHeap) Len() int { return len(h.prices) }

func (h *priceHeap) Less(i, j int) bool {
	return h.less(h.prices[i], h.prices[j])
}

func (h *priceHeap) Swap(i, j int) {
	h.prices[i], h.prices[j] = h.prices[j], h.prices[i]
	h.pos[h.prices[i]] = i
	h.pos[h.prices[j]] = j
}

func (h *priceHeap) Push(x any) {
	price := x.(Price)
	h.pos[price] = len(h.prices)
	h.prices = append(h.prices, price)
}

func (h *priceHeap) Pop() any {
	n := len(h.prices)
	price := h.prices[n-1]
	h.prices = h.prices[:n-1]
	delete(h.pos, price)
	return price
}

func (h *priceHeap) push(price Price) {
	if _, ok := h.pos[price]; ok {
		return
	}
	heap.Push(h, price)
}

func (h *priceHeap) remove(price Price) {
	if i, ok := h.pos[price]; ok {
		heap.Remove(h, i)
	}
}

func (h *priceHeap) peek() (Price, bool) {
	if len(h.prices) == 0 {
		return 0, false
	}
	return h.prices[0], true
}
