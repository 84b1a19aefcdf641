package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/joripage/limitbook/pkg/orderbook"
)

const (
	numOrders = 1_000_000
	minPrice  = 10000 // cents
	maxPrice  = 20000
	minQty    = 1
	maxQty    = 100
)

func randomSubmit(e *orderbook.MatchingEngine) {
	side := orderbook.Buy
	if rand.Intn(2) == 0 {
		side = orderbook.Sell
	}
	price := orderbook.Price(minPrice + rand.Int63n(maxPrice-minPrice+1))
	qty := orderbook.Quantity(rand.Intn(maxQty-minQty+1) + minQty)

	_, _ = e.SubmitOrder(side, price, qty)
}

func main() {
	engine := orderbook.NewMatchingEngine()

	totalMatched := 0
	totalQty := orderbook.Quantity(0)
	engine.RegisterTradeCallback(func(trades []orderbook.Trade) {
		for _, t := range trades {
			totalMatched++
			totalQty += t.Qty
		}
	})

	start := time.Now()
	for i := 0; i < numOrders; i++ {
		randomSubmit(engine)
	}
	elapsed := time.Since(start)

	fmt.Println("--------")
	fmt.Printf("Total Orders     : %d\n", numOrders)
	fmt.Printf("Total Matches    : %d\n", totalMatched)
	fmt.Printf("Total Matched Qty: %d\n", totalQty)
	fmt.Printf("Resting Orders   : %d\n", engine.Book().OrderCount())
	fmt.Printf("Time Taken       : %s\n", elapsed)
}
