package orderbook

import (
	"errors"
	"testing"
)

func submit(t *testing.T, e *MatchingEngine, side Side, price Price, qty Quantity) []Trade {
	t.Helper()
	trades, err := e.SubmitOrder(side, price, qty)
	if err != nil {
		t.Fatalf("submit %s %d x%d: %v", side, price, qty, err)
	}
	if err := e.Book().CheckConsistency(); err != nil {
		t.Fatalf("book inconsistent after submit: %v", err)
	}
	return trades
}

func TestRestingNoMatch(t *testing.T) {
	e := NewMatchingEngine()
	trades := submit(t, e, Buy, 10000, 100)

	if len(trades) != 0 {
		t.Fatalf("expected no trades, got %+v", trades)
	}
	if bid, ok := e.Book().BestBid(); !ok || bid != 10000 {
		t.Errorf("expected best bid 10000, got %d", bid)
	}
	if _, ok := e.Book().BestAsk(); ok {
		t.Errorf("expected no best ask")
	}
}

func TestExactMatch(t *testing.T) {
	e := NewMatchingEngine()
	submit(t, e, Buy, 10000, 100)
	trades := submit(t, e, Sell, 10000, 100)

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.MakerOrderID != 1 || tr.TakerOrderID != 2 || tr.Price != 10000 || tr.Qty != 100 {
		t.Errorf("unexpected trade %+v", tr)
	}
	if e.Book().OrderCount() != 0 {
		t.Errorf("book should be empty after full cross")
	}
}

func TestPartialFillRemainderRests(t *testing.T) {
	e := NewMatchingEngine()
	submit(t, e, Buy, 10000, 50)
	trades := submit(t, e, Sell, 10000, 100)
	sellID := e.LastOrderID()

	if len(trades) != 1 || trades[0].Qty != 50 {
		t.Fatalf("expected one 50-qty fill, got %+v", trades)
	}
	if !e.Book().HasOrder(sellID) {
		t.Fatalf("remainder should rest as order %d", sellID)
	}
	ask, ok := e.Book().BestAsk()
	if !ok || ask != 10000 {
		t.Errorf("expected best ask 10000, got %d", ask)
	}
	depth := e.Book().Depth(1)
	if len(depth.Asks) != 1 || depth.Asks[0].Qty != 50 {
		t.Errorf("expected ask level qty 50, got %+v", depth.Asks)
	}
}

func TestPricePriority(t *testing.T) {
	e := NewMatchingEngine()
	submit(t, e, Buy, 9900, 100)  // worse bid
	submit(t, e, Buy, 10000, 100) // better bid
	trades := submit(t, e, Sell, 9800, 100)

	if len(trades) != 1 || trades[0].Price != 10000 {
		t.Fatalf("best bid should be hit first, got %+v", trades)
	}
}

func TestTimePriority(t *testing.T) {
	e := NewMatchingEngine()
	submit(t, e, Buy, 10000, 50)
	firstID := e.LastOrderID()
	submit(t, e, Buy, 10000, 50)

	trades := submit(t, e, Sell, 10000, 50)
	if len(trades) != 1 || trades[0].MakerOrderID != firstID {
		t.Fatalf("earlier order should fill first, got %+v", trades)
	}
}

func TestMultiLevelSweep(t *testing.T) {
	e := NewMatchingEngine()
	submit(t, e, Sell, 10000, 50)
	submit(t, e, Sell, 10100, 50)
	submit(t, e, Sell, 10200, 50)

	trades := submit(t, e, Buy, 10200, 150)

	if len(trades) != 3 {
		t.Fatalf("expected 3 fills across 3 levels, got %d", len(trades))
	}
	wantPrices := []Price{10000, 10100, 10200}
	var total Quantity
	for i, tr := range trades {
		if tr.Price != wantPrices[i] {
			t.Errorf("fill %d at %d, want %d", i, tr.Price, wantPrices[i])
		}
		total += tr.Qty
	}
	if total != 150 {
		t.Errorf("expected total qty 150, got %d", total)
	}
	if _, ok := e.Book().BestAsk(); ok {
		t.Errorf("ask side should be swept empty")
	}
}

func TestTakerWorseThanBookRests(t *testing.T) {
	e := NewMatchingEngine()
	submit(t, e, Sell, 10100, 100)
	trades := submit(t, e, Buy, 10000, 100)

	if len(trades) != 0 {
		t.Fatalf("non-crossing buy should not trade, got %+v", trades)
	}
	if !e.Book().HasOrder(e.LastOrderID()) {
		t.Errorf("full order should rest")
	}
	bid, _ := e.Book().BestBid()
	ask, _ := e.Book().BestAsk()
	if bid >= ask {
		t.Errorf("book crossed: %d >= %d", bid, ask)
	}
}

func TestRestingSideWinsPriceTie(t *testing.T) {
	e := NewMatchingEngine()
	submit(t, e, Sell, 10000, 50)
	restingID := e.LastOrderID()

	// Incoming buy at the same price never jumps ahead of the resting
	// sell; it takes against it.
	trades := submit(t, e, Buy, 10000, 30)
	if len(trades) != 1 || trades[0].MakerOrderID != restingID {
		t.Fatalf("resting order should be the maker, got %+v", trades)
	}
	if trades[0].TakerOrderID != e.LastOrderID() {
		t.Errorf("incoming order should be the taker")
	}
}

func TestConservationOfQuantity(t *testing.T) {
	e := NewMatchingEngine()
	submit(t, e, Sell, 10000, 30)
	submit(t, e, Sell, 10000, 30)
	trades := submit(t, e, Buy, 10000, 100)

	var filled Quantity
	for _, tr := range trades {
		filled += tr.Qty
	}
	if filled != 60 {
		t.Fatalf("expected 60 filled, got %d", filled)
	}
	rest, ok := e.Book().GetOrder(e.LastOrderID())
	if !ok || rest.Qty != 40 {
		t.Fatalf("taker remainder should be 40, got %+v", rest)
	}
	if rest.OriginalQty != 100 {
		t.Errorf("original qty must be immutable, got %d", rest.OriginalQty)
	}
}

func TestSubmitValidation(t *testing.T) {
	e := NewMatchingEngine()

	if _, err := e.SubmitOrder(Buy, 0, 100); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("zero price should be ErrInvalidPrice, got %v", err)
	}
	if _, err := e.SubmitOrder(Buy, -100, 100); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("negative price should be ErrInvalidPrice, got %v", err)
	}
	if _, err := e.SubmitOrder(Sell, 10000, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero qty should be ErrInvalidQuantity, got %v", err)
	}

	// Rejected submissions allocate no order.
	if e.LastOrderID() != 0 {
		t.Errorf("no order id should be consumed, got %d", e.LastOrderID())
	}
}

func TestCancelEngine(t *testing.T) {
	e := NewMatchingEngine()
	submit(t, e, Buy, 10000, 100)
	id := e.LastOrderID()

	if !e.CancelOrder(id) {
		t.Fatalf("cancel of live order should succeed")
	}
	if _, ok := e.Book().BestBid(); ok {
		t.Errorf("book should be empty after cancel")
	}
	if e.CancelOrder(id) {
		t.Errorf("repeated cancel should return false")
	}
	if e.CancelOrder(9999) {
		t.Errorf("cancel of unknown id should return false")
	}
}

func TestModifyReduceSamePrice(t *testing.T) {
	e := NewMatchingEngine()
	submit(t, e, Buy, 10000, 100)
	id := e.LastOrderID()

	trades, err := e.ModifyOrder(id, 10000, 50)
	if err != nil {
		t.Fatalf("reduce should succeed: %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("reduce should produce no trades")
	}
	if !e.Book().HasOrder(id) {
		t.Errorf("order should keep its id after reduce")
	}
	o, _ := e.Book().GetOrder(id)
	if o.Qty != 50 {
		t.Errorf("expected remaining 50, got %d", o.Qty)
	}
}

func TestModifyErrors(t *testing.T) {
	e := NewMatchingEngine()
	submit(t, e, Buy, 10000, 100)
	id := e.LastOrderID()

	if _, err := e.ModifyOrder(9999, 10000, 50); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("unknown id should be ErrOrderNotFound, got %v", err)
	}
	if _, err := e.ModifyOrder(id, 10000, 100); !errors.Is(err, ErrInvalidModify) {
		t.Errorf("no-op modify should be ErrInvalidModify, got %v", err)
	}
	if _, err := e.ModifyOrder(id, 10000, 200); !errors.Is(err, ErrInvalidModify) {
		t.Errorf("increase should be ErrInvalidModify, got %v", err)
	}
	if _, err := e.ModifyOrder(id, 10000, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero qty should be ErrInvalidQuantity, got %v", err)
	}
	if _, err := e.ModifyOrder(id, -5, 100); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("bad reprice should be ErrInvalidPrice, got %v", err)
	}

	// Every failure above leaves the order untouched.
	o, ok := e.Book().GetOrder(id)
	if !ok || o.Qty != 100 || o.Price != 10000 {
		t.Fatalf("failed modifies must not mutate the order, got %+v", o)
	}
	if err := e.Book().CheckConsistency(); err != nil {
		t.Fatalf("book inconsistent: %v", err)
	}
}

func TestModifyPriceTriggersMatch(t *testing.T) {
	e := NewMatchingEngine()
	submit(t, e, Sell, 10100, 100)
	submit(t, e, Buy, 9900, 100)
	buyID := e.LastOrderID()

	trades, err := e.ModifyOrder(buyID, 10100, 100)
	if err != nil {
		t.Fatalf("reprice should succeed: %v", err)
	}
	if len(trades) != 1 || trades[0].Qty != 100 {
		t.Fatalf("reprice should trigger one full fill, got %+v", trades)
	}
	if e.Book().HasOrder(buyID) {
		t.Errorf("original id should no longer be live")
	}
	if e.LastOrderID() == buyID {
		t.Errorf("reprice must assign a new id")
	}
	if err := e.Book().CheckConsistency(); err != nil {
		t.Fatalf("book inconsistent: %v", err)
	}
}

func TestModifyPriceForfeitsTimePriority(t *testing.T) {
	e := NewMatchingEngine()
	submit(t, e, Buy, 10000, 50)
	movedID := e.LastOrderID()
	submit(t, e, Buy, 9900, 50)
	stayingID := e.LastOrderID()

	// Move the first order down to 9900; it joins behind stayingID.
	_, err := e.ModifyOrder(movedID, 9900, 50)
	if err != nil {
		t.Fatalf("reprice: %v", err)
	}
	newID := e.LastOrderID()

	trades := submit(t, e, Sell, 9900, 50)
	if len(trades) != 1 || trades[0].MakerOrderID != stayingID {
		t.Fatalf("repriced order should be at the tail, got %+v", trades)
	}
	if !e.Book().HasOrder(newID) {
		t.Errorf("repriced order should still rest under its new id")
	}
}

func TestTradeCallbacks(t *testing.T) {
	e := NewMatchingEngine()

	var batches [][]Trade
	e.RegisterTradeCallback(func(trades []Trade) {
		batches = append(batches, trades)
	})

	submit(t, e, Buy, 10000, 100) // no fills, no callback
	if len(batches) != 0 {
		t.Fatalf("callback must not fire on empty trade lists")
	}

	submit(t, e, Sell, 10000, 60)
	if len(batches) != 1 || len(batches[0]) != 1 || batches[0][0].Qty != 60 {
		t.Fatalf("expected one batch with one 60-qty fill, got %+v", batches)
	}
}

func TestIDsNeverReused(t *testing.T) {
	e := NewMatchingEngine()
	submit(t, e, Buy, 10000, 100)
	submit(t, e, Sell, 10000, 100) // both gone from the book

	submit(t, e, Buy, 9900, 10)
	if e.LastOrderID() != 3 {
		t.Errorf("ids must keep increasing, got %d", e.LastOrderID())
	}
}

func BenchmarkEngineMatch(b *testing.B) {
	e := NewMatchingEngine()
	for i := 0; i < 10_000; i++ {
		_, _ = e.SubmitOrder(Sell, Price(10000+i%5*100), 10)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.SubmitOrder(Buy, 10100, 10)
	}
}
