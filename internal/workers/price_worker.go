package workers

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"wagyu_backend/ws"
)

// PriceSource yields the current quote for a symbol. The production feed is
// an exchange websocket; the default source below random-walks around
// reference prices so the dashboard works without feed credentials.
type PriceSource interface {
	Quote(symbol string) (float64, bool)
	Symbols() []string
}

// PriceTick is the payload broadcast to symbol subscribers.
type PriceTick struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"time"`
}

// PriceWorker polls the source and fans ticks out through the ws hub.
type PriceWorker struct {
	manager  *ws.WebSocketManager
	source   PriceSource
	interval time.Duration
}

func NewPriceWorker(manager *ws.WebSocketManager, source PriceSource, interval time.Duration) *PriceWorker {
	if source == nil {
		source = NewSimulatedPriceSource()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &PriceWorker{
		manager:  manager,
		source:   source,
		interval: interval,
	}
}

func (w *PriceWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *PriceWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			for _, symbol := range w.source.Symbols() {
				price, ok := w.source.Quote(symbol)
				if !ok {
					continue
				}
				w.manager.BroadcastTick(symbol, ws.OutgoingMessage{
					Type:    "tick",
					Payload: PriceTick{Symbol: symbol, Price: price, Time: now},
				})
			}
		}
	}
}

// SimulatedPriceSource random-walks around fixed reference prices.
type SimulatedPriceSource struct {
	mu     sync.Mutex
	prices map[string]float64
	rng    *rand.Rand
}

func NewSimulatedPriceSource() *SimulatedPriceSource {
	return &SimulatedPriceSource{
		prices: map[string]float64{
			"BTC": 65000,
			"ETH": 3200,
			"ES":  5500,
			"NQ":  19500,
			"CL":  78,
			"GC":  2350,
		},
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *SimulatedPriceSource) Quote(symbol string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.prices[symbol]
	if !ok {
		return 0, false
	}
	// step up to +-0.05% per tick
	price *= 1 + (s.rng.Float64()-0.5)/1000
	s.prices[symbol] = price
	return price, true
}

func (s *SimulatedPriceSource) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbols := make([]string, 0, len(s.prices))
	for symbol := range s.prices {
		symbols = append(symbols, symbol)
	}
	return symbols
}
