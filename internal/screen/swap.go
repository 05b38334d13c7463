package screen

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/paaavkata/crypto-market-dashboard/internal/collector"
	"github.com/paaavkata/crypto-market-dashboard/internal/notify"
	"github.com/paaavkata/crypto-market-dashboard/internal/swap"
	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
	"github.com/paaavkata/crypto-market-dashboard/pkg/utils"
)

const (
	DefaultFromAsset = "bitcoin"
	DefaultToAsset   = "ethereum"
	DefaultAmount    = "0.1"
)

type AssetOption struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type SwapSnapshot struct {
	Quote   swap.Quote       `json:"quote"`
	Assets  []AssetOption    `json:"assets"`
	Loading bool             `json:"loading"`
	Source  collector.Source `json:"source"`
}

// Swap is the swap simulator of one open screen.
type Swap struct {
	source DataSource
	sink   notify.Sink
	poller *collector.Poller
	logger *logrus.Logger

	mu         sync.Mutex
	quotes     *swap.Synchronizer
	loaded     bool
	loading    bool
	src        collector.Source
	recomputes int
	closed     bool
	onChange   func(SwapSnapshot)
}

func NewSwap(source DataSource, sink notify.Sink, interval time.Duration, logger *logrus.Logger) *Swap {
	s := &Swap{
		source:  source,
		sink:    sink,
		logger:  logger,
		quotes:  swap.NewSynchronizer(DefaultFromAsset, DefaultToAsset, DefaultAmount),
		loading: true,
		src:     collector.SourceNone,
	}
	s.quotes.OnChange(func(swap.Quote) {
		s.recomputes++
	})
	s.poller = collector.NewPoller("swap", interval, s.Refresh, logger)
	return s
}

func (s *Swap) OnChange(fn func(SwapSnapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Swap) Start(ctx context.Context) error {
	if err := s.poller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start swap poller: %w", err)
	}
	return nil
}

// Refresh reloads the price table. A side of the selected pair is only reset
// when it no longer resolves against the new table, and it is reset to the
// first asset that differs from the other side.
func (s *Swap) Refresh(ctx context.Context) {
	coins, src, err := s.source.FetchAssets(ctx)
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	if err == nil || (!s.loaded && len(coins) > 0) {
		s.applyPrices(coins)
		s.src = src
		s.loaded = true
	}
	s.loading = false

	snapshot := s.snapshotLocked()
	onChange := s.onChange
	s.mu.Unlock()

	if err != nil {
		s.logger.WithError(err).Warn("Swap price refresh failed")
		s.sink.Notify(notify.LoadFailedTitle, notify.LoadFailedMessage, notify.SeverityDestructive)
	}
	if onChange != nil {
		onChange(snapshot)
	}
}

func (s *Swap) SetFrom(id string) {
	s.update(func() { s.quotes.SetFrom(id) })
}

func (s *Swap) SetTo(id string) {
	s.update(func() { s.quotes.SetTo(id) })
}

// SetAmount rejects text that is not a partial non-negative decimal and keeps
// the previous amount.
func (s *Swap) SetAmount(text string) error {
	var err error
	s.update(func() { err = s.quotes.SetAmount(text) })
	return err
}

func (s *Swap) Flip() {
	s.update(func() { s.quotes.Flip() })
}

// Execute simulates the swap and reports the outcome through the sink.
func (s *Swap) Execute() (swap.Confirmation, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return swap.Confirmation{}, ErrClosed
	}
	confirmation, err := s.quotes.Execute()
	s.mu.Unlock()

	if err != nil {
		s.sink.Notify(swap.ValidationTitle(err), swap.ValidationMessage(err), notify.SeverityDestructive)
		return swap.Confirmation{}, err
	}

	s.logger.WithField("message", confirmation.Message).Info("Swap simulated")
	s.sink.Notify(confirmation.Title, confirmation.Message, notify.SeverityDefault)
	return confirmation, nil
}

func (s *Swap) Quote() swap.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quotes.Quote()
}

func (s *Swap) Snapshot() SwapSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Recomputes counts quote recomputations since the screen was opened.
func (s *Swap) Recomputes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputes
}

func (s *Swap) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.onChange = nil
	s.mu.Unlock()

	s.poller.Stop()
}

func (s *Swap) applyPrices(coins []models.Coin) {
	quote := s.quotes.Quote()
	from, to := quote.FromID, quote.ToID

	if _, ok := models.FindCoin(coins, from); !ok {
		if id, ok := firstOther(coins, to); ok {
			from = id
		}
	}
	if _, ok := models.FindCoin(coins, to); !ok {
		if id, ok := firstOther(coins, from); ok {
			to = id
		}
	}

	s.quotes.SetPair(from, to)
	s.quotes.SetPrices(coins)
}

// firstOther returns the first coin in table order whose id is not exclude,
// so a reset side never lands on the asset held by the other side.
func firstOther(coins []models.Coin, exclude string) (string, bool) {
	for _, coin := range coins {
		if coin.ID != exclude {
			return coin.ID, true
		}
	}
	return "", false
}

func (s *Swap) update(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	before := s.recomputes
	fn()
	changed := s.recomputes != before
	snapshot := s.snapshotLocked()
	onChange := s.onChange
	s.mu.Unlock()

	if changed && onChange != nil {
		onChange(snapshot)
	}
}

func (s *Swap) snapshotLocked() SwapSnapshot {
	prices := s.quotes.Prices()
	assets := make([]AssetOption, 0, len(prices))
	for _, coin := range prices {
		assets = append(assets, AssetOption{
			ID:     coin.ID,
			Name:   coin.Name,
			Symbol: coin.Symbol,
			Price:  utils.FormatCurrency(coin.Price),
		})
	}

	return SwapSnapshot{
		Quote:   s.quotes.Quote(),
		Assets:  assets,
		Loading: s.loading,
		Source:  s.src,
	}
}
