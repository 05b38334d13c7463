package screen

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/paaavkata/crypto-market-dashboard/internal/listing"
	"github.com/paaavkata/crypto-market-dashboard/internal/notify"
	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
)

// Search is the quick-jump overlay. Coins are loaded the first time it
// opens and kept for the lifetime of the screen.
type Search struct {
	source DataSource
	sink   notify.Sink
	logger *logrus.Logger

	mu      sync.Mutex
	open    bool
	loading bool
	coins   []models.Coin
	closed  bool
}

func NewSearch(source DataSource, sink notify.Sink, logger *logrus.Logger) *Search {
	return &Search{
		source: source,
		sink:   sink,
		logger: logger,
	}
}

// Toggle flips the overlay, as the keyboard shortcut does, and reports
// whether it is now open.
func (s *Search) Toggle(ctx context.Context) bool {
	s.mu.Lock()
	s.open = !s.open
	open := s.open
	s.mu.Unlock()

	if open {
		s.ensureLoaded(ctx)
	}
	return open
}

// Open shows the overlay, loading coins if needed.
func (s *Search) Open(ctx context.Context) {
	s.mu.Lock()
	s.open = true
	s.mu.Unlock()

	s.ensureLoaded(ctx)
}

func (s *Search) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Search) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Results matches name or symbol, ignoring case.
func (s *Search) Results(query string) []models.Coin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return listing.Filter(s.coins, query)
}

// Select closes the overlay and returns the detail route of the coin.
func (s *Search) Select(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := models.FindCoin(s.coins, id); !ok {
		return "", fmt.Errorf("unknown coin %q", id)
	}
	s.open = false
	return "/coin/" + id, nil
}

func (s *Search) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.open = false
}

func (s *Search) ensureLoaded(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.loading || len(s.coins) > 0 {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.mu.Unlock()

	coins, _, err := s.source.FetchAssets(ctx)

	s.mu.Lock()
	s.loading = false
	if !s.closed && ctx.Err() == nil && len(coins) > 0 {
		s.coins = coins
	}
	s.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		s.logger.WithError(err).Warn("Search data load failed")
		s.sink.Notify(notify.LoadFailedTitle, notify.SearchFailedMessage, notify.SeverityDestructive)
	}
}
