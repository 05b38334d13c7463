package screen

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/paaavkata/crypto-market-dashboard/internal/collector"
	"github.com/paaavkata/crypto-market-dashboard/internal/listing"
	"github.com/paaavkata/crypto-market-dashboard/internal/notify"
	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
)

type MarketsSnapshot struct {
	Rows      []listing.Row      `json:"rows"`
	Sort      listing.SortConfig `json:"sort"`
	Query     string             `json:"query"`
	Total     int                `json:"total"`
	Loading   bool               `json:"loading"`
	Source    collector.Source   `json:"source"`
	UpdatedAt time.Time          `json:"updatedAt,omitempty"`
}

// Markets is the coin table of one open screen. It polls the market list
// and replaces its collection whole on each successful fetch.
type Markets struct {
	source DataSource
	sink   notify.Sink
	poller *collector.Poller
	logger *logrus.Logger

	mu        sync.Mutex
	coins     []models.Coin
	sort      listing.SortConfig
	query     string
	loading   bool
	src       collector.Source
	updatedAt time.Time
	closed    bool
	onChange  func(MarketsSnapshot)
}

func NewMarkets(source DataSource, sink notify.Sink, interval time.Duration, logger *logrus.Logger) *Markets {
	m := &Markets{
		source:  source,
		sink:    sink,
		logger:  logger,
		sort:    listing.DefaultSortConfig(),
		loading: true,
		src:     collector.SourceNone,
	}
	m.poller = collector.NewPoller("markets", interval, m.Refresh, logger)
	return m
}

// OnChange registers a callback that receives a snapshot after every change.
// It is called without the screen lock held.
func (m *Markets) OnChange(fn func(MarketsSnapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Start begins polling; the first fetch runs immediately.
func (m *Markets) Start(ctx context.Context) error {
	if err := m.poller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start markets poller: %w", err)
	}
	return nil
}

// Refresh fetches the market list once. On failure the previous collection
// is kept; the fallback table is only used when nothing was loaded yet.
func (m *Markets) Refresh(ctx context.Context) {
	coins, src, err := m.source.FetchAssets(ctx)
	if ctx.Err() != nil {
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	switch {
	case err == nil:
		m.replace(coins, src)
	case m.coins == nil && len(coins) > 0:
		m.replace(coins, src)
	}
	m.loading = false

	snapshot := m.snapshotLocked()
	onChange := m.onChange
	m.mu.Unlock()

	if err != nil {
		m.logger.WithError(err).Warn("Market list refresh failed")
		m.sink.Notify(notify.LoadFailedTitle, notify.LoadFailedMessage, notify.SeverityDestructive)
	}
	if onChange != nil {
		onChange(snapshot)
	}
}

func (m *Markets) SetQuery(query string) {
	m.update(func() {
		m.query = query
	})
}

// ToggleSort applies a column header click.
func (m *Markets) ToggleSort(key models.SortKey) error {
	if !key.Valid() {
		return fmt.Errorf("unknown sort key %q", key)
	}
	m.update(func() {
		m.sort = m.sort.Toggle(key)
	})
	return nil
}

func (m *Markets) SetSort(cfg listing.SortConfig) error {
	if !cfg.Key.Valid() {
		return fmt.Errorf("unknown sort key %q", cfg.Key)
	}
	m.update(func() {
		m.sort = cfg
	})
	return nil
}

func (m *Markets) Rows() []listing.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return listing.View(m.coins, m.sort, m.query)
}

func (m *Markets) Snapshot() MarketsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Close stops polling. Fetches still in flight are discarded.
func (m *Markets) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.onChange = nil
	m.mu.Unlock()

	m.poller.Stop()
}

func (m *Markets) update(fn func()) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	fn()
	snapshot := m.snapshotLocked()
	onChange := m.onChange
	m.mu.Unlock()

	if onChange != nil {
		onChange(snapshot)
	}
}

func (m *Markets) replace(coins []models.Coin, src collector.Source) {
	m.coins = coins
	m.src = src
	m.updatedAt = time.Now()
}

func (m *Markets) snapshotLocked() MarketsSnapshot {
	return MarketsSnapshot{
		Rows:      listing.View(m.coins, m.sort, m.query),
		Sort:      m.sort,
		Query:     m.query,
		Total:     len(m.coins),
		Loading:   m.loading,
		Source:    m.src,
		UpdatedAt: m.updatedAt,
	}
}
