package screen

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/paaavkata/crypto-market-dashboard/internal/collector"
	"github.com/paaavkata/crypto-market-dashboard/internal/listing"
	"github.com/paaavkata/crypto-market-dashboard/internal/notify"
	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
)

type TrendingSnapshot struct {
	Rows    []listing.Row    `json:"rows"`
	Loading bool             `json:"loading"`
	Source  collector.Source `json:"source"`
}

// Trending is a one-shot list of highlighted coins.
type Trending struct {
	source DataSource
	sink   notify.Sink
	logger *logrus.Logger

	mu      sync.Mutex
	coins   []models.Coin
	loading bool
	src     collector.Source
	closed  bool
}

func NewTrending(source DataSource, sink notify.Sink, logger *logrus.Logger) *Trending {
	return &Trending{
		source:  source,
		sink:    sink,
		logger:  logger,
		coins:   []models.Coin{},
		loading: true,
		src:     collector.SourceNone,
	}
}

func (t *Trending) Load(ctx context.Context) {
	coins, src, err := t.source.FetchTrending(ctx)
	if ctx.Err() != nil {
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.loading = false
	if coins != nil {
		t.coins = coins
		t.src = src
	}
	t.mu.Unlock()

	if err != nil {
		t.logger.WithError(err).Warn("Trending refresh failed")
		t.sink.Notify(notify.LoadFailedTitle, notify.TrendingFailedMessage, notify.SeverityDestructive)
	}
}

func (t *Trending) Snapshot() TrendingSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make([]listing.Row, 0, len(t.coins))
	for i, coin := range t.coins {
		rows = append(rows, listing.NewRow(i+1, coin))
	}
	return TrendingSnapshot{
		Rows:    rows,
		Loading: t.loading,
		Source:  t.src,
	}
}

func (t *Trending) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}
