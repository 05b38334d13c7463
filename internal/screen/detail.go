package screen

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/paaavkata/crypto-market-dashboard/internal/chart"
	"github.com/paaavkata/crypto-market-dashboard/internal/collector"
	"github.com/paaavkata/crypto-market-dashboard/internal/listing"
	"github.com/paaavkata/crypto-market-dashboard/internal/notify"
	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
)

// DetailSnapshot is the coin detail view. NotFound means the coin does not
// exist; Unavailable means the upstream failed and no fallback resolved it.
type DetailSnapshot struct {
	ID          string           `json:"id"`
	Row         *listing.Row     `json:"row,omitempty"`
	NotFound    bool             `json:"notFound"`
	Unavailable bool             `json:"unavailable"`
	Loading     bool             `json:"loading"`
	Timeframe   models.Timeframe `json:"timeframe"`
	Chart       chart.Series     `json:"chart"`
	Source      collector.Source `json:"source"`
}

// Detail shows one coin and its price chart. It does not poll.
type Detail struct {
	id       string
	maPeriod int
	source   DataSource
	sink     notify.Sink
	logger   *logrus.Logger

	mu        sync.Mutex
	coin      *models.Coin
	notFound  bool
	failed    bool
	loading   bool
	timeframe models.Timeframe
	series    chart.Series
	src       collector.Source
	closed    bool
}

func NewDetail(source DataSource, sink notify.Sink, id string, maPeriod int, logger *logrus.Logger) *Detail {
	return &Detail{
		id:        id,
		maPeriod:  maPeriod,
		source:    source,
		sink:      sink,
		logger:    logger,
		loading:   true,
		timeframe: models.Timeframe7D,
		series:    chart.BuildSeries(nil, 0),
		src:       collector.SourceNone,
	}
}

// Load resolves the coin and the chart for the current timeframe.
func (d *Detail) Load(ctx context.Context) {
	coin, src, err := d.source.FetchAsset(ctx, d.id)
	if ctx.Err() != nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.loading = false
	timeframe := d.timeframe
	if err != nil {
		missing := errors.Is(err, collector.ErrCoinNotFound)
		d.coin = nil
		d.notFound = missing
		d.failed = !missing
		d.src = collector.SourceNone
		d.mu.Unlock()

		if !missing {
			d.sink.Notify(notify.LoadFailedTitle, notify.LoadFailedMessage, notify.SeverityDestructive)
		}
		d.logger.WithError(err).WithField("coin_id", d.id).Debug("Coin detail unavailable")
		return
	}
	d.coin = coin
	d.notFound = false
	d.failed = false
	d.src = src
	d.mu.Unlock()

	d.loadChart(ctx, timeframe)
}

// SetTimeframe switches the chart. Samples are reloaded once the coin is
// resolved.
func (d *Detail) SetTimeframe(ctx context.Context, timeframe models.Timeframe) {
	d.mu.Lock()
	if d.closed || d.timeframe == timeframe {
		d.mu.Unlock()
		return
	}
	d.timeframe = timeframe
	loaded := d.coin != nil
	d.mu.Unlock()

	if !loaded {
		return
	}
	d.loadChart(ctx, timeframe)
}

func (d *Detail) Snapshot() DetailSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snapshot := DetailSnapshot{
		ID:          d.id,
		NotFound:    d.notFound,
		Unavailable: d.failed,
		Loading:     d.loading,
		Timeframe:   d.timeframe,
		Chart:       d.series,
		Source:      d.src,
	}
	if d.coin != nil {
		row := listing.NewRow(0, *d.coin)
		snapshot.Row = &row
	}
	return snapshot
}

func (d *Detail) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

func (d *Detail) loadChart(ctx context.Context, timeframe models.Timeframe) {
	samples, _ := d.source.FetchHistory(ctx, d.id, timeframe)
	if ctx.Err() != nil {
		return
	}
	series := chart.BuildSeries(samples, d.maPeriod)

	d.mu.Lock()
	defer d.mu.Unlock()

	// A newer timeframe selection wins over a late response.
	if d.closed || d.timeframe != timeframe {
		return
	}
	d.series = series
}
