package screen

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paaavkata/crypto-market-dashboard/internal/collector"
	"github.com/paaavkata/crypto-market-dashboard/internal/notify"
	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
)

func TestDetail_Load(t *testing.T) {
	t.Parallel()

	coin := testCoins()[1]
	source := &fakeSource{coin: &coin, history: []float64{10, 12, 11, 14, 15, 13, 16}}
	sink := &notify.Recorder{}
	detail := NewDetail(source, sink, "bitcoin", 3, newTestLogger())

	assert.True(t, detail.Snapshot().Loading)
	detail.Load(context.Background())

	snapshot := detail.Snapshot()
	assert.False(t, snapshot.Loading)
	assert.False(t, snapshot.NotFound)
	require.NotNil(t, snapshot.Row)
	assert.Equal(t, "$39,578.42", snapshot.Row.Price)
	assert.Equal(t, "+2.30%", snapshot.Row.Change)
	assert.Equal(t, models.Timeframe7D, snapshot.Timeframe)
	assert.Len(t, snapshot.Chart.Points, 7)
	assert.True(t, snapshot.Chart.Positive)
	assert.Len(t, snapshot.Chart.MovingAverage, 5)
	assert.Equal(t, []models.Timeframe{models.Timeframe7D}, source.histCalls)
	assert.Empty(t, sink.Items())
}

func TestDetail_SetTimeframe(t *testing.T) {
	t.Parallel()

	coin := testCoins()[1]
	source := &fakeSource{coin: &coin, history: []float64{3, 2, 1}}
	detail := NewDetail(source, notify.Discard, "bitcoin", 0, newTestLogger())
	detail.Load(context.Background())

	detail.SetTimeframe(context.Background(), models.Timeframe30D)
	detail.SetTimeframe(context.Background(), models.Timeframe30D)

	snapshot := detail.Snapshot()
	assert.Equal(t, models.Timeframe30D, snapshot.Timeframe)
	assert.False(t, snapshot.Chart.Positive)
	assert.Equal(t, []models.Timeframe{models.Timeframe7D, models.Timeframe30D}, source.histCalls)
}

func TestDetail_NotFound(t *testing.T) {
	t.Parallel()

	source := &fakeSource{coinErr: fmt.Errorf("dogecoin: %w", collector.ErrCoinNotFound)}
	sink := &notify.Recorder{}
	detail := NewDetail(source, sink, "dogecoin", 0, newTestLogger())

	detail.Load(context.Background())
	detail.SetTimeframe(context.Background(), models.Timeframe1D)

	snapshot := detail.Snapshot()
	assert.True(t, snapshot.NotFound)
	assert.False(t, snapshot.Unavailable)
	assert.Nil(t, snapshot.Row)
	assert.True(t, snapshot.Chart.Flat)
	assert.Empty(t, source.histCalls)
	assert.Empty(t, sink.Items())
}

func TestDetail_UpstreamFailureNotifies(t *testing.T) {
	t.Parallel()

	source := &fakeSource{coinErr: fmt.Errorf("failed to fetch coin bitcoin: %w", errors.New("503 service unavailable"))}
	sink := &notify.Recorder{}
	detail := NewDetail(source, sink, "bitcoin", 0, newTestLogger())

	detail.Load(context.Background())

	snapshot := detail.Snapshot()
	assert.False(t, snapshot.Loading)
	assert.False(t, snapshot.NotFound)
	assert.True(t, snapshot.Unavailable)
	assert.Nil(t, snapshot.Row)
	assert.Equal(t, collector.SourceNone, snapshot.Source)

	items := sink.Items()
	require.Len(t, items, 1)
	assert.Equal(t, notify.LoadFailedTitle, items[0].Title)
	assert.Equal(t, notify.SeverityDestructive, items[0].Severity)
}
