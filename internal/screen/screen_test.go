package screen

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/paaavkata/crypto-market-dashboard/internal/collector"
	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testCoins() []models.Coin {
	return []models.Coin{
		{ID: "ethereum", Name: "Ethereum", Symbol: "ETH", Price: 2156.78, MarketCap: 259e9, Change24h: -1.2, Rank: models.IntPtr(2)},
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC", Price: 39578.42, MarketCap: 778e9, Change24h: 2.3, Rank: models.IntPtr(1)},
		{ID: "solana", Name: "Solana", Symbol: "SOL", Price: 103.45, MarketCap: 44e9, Change24h: 5.6},
	}
}

// fakeSource is a scripted DataSource.
type fakeSource struct {
	mu sync.Mutex

	assets    []models.Coin
	assetsSrc collector.Source
	assetsErr error
	assetCall int

	coin    *models.Coin
	coinErr error

	history   []float64
	histCalls []models.Timeframe

	trending    []models.Coin
	trendingSrc collector.Source
	trendingErr error
}

func (f *fakeSource) setAssets(coins []models.Coin, src collector.Source, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assets, f.assetsSrc, f.assetsErr = coins, src, err
}

func (f *fakeSource) assetCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.assetCall
}

func (f *fakeSource) FetchAssets(ctx context.Context) ([]models.Coin, collector.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assetCall++
	return f.assets, f.assetsSrc, f.assetsErr
}

func (f *fakeSource) FetchAsset(ctx context.Context, id string) (*models.Coin, collector.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.coinErr != nil {
		return nil, collector.SourceNone, f.coinErr
	}
	return f.coin, collector.SourceLive, nil
}

func (f *fakeSource) FetchHistory(ctx context.Context, id string, timeframe models.Timeframe) ([]float64, collector.Source) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histCalls = append(f.histCalls, timeframe)
	return f.history, collector.SourceLive
}

func (f *fakeSource) FetchTrending(ctx context.Context) ([]models.Coin, collector.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trending, f.trendingSrc, f.trendingErr
}
