package collector

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/paaavkata/crypto-market-dashboard/internal/mockdata"
	"github.com/paaavkata/crypto-market-dashboard/pkg/coingecko"
	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
)

var ErrCoinNotFound = errors.New("coin not found")

// MarketClient is the upstream market-data provider.
type MarketClient interface {
	ListAssets(ctx context.Context) ([]models.Coin, error)
	GetAsset(ctx context.Context, id string) (*models.Coin, error)
	GetPriceHistory(ctx context.Context, id string, days int) ([]float64, error)
	ListTrending(ctx context.Context) ([]models.Coin, error)
}

// Source tells where a collection came from.
type Source string

const (
	SourceLive Source = "live"
	SourceMock Source = "mock"
	SourceNone Source = "none"
)

type Fetcher struct {
	client       MarketClient
	mockFallback bool
	logger       *logrus.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewFetcher(client MarketClient, mockFallback bool, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		client:       client,
		mockFallback: mockFallback,
		logger:       logger,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FetchAssets returns the market list. When the upstream fails or returns
// nothing, the mock table is returned instead (if enabled) together with the
// upstream error so the caller can surface it.
func (f *Fetcher) FetchAssets(ctx context.Context) ([]models.Coin, Source, error) {
	start := time.Now()

	coins, err := f.client.ListAssets(ctx)
	if err != nil {
		f.logger.WithError(err).Error("Failed to fetch coins")
		if f.mockFallback {
			return mockdata.Coins(), SourceMock, fmt.Errorf("failed to fetch coins: %w", err)
		}
		return []models.Coin{}, SourceNone, fmt.Errorf("failed to fetch coins: %w", err)
	}

	if len(coins) == 0 {
		f.logger.Warn("Upstream returned no coins")
		if f.mockFallback {
			return mockdata.Coins(), SourceMock, nil
		}
		return []models.Coin{}, SourceLive, nil
	}

	f.logger.WithFields(logrus.Fields{
		"coin_count":  len(coins),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Successfully fetched coins")

	return coins, SourceLive, nil
}

// FetchAsset resolves one coin, falling back to the mock table. The error
// wraps ErrCoinNotFound only when the upstream answered that the coin does
// not exist; transport and server failures are returned as they are.
func (f *Fetcher) FetchAsset(ctx context.Context, id string) (*models.Coin, Source, error) {
	coin, err := f.client.GetAsset(ctx, id)
	if err == nil && coin != nil {
		return coin, SourceLive, nil
	}

	upstreamFailed := err != nil && !errors.Is(err, coingecko.ErrNotFound)
	if upstreamFailed {
		f.logger.WithError(err).WithField("coin_id", id).Error("Failed to fetch coin")
	}

	if f.mockFallback {
		if mock, ok := mockdata.ByID(id); ok {
			return &mock, SourceMock, nil
		}
	}

	if upstreamFailed {
		return nil, SourceNone, fmt.Errorf("failed to fetch coin %s: %w", id, err)
	}
	return nil, SourceNone, fmt.Errorf("%s: %w", id, ErrCoinNotFound)
}

// FetchHistory returns chart samples for the timeframe, synthesizing a
// random walk when the upstream has nothing.
func (f *Fetcher) FetchHistory(ctx context.Context, id string, timeframe models.Timeframe) ([]float64, Source) {
	history, err := f.client.GetPriceHistory(ctx, id, timeframe.Days())
	if err == nil && len(history) > 0 {
		return history, SourceLive
	}

	if err != nil {
		f.logger.WithError(err).WithFields(logrus.Fields{
			"coin_id":   id,
			"timeframe": timeframe,
		}).Error("Failed to fetch price history")
	}

	if !f.mockFallback {
		return []float64{}, SourceNone
	}

	f.rngMu.Lock()
	defer f.rngMu.Unlock()
	return mockdata.History(timeframe.Points(), timeframe.Volatility(), f.rng), SourceMock
}

func (f *Fetcher) FetchTrending(ctx context.Context) ([]models.Coin, Source, error) {
	coins, err := f.client.ListTrending(ctx)
	if err != nil {
		f.logger.WithError(err).Error("Failed to fetch trending coins")
		if f.mockFallback {
			return mockdata.Trending(), SourceMock, fmt.Errorf("failed to fetch trending coins: %w", err)
		}
		return []models.Coin{}, SourceNone, fmt.Errorf("failed to fetch trending coins: %w", err)
	}

	if len(coins) == 0 && f.mockFallback {
		return mockdata.Trending(), SourceMock, nil
	}

	return coins, SourceLive, nil
}
