package screen

import (
	"context"
	"errors"

	"github.com/paaavkata/crypto-market-dashboard/internal/collector"
	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
)

var ErrClosed = errors.New("screen closed")

// DataSource is what screens load from; *collector.Fetcher satisfies it.
type DataSource interface {
	FetchAssets(ctx context.Context) ([]models.Coin, collector.Source, error)
	FetchAsset(ctx context.Context, id string) (*models.Coin, collector.Source, error)
	FetchHistory(ctx context.Context, id string, timeframe models.Timeframe) ([]float64, collector.Source)
	FetchTrending(ctx context.Context) ([]models.Coin, collector.Source, error)
}
