package listing

import (
	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
	"github.com/paaavkata/crypto-market-dashboard/pkg/utils"
)

// Row is one rendered line of the coin table.
type Row struct {
	// DisplayRank is the 1-based position after filtering, not Coin.Rank.
	DisplayRank int         `json:"displayRank"`
	Coin        models.Coin `json:"coin"`
	Price       string      `json:"price"`
	Change      string      `json:"change"`
	Positive    bool        `json:"positive"`
	MarketCap   string      `json:"marketCap"`
	Volume      string      `json:"volume"`
	MarketRank  string      `json:"marketRank"`
}

// View sorts, then filters, then numbers the remaining coins.
func View(coins []models.Coin, cfg SortConfig, query string) []Row {
	visible := Filter(Sort(coins, cfg), query)

	rows := make([]Row, 0, len(visible))
	for i, coin := range visible {
		rows = append(rows, NewRow(i+1, coin))
	}
	return rows
}

func NewRow(position int, coin models.Coin) Row {
	return Row{
		DisplayRank: position,
		Coin:        coin,
		Price:       utils.FormatCurrency(coin.Price),
		Change:      utils.FormatPercent(coin.Change24h),
		Positive:    coin.IsPositive(),
		MarketCap:   "$" + utils.FormatMagnitude(coin.MarketCap),
		Volume:      "$" + utils.FormatMagnitude(coin.Volume24h),
		MarketRank:  coin.RankLabel(),
	}
}
