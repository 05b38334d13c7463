package models

import (
	"strconv"
)

// RankPlaceholder is shown for coins without a market cap rank.
const RankPlaceholder = "—"

type Coin struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	IconURL     string    `json:"iconUrl"`
	Price       float64   `json:"price"`
	MarketCap   float64   `json:"marketCap"`
	Volume24h   float64   `json:"volume24h"`
	Change24h   float64   `json:"change24h"`
	Sparkline   []float64 `json:"sparkline"`
	Rank        *int      `json:"rank,omitempty"`
	Description string    `json:"description,omitempty"`
	Website     string    `json:"website,omitempty"`
}

// RankLabel never renders an absent rank as 0.
func (c Coin) RankLabel() string {
	if c.Rank == nil || *c.Rank <= 0 {
		return RankPlaceholder
	}
	return strconv.Itoa(*c.Rank)
}

func (c Coin) IsPositive() bool {
	return c.Change24h >= 0
}

// IntPtr is a helper for building ranked records.
func IntPtr(v int) *int {
	return &v
}

// FindCoin returns the coin with the given id from a collection.
func FindCoin(coins []Coin, id string) (Coin, bool) {
	for _, coin := range coins {
		if coin.ID == id {
			return coin, true
		}
	}
	return Coin{}, false
}

type SortKey string

const (
	SortByID          SortKey = "id"
	SortByName        SortKey = "name"
	SortBySymbol      SortKey = "symbol"
	SortByIcon        SortKey = "iconUrl"
	SortByPrice       SortKey = "price"
	SortByMarketCap   SortKey = "marketCap"
	SortByVolume      SortKey = "volume24h"
	SortByChange      SortKey = "change24h"
	SortBySparkline   SortKey = "sparkline"
	SortByRank        SortKey = "rank"
	SortByDescription SortKey = "description"
	SortByWebsite     SortKey = "website"
)

var sortKeys = map[SortKey]bool{
	SortByID: true, SortByName: true, SortBySymbol: true, SortByIcon: true,
	SortByPrice: true, SortByMarketCap: true, SortByVolume: true, SortByChange: true,
	SortBySparkline: true, SortByRank: true, SortByDescription: true, SortByWebsite: true,
}

func (k SortKey) Valid() bool {
	return sortKeys[k]
}

// Timeframe selects the range of the coin detail chart.
type Timeframe string

const (
	Timeframe1D  Timeframe = "1d"
	Timeframe7D  Timeframe = "7d"
	Timeframe30D Timeframe = "30d"
	Timeframe90D Timeframe = "90d"
)

// Days is the upstream history range for the timeframe.
func (t Timeframe) Days() int {
	switch t {
	case Timeframe1D:
		return 1
	case Timeframe30D:
		return 30
	case Timeframe90D:
		return 90
	default:
		return 7
	}
}

// Points is the number of synthetic samples used when history is unavailable.
func (t Timeframe) Points() int {
	switch t {
	case Timeframe1D:
		return 24
	case Timeframe30D:
		return 30
	case Timeframe90D:
		return 90
	default:
		return 7
	}
}

func (t Timeframe) Volatility() float64 {
	switch t {
	case Timeframe1D:
		return 0.02
	case Timeframe30D:
		return 0.1
	case Timeframe90D:
		return 0.15
	default:
		return 0.05
	}
}

func ParseTimeframe(s string) Timeframe {
	switch Timeframe(s) {
	case Timeframe1D, Timeframe7D, Timeframe30D, Timeframe90D:
		return Timeframe(s)
	default:
		return Timeframe7D
	}
}
