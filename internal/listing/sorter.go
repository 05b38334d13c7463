package listing

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
)

type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// SortConfig is the single active column of the coin table.
type SortConfig struct {
	Key       models.SortKey `json:"key"`
	Direction Direction      `json:"direction"`
}

func DefaultSortConfig() SortConfig {
	return SortConfig{Key: models.SortByMarketCap, Direction: Descending}
}

// Toggle applies a column header click: the active ascending column flips to
// descending, anything else becomes ascending on the clicked column.
func (c SortConfig) Toggle(key models.SortKey) SortConfig {
	if c.Key == key && c.Direction == Ascending {
		return SortConfig{Key: key, Direction: Descending}
	}
	return SortConfig{Key: key, Direction: Ascending}
}

func ParseDirection(s string) Direction {
	if Direction(s) == Ascending {
		return Ascending
	}
	return Descending
}

type valueKind int

const (
	kindAbsent valueKind = iota
	kindNumber
	kindText
	kindOther
)

type fieldValue struct {
	kind valueKind
	num  float64
	text string
}

func fieldOf(coin models.Coin, key models.SortKey) fieldValue {
	switch key {
	case models.SortByID:
		return fieldValue{kind: kindText, text: coin.ID}
	case models.SortByName:
		return fieldValue{kind: kindText, text: coin.Name}
	case models.SortBySymbol:
		return fieldValue{kind: kindText, text: coin.Symbol}
	case models.SortByIcon:
		return fieldValue{kind: kindText, text: coin.IconURL}
	case models.SortByPrice:
		return fieldValue{kind: kindNumber, num: coin.Price}
	case models.SortByMarketCap:
		return fieldValue{kind: kindNumber, num: coin.MarketCap}
	case models.SortByVolume:
		return fieldValue{kind: kindNumber, num: coin.Volume24h}
	case models.SortByChange:
		return fieldValue{kind: kindNumber, num: coin.Change24h}
	case models.SortByRank:
		if coin.Rank == nil {
			return fieldValue{kind: kindAbsent}
		}
		return fieldValue{kind: kindNumber, num: float64(*coin.Rank)}
	case models.SortByDescription:
		if coin.Description == "" {
			return fieldValue{kind: kindAbsent}
		}
		return fieldValue{kind: kindText, text: coin.Description}
	case models.SortByWebsite:
		if coin.Website == "" {
			return fieldValue{kind: kindAbsent}
		}
		return fieldValue{kind: kindText, text: coin.Website}
	case models.SortBySparkline:
		return fieldValue{kind: kindOther}
	default:
		return fieldValue{kind: kindAbsent}
	}
}

// compare returns the ascending order of two field values. Pairs that are
// absent or of different kinds compare equal.
func compare(col *collate.Collator, a, b fieldValue) int {
	switch {
	case a.kind == kindNumber && b.kind == kindNumber:
		if a.num < b.num {
			return -1
		}
		if a.num > b.num {
			return 1
		}
		return 0
	case a.kind == kindText && b.kind == kindText:
		return col.CompareString(a.text, b.text)
	default:
		return 0
	}
}

// Sort returns a sorted copy of coins; the input is left untouched.
func Sort(coins []models.Coin, cfg SortConfig) []models.Coin {
	sorted := make([]models.Coin, len(coins))
	copy(sorted, coins)

	if cfg.Key == "" {
		return sorted
	}

	sign := 1
	if cfg.Direction == Descending {
		sign = -1
	}

	col := collate.New(language.English)
	sort.SliceStable(sorted, func(i, j int) bool {
		a := fieldOf(sorted[i], cfg.Key)
		b := fieldOf(sorted[j], cfg.Key)
		return sign*compare(col, a, b) < 0
	})

	return sorted
}

// Filter keeps coins whose name or symbol contains query, ignoring case.
func Filter(coins []models.Coin, query string) []models.Coin {
	needle := strings.ToLower(query)
	filtered := make([]models.Coin, 0, len(coins))

	for _, coin := range coins {
		if needle == "" ||
			strings.Contains(strings.ToLower(coin.Name), needle) ||
			strings.Contains(strings.ToLower(coin.Symbol), needle) {
			filtered = append(filtered, coin)
		}
	}

	return filtered
}
