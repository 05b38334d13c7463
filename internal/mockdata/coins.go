package mockdata

import (
	"math/rand"
	"sort"

	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
)

var coins = []models.Coin{
	{
		ID:          "bitcoin",
		Name:        "Bitcoin",
		Symbol:      "BTC",
		IconURL:     "https://cryptologos.cc/logos/bitcoin-btc-logo.png",
		Price:       39578.42,
		MarketCap:   778456000000,
		Volume24h:   21872000000,
		Change24h:   2.34,
		Sparkline:   []float64{39000, 39200, 39500, 39100, 39300, 39600, 39578.42},
		Description: "Bitcoin is a decentralized digital currency, without a central bank or single administrator, that can be sent from user to user on the peer-to-peer bitcoin network without the need for intermediaries.",
		Website:     "https://bitcoin.org",
		Rank:        models.IntPtr(1),
	},
	{
		ID:          "ethereum",
		Name:        "Ethereum",
		Symbol:      "ETH",
		IconURL:     "https://cryptologos.cc/logos/ethereum-eth-logo.png",
		Price:       2156.78,
		MarketCap:   259872000000,
		Volume24h:   12458000000,
		Change24h:   -1.25,
		Sparkline:   []float64{2200, 2180, 2150, 2120, 2140, 2160, 2156.78},
		Description: "Ethereum is a decentralized, open-source blockchain featuring smart contract functionality. Ether is the native cryptocurrency of the platform.",
		Website:     "https://ethereum.org",
		Rank:        models.IntPtr(2),
	},
	{
		ID:          "solana",
		Name:        "Solana",
		Symbol:      "SOL",
		IconURL:     "https://cryptologos.cc/logos/solana-sol-logo.png",
		Price:       95.42,
		MarketCap:   41982000000,
		Volume24h:   3567000000,
		Change24h:   4.78,
		Sparkline:   []float64{90, 92, 94, 93, 95, 96, 95.42},
		Description: "Solana is a highly functional open source project that implements a new, high-performance, permissionless blockchain.",
		Website:     "https://solana.com",
		Rank:        models.IntPtr(5),
	},
	{
		ID:          "cardano",
		Name:        "Cardano",
		Symbol:      "ADA",
		IconURL:     "https://cryptologos.cc/logos/cardano-ada-logo.png",
		Price:       0.37,
		MarketCap:   13021000000,
		Volume24h:   345700000,
		Change24h:   -0.52,
		Sparkline:   []float64{0.38, 0.375, 0.37, 0.368, 0.372, 0.371, 0.37},
		Description: "Cardano is a proof-of-stake blockchain platform. The open-source project aims to redistribute power from unaccountable structures to individuals.",
		Website:     "https://cardano.org",
		Rank:        models.IntPtr(8),
	},
	{
		ID:          "ripple",
		Name:        "XRP",
		Symbol:      "XRP",
		IconURL:     "https://cryptologos.cc/logos/xrp-xrp-logo.png",
		Price:       0.62,
		MarketCap:   33912000000,
		Volume24h:   1267000000,
		Change24h:   1.45,
		Sparkline:   []float64{0.61, 0.615, 0.62, 0.625, 0.618, 0.622, 0.62},
		Description: "XRP is the native cryptocurrency of the XRP Ledger, which is a distributed ledger platform developed by Ripple.",
		Website:     "https://ripple.com/xrp",
		Rank:        models.IntPtr(6),
	},
	{
		ID:          "dogecoin",
		Name:        "Dogecoin",
		Symbol:      "DOGE",
		IconURL:     "https://cryptologos.cc/logos/dogecoin-doge-logo.png",
		Price:       0.079,
		MarketCap:   11392000000,
		Volume24h:   567800000,
		Change24h:   -3.12,
		Sparkline:   []float64{0.082, 0.081, 0.08, 0.079, 0.078, 0.0785, 0.079},
		Description: "Dogecoin is a cryptocurrency featuring a likeness of the Shiba Inu dog from the 'Doge' Internet meme as its logo.",
		Website:     "https://dogecoin.com",
		Rank:        models.IntPtr(11),
	},
	{
		ID:          "polkadot",
		Name:        "Polkadot",
		Symbol:      "DOT",
		IconURL:     "https://cryptologos.cc/logos/polkadot-new-dot-logo.png",
		Price:       5.28,
		MarketCap:   6751000000,
		Volume24h:   234500000,
		Change24h:   2.87,
		Sparkline:   []float64{5.1, 5.15, 5.2, 5.25, 5.3, 5.29, 5.28},
		Description: "Polkadot is a sharded heterogeneous multi-chain architecture which enables external networks as well as customized layer one 'parachains' to communicate.",
		Website:     "https://polkadot.network",
		Rank:        models.IntPtr(12),
	},
	{
		ID:          "bnb",
		Name:        "BNB",
		Symbol:      "BNB",
		IconURL:     "https://cryptologos.cc/logos/bnb-bnb-logo.png",
		Price:       218.76,
		MarketCap:   33456000000,
		Volume24h:   789100000,
		Change24h:   0.94,
		Sparkline:   []float64{216, 217, 218, 219, 218.5, 218.8, 218.76},
		Description: "BNB is the native token of the Binance Chain. It is used to pay for transaction fees on the Binance exchange.",
		Website:     "https://www.binance.com",
		Rank:        models.IntPtr(3),
	},
}

const trendingLimit = 4

// Coins returns a fresh copy of the static table.
func Coins() []models.Coin {
	out := make([]models.Coin, len(coins))
	for i, c := range coins {
		out[i] = clone(c)
	}
	return out
}

func ByID(id string) (models.Coin, bool) {
	for _, c := range coins {
		if c.ID == id {
			return clone(c), true
		}
	}
	return models.Coin{}, false
}

// Trending picks the strongest gainers of the table.
func Trending() []models.Coin {
	gainers := make([]models.Coin, 0, len(coins))
	for _, c := range Coins() {
		if c.Change24h > 0 {
			gainers = append(gainers, c)
		}
	}

	sort.SliceStable(gainers, func(i, j int) bool {
		return gainers[i].Change24h > gainers[j].Change24h
	})

	if len(gainers) > trendingLimit {
		gainers = gainers[:trendingLimit]
	}
	return gainers
}

// History generates a random walk of the given length for charts shown while
// no real history is available.
func History(points int, volatility float64, rng *rand.Rand) []float64 {
	if points <= 0 {
		return []float64{}
	}

	data := make([]float64, 0, points)
	price := 1000 + rng.Float64()*9000

	for i := 0; i < points; i++ {
		change := price * volatility * (rng.Float64() - 0.5)
		price += change
		if price < 100 {
			price = 100
		}
		data = append(data, price)
	}

	return data
}

func clone(c models.Coin) models.Coin {
	if c.Sparkline != nil {
		c.Sparkline = append([]float64(nil), c.Sparkline...)
	}
	if c.Rank != nil {
		c.Rank = models.IntPtr(*c.Rank)
	}
	return c
}
