package coingecko

type MarketCoin struct {
	ID                       string       `json:"id"`
	Symbol                   string       `json:"symbol"`
	Name                     string       `json:"name"`
	Image                    string       `json:"image"`
	CurrentPrice             float64      `json:"current_price"`
	MarketCap                float64      `json:"market_cap"`
	MarketCapRank            *int         `json:"market_cap_rank"`
	TotalVolume              float64      `json:"total_volume"`
	PriceChangePercentage24h *float64     `json:"price_change_percentage_24h"`
	SparklineIn7d            *SparklineIn `json:"sparkline_in_7d"`
}

type SparklineIn struct {
	Price []float64 `json:"price"`
}

type CoinDetail struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank *int   `json:"market_cap_rank"`
	Image         struct {
		Thumb string `json:"thumb"`
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"image"`
	Description struct {
		En string `json:"en"`
	} `json:"description"`
	Links struct {
		Homepage []string `json:"homepage"`
	} `json:"links"`
	MarketData struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		MarketCap                map[string]float64 `json:"market_cap"`
		TotalVolume              map[string]float64 `json:"total_volume"`
		PriceChangePercentage24h *float64           `json:"price_change_percentage_24h"`
	} `json:"market_data"`
}

// MarketChart holds [timestamp_ms, value] pairs.
type MarketChart struct {
	Prices       [][]float64 `json:"prices"`
	MarketCaps   [][]float64 `json:"market_caps"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

type TrendingResponse struct {
	Coins []struct {
		Item TrendingItem `json:"item"`
	} `json:"coins"`
}

type TrendingItem struct {
	ID            string `json:"id"`
	CoinID        int    `json:"coin_id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int   `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
	Score         int    `json:"score"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

func (e ErrorResponse) Message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Status.ErrorMessage
}
