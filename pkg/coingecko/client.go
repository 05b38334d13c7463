package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
)

const (
	BaseURL    = "https://api.coingecko.com/api/v3"
	VsCurrency = "usd"

	defaultPerPage     = 50
	trendingPerPage    = 10
	flatSparklinePoint = 7
)

var ErrNotFound = errors.New("coin not found")

type Config struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	RetryCount int           `yaml:"retry_count"`
	PerPage    int           `yaml:"per_page"`
}

type Client struct {
	client  *resty.Client
	perPage int
	logger  *logrus.Logger
}

func NewClient(config Config, logger *logrus.Logger) *Client {
	client := resty.New()

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	perPage := config.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetRetryCount(config.RetryCount)
	client.SetRetryWaitTime(1 * time.Second)
	client.SetHeader("Accept", "application/json")
	if config.APIKey != "" {
		client.SetHeader("x-cg-demo-api-key", config.APIKey)
	}

	return &Client{
		client:  client,
		perPage: perPage,
		logger:  logger,
	}
}

// ListAssets returns the top coins by market cap.
func (c *Client) ListAssets(ctx context.Context) ([]models.Coin, error) {
	markets, err := c.markets(ctx, nil, c.perPage)
	if err != nil {
		return nil, err
	}

	coins := make([]models.Coin, 0, len(markets))
	for _, m := range markets {
		coins = append(coins, marketToCoin(m))
	}

	c.logger.WithField("coin_count", len(coins)).Debug("Successfully fetched market list")
	return coins, nil
}

// GetAsset returns the full record of one coin with a 7-day daily sparkline.
func (c *Client) GetAsset(ctx context.Context, id string) (*models.Coin, error) {
	var detail CoinDetail
	err := c.get(ctx, "/coins/{id}", map[string]string{"id": id}, map[string]string{
		"localization":   "false",
		"tickers":        "false",
		"market_data":    "true",
		"community_data": "false",
		"developer_data": "false",
		"sparkline":      "true",
	}, &detail)
	if err != nil {
		return nil, err
	}

	chart, err := c.marketChart(ctx, id, 7, "daily")
	if err != nil {
		return nil, err
	}

	coin := models.Coin{
		ID:          detail.ID,
		Name:        detail.Name,
		Symbol:      strings.ToUpper(detail.Symbol),
		IconURL:     detail.Image.Large,
		Price:       detail.MarketData.CurrentPrice[VsCurrency],
		MarketCap:   detail.MarketData.MarketCap[VsCurrency],
		Volume24h:   detail.MarketData.TotalVolume[VsCurrency],
		Change24h:   valueOrZero(detail.MarketData.PriceChangePercentage24h),
		Sparkline:   chartValues(chart.Prices),
		Rank:        detail.MarketCapRank,
		Description: detail.Description.En,
	}
	if len(detail.Links.Homepage) > 0 {
		coin.Website = detail.Links.Homepage[0]
	}

	return &coin, nil
}

// GetPriceHistory returns price samples in chronological order.
func (c *Client) GetPriceHistory(ctx context.Context, id string, days int) ([]float64, error) {
	chart, err := c.marketChart(ctx, id, days, "")
	if err != nil {
		return nil, err
	}
	return chartValues(chart.Prices), nil
}

// ListTrending resolves the trending search list into full market records.
func (c *Client) ListTrending(ctx context.Context) ([]models.Coin, error) {
	var trending TrendingResponse
	if err := c.get(ctx, "/search/trending", nil, nil, &trending); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(trending.Coins))
	for _, entry := range trending.Coins {
		ids = append(ids, entry.Item.ID)
	}
	if len(ids) == 0 {
		return []models.Coin{}, nil
	}

	markets, err := c.markets(ctx, ids, trendingPerPage)
	if err != nil {
		return nil, err
	}

	coins := make([]models.Coin, 0, len(markets))
	for _, m := range markets {
		coins = append(coins, marketToCoin(m))
	}
	return coins, nil
}

func (c *Client) Ping(ctx context.Context) error {
	var out map[string]interface{}
	return c.get(ctx, "/ping", nil, nil, &out)
}

func (c *Client) markets(ctx context.Context, ids []string, perPage int) ([]MarketCoin, error) {
	params := map[string]string{
		"vs_currency":             VsCurrency,
		"order":                   "market_cap_desc",
		"per_page":                strconv.Itoa(perPage),
		"page":                    "1",
		"sparkline":               "true",
		"price_change_percentage": "24h",
	}
	if len(ids) > 0 {
		params["ids"] = strings.Join(ids, ",")
	}

	var markets []MarketCoin
	if err := c.get(ctx, "/coins/markets", nil, params, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

func (c *Client) marketChart(ctx context.Context, id string, days int, interval string) (*MarketChart, error) {
	params := map[string]string{
		"vs_currency": VsCurrency,
		"days":        strconv.Itoa(days),
	}
	if interval != "" {
		params["interval"] = interval
	}

	var chart MarketChart
	if err := c.get(ctx, "/coins/{id}/market_chart", map[string]string{"id": id}, params, &chart); err != nil {
		return nil, err
	}
	return &chart, nil
}

func (c *Client) get(ctx context.Context, endpoint string, pathParams, queryParams map[string]string, out interface{}) error {
	req := c.client.R().SetContext(ctx)
	if pathParams != nil {
		req.SetPathParams(pathParams)
	}
	if queryParams != nil {
		req.SetQueryParams(queryParams)
	}

	resp, err := req.Get(endpoint)
	if err != nil {
		c.logger.WithError(err).WithField("endpoint", endpoint).Error("Failed to reach CoinGecko")
		return fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%s: %w", endpoint, ErrNotFound)
	}

	if resp.IsError() {
		var apiErr ErrorResponse
		_ = json.Unmarshal(resp.Body(), &apiErr)
		c.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"status":   resp.StatusCode(),
			"message":  apiErr.Message(),
		}).Warn("CoinGecko returned an error")
		return fmt.Errorf("API error: %d %s", resp.StatusCode(), apiErr.Message())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", endpoint, err)
	}

	return nil
}

func marketToCoin(m MarketCoin) models.Coin {
	var sparkline []float64
	if m.SparklineIn7d != nil && len(m.SparklineIn7d.Price) > 0 {
		sparkline = m.SparklineIn7d.Price
	} else {
		sparkline = make([]float64, flatSparklinePoint)
		for i := range sparkline {
			sparkline[i] = m.CurrentPrice
		}
	}

	return models.Coin{
		ID:        m.ID,
		Name:      m.Name,
		Symbol:    strings.ToUpper(m.Symbol),
		IconURL:   m.Image,
		Price:     m.CurrentPrice,
		MarketCap: m.MarketCap,
		Volume24h: m.TotalVolume,
		Change24h: valueOrZero(m.PriceChangePercentage24h),
		Sparkline: sparkline,
		Rank:      m.MarketCapRank,
	}
}

func chartValues(points [][]float64) []float64 {
	values := make([]float64, 0, len(points))
	for _, p := range points {
		if len(p) < 2 {
			continue
		}
		values = append(values, p[1])
	}
	return values
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
