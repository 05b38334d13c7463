package coingecko

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketsJSON = `[
  {"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"https://img/btc.png","current_price":39578.42,
   "market_cap":778456000000,"market_cap_rank":1,"total_volume":21872000000,"price_change_percentage_24h":2.34,
   "sparkline_in_7d":{"price":[39000,39200,39578.42]}},
  {"id":"newcoin","symbol":"new","name":"New Coin","image":"https://img/new.png","current_price":0.5,
   "market_cap":1000,"market_cap_rank":null,"total_volume":10,"price_change_percentage_24h":null}
]`

const detailJSON = `{
  "id":"bitcoin","symbol":"btc","name":"Bitcoin","market_cap_rank":1,
  "image":{"large":"https://img/btc-large.png"},
  "description":{"en":"Digital gold."},
  "links":{"homepage":["https://bitcoin.org",""]},
  "market_data":{"current_price":{"usd":39578.42},"market_cap":{"usd":778456000000},
    "total_volume":{"usd":21872000000},"price_change_percentage_24h":-1.5}
}`

const chartJSON = `{"prices":[[1700000000000,100.5],[1700000060000,101.25],[1700000120000]]}`

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, APIKey: "demo-key"}, newTestLogger())
}

func TestClient_ListAssets(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))
		assert.Equal(t, "true", r.URL.Query().Get("sparkline"))
		assert.Equal(t, "demo-key", r.Header.Get("x-cg-demo-api-key"))
		w.Write([]byte(marketsJSON))
	})

	coins, err := client.ListAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, coins, 2)

	btc := coins[0]
	assert.Equal(t, "bitcoin", btc.ID)
	assert.Equal(t, "BTC", btc.Symbol)
	assert.Equal(t, "https://img/btc.png", btc.IconURL)
	assert.Equal(t, 2.34, btc.Change24h)
	assert.Equal(t, []float64{39000, 39200, 39578.42}, btc.Sparkline)
	require.NotNil(t, btc.Rank)
	assert.Equal(t, 1, *btc.Rank)

	unranked := coins[1]
	assert.Nil(t, unranked.Rank)
	assert.Zero(t, unranked.Change24h)
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, unranked.Sparkline)
}

func TestClient_ListAssets_ServerError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"status":{"error_code":429,"error_message":"rate limited"}}`))
	})

	coins, err := client.ListAssets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
	assert.Nil(t, coins)
}

func TestClient_GetAsset(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coins/bitcoin":
			assert.Equal(t, "true", r.URL.Query().Get("market_data"))
			w.Write([]byte(detailJSON))
		case "/coins/bitcoin/market_chart":
			assert.Equal(t, "7", r.URL.Query().Get("days"))
			assert.Equal(t, "daily", r.URL.Query().Get("interval"))
			w.Write([]byte(chartJSON))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	coin, err := client.GetAsset(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "BTC", coin.Symbol)
	assert.Equal(t, "https://img/btc-large.png", coin.IconURL)
	assert.Equal(t, 39578.42, coin.Price)
	assert.Equal(t, -1.5, coin.Change24h)
	assert.Equal(t, "Digital gold.", coin.Description)
	assert.Equal(t, "https://bitcoin.org", coin.Website)
	assert.Equal(t, []float64{100.5, 101.25}, coin.Sparkline)
}

func TestClient_GetAsset_NotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"coin not found"}`))
	})

	coin, err := client.GetAsset(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, coin)
}

func TestClient_GetPriceHistory(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/ethereum/market_chart", r.URL.Path)
		assert.Equal(t, "30", r.URL.Query().Get("days"))
		assert.Empty(t, r.URL.Query().Get("interval"))
		w.Write([]byte(chartJSON))
	})

	history, err := client.GetPriceHistory(context.Background(), "ethereum", 30)
	require.NoError(t, err)
	assert.Equal(t, []float64{100.5, 101.25}, history)
}

func TestClient_ListTrending(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/trending":
			w.Write([]byte(`{"coins":[{"item":{"id":"bitcoin","score":0}},{"item":{"id":"newcoin","score":1}}]}`))
		case "/coins/markets":
			assert.Equal(t, "bitcoin,newcoin", r.URL.Query().Get("ids"))
			assert.Equal(t, "10", r.URL.Query().Get("per_page"))
			w.Write([]byte(marketsJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	coins, err := client.ListTrending(context.Background())
	require.NoError(t, err)
	assert.Len(t, coins, 2)
}

func TestClient_ListTrending_Empty(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"coins":[]}`))
	})

	coins, err := client.ListTrending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, coins)
}

func TestClient_Ping(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		w.Write([]byte(`{"gecko_says":"(V3) To the Moon!"}`))
	})

	assert.NoError(t, client.Ping(context.Background()))
}

func TestClient_CancelledContext(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(marketsJSON))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListAssets(ctx)
	assert.Error(t, err)
}
