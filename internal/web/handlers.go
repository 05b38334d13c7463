package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/paaavkata/crypto-market-dashboard/internal/chart"
	"github.com/paaavkata/crypto-market-dashboard/internal/collector"
	"github.com/paaavkata/crypto-market-dashboard/internal/listing"
	"github.com/paaavkata/crypto-market-dashboard/internal/notify"
	"github.com/paaavkata/crypto-market-dashboard/internal/screen"
	"github.com/paaavkata/crypto-market-dashboard/internal/swap"
	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
)

type coinsResponse struct {
	screen.MarketsSnapshot
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

type coinResponse struct {
	screen.DetailSnapshot
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

type historyResponse struct {
	ID        string           `json:"id"`
	Timeframe models.Timeframe `json:"timeframe"`
	Source    collector.Source `json:"source"`
	Chart     chart.Series     `json:"chart"`
}

type trendingResponse struct {
	screen.TrendingSnapshot
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

type searchResponse struct {
	Query         string                `json:"query"`
	Rows          []listing.Row         `json:"rows"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

type swapResponse struct {
	screen.SwapSnapshot
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

type swapRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type executeResponse struct {
	Confirmation swap.Confirmation `json:"confirmation"`
	Quote        swap.Quote        `json:"quote"`
}

func (s *Server) handleCoins(w http.ResponseWriter, r *http.Request) {
	cfg, err := sortConfigFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recorder := &notify.Recorder{}
	markets := screen.NewMarkets(s.source, notify.Multi{recorder, s.logSink}, s.opts.ListPollInterval, s.logger)
	defer markets.Close()

	markets.Refresh(r.Context())
	if err := markets.SetSort(cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	markets.SetQuery(r.URL.Query().Get("q"))

	writeJSON(w, http.StatusOK, coinsResponse{
		MarketsSnapshot: markets.Snapshot(),
		Notifications:   recorder.Items(),
	})
}

func (s *Server) handleCoin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	recorder := &notify.Recorder{}
	detail := screen.NewDetail(s.source, notify.Multi{recorder, s.logSink}, id, s.opts.ChartMAPeriod, s.logger)
	defer detail.Close()

	timeframe := models.ParseTimeframe(r.URL.Query().Get("timeframe"))
	detail.SetTimeframe(r.Context(), timeframe)
	detail.Load(r.Context())

	snapshot := detail.Snapshot()
	if snapshot.NotFound {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   collector.ErrCoinNotFound.Error(),
			Title:   "Coin Not Found",
			Message: "The cryptocurrency you're looking for doesn't exist.",
		})
		return
	}
	if snapshot.Unavailable {
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:   "market data unavailable",
			Title:   notify.LoadFailedTitle,
			Message: notify.LoadFailedMessage,
		})
		return
	}

	writeJSON(w, http.StatusOK, coinResponse{
		DetailSnapshot: snapshot,
		Notifications:  recorder.Items(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	timeframe := models.ParseTimeframe(r.URL.Query().Get("timeframe"))

	samples, src := s.source.FetchHistory(r.Context(), id, timeframe)

	writeJSON(w, http.StatusOK, historyResponse{
		ID:        id,
		Timeframe: timeframe,
		Source:    src,
		Chart:     chart.BuildSeries(samples, s.opts.ChartMAPeriod),
	})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	recorder := &notify.Recorder{}
	trending := screen.NewTrending(s.source, notify.Multi{recorder, s.logSink}, s.logger)
	defer trending.Close()

	trending.Load(r.Context())

	writeJSON(w, http.StatusOK, trendingResponse{
		TrendingSnapshot: trending.Snapshot(),
		Notifications:    recorder.Items(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	recorder := &notify.Recorder{}
	search := screen.NewSearch(s.source, notify.Multi{recorder, s.logSink}, s.logger)
	defer search.Close()

	search.Open(r.Context())
	query := r.URL.Query().Get("q")
	results := search.Results(query)

	rows := make([]listing.Row, 0, len(results))
	for i, coin := range results {
		rows = append(rows, listing.NewRow(i+1, coin))
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:         query,
		Rows:          rows,
		Notifications: recorder.Items(),
	})
}

func (s *Server) handleSwapQuote(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := swapRequest{
		From:   query.Get("from"),
		To:     query.Get("to"),
		Amount: query.Get("amount"),
	}
	if !query.Has("amount") {
		req.Amount = screen.DefaultAmount
	}

	recorder := &notify.Recorder{}
	sw, err := s.openSwap(r, req, notify.Multi{recorder, s.logSink})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer sw.Close()

	writeJSON(w, http.StatusOK, swapResponse{
		SwapSnapshot:  sw.Snapshot(),
		Notifications: recorder.Items(),
	})
}

func (s *Server) handleSwapExecute(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sw, err := s.openSwap(r, req, s.logSink)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   err.Error(),
			Title:   swap.ValidationTitle(swap.ErrInvalidAmount),
			Message: swap.ValidationMessage(swap.ErrInvalidAmount),
		})
		return
	}
	defer sw.Close()

	confirmation, err := sw.Execute()
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   err.Error(),
			Title:   swap.ValidationTitle(err),
			Message: swap.ValidationMessage(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, executeResponse{
		Confirmation: confirmation,
		Quote:        sw.Quote(),
	})
}

// openSwap loads a request-scoped swap screen and applies the requested pair
// and amount on top of the loaded defaults.
func (s *Server) openSwap(r *http.Request, req swapRequest, sink notify.Sink) (*screen.Swap, error) {
	sw := screen.NewSwap(s.source, sink, s.opts.SwapPollInterval, s.logger)
	sw.Refresh(r.Context())

	if req.From != "" {
		sw.SetFrom(req.From)
	}
	if req.To != "" {
		sw.SetTo(req.To)
	}
	if err := sw.SetAmount(req.Amount); err != nil {
		sw.Close()
		return nil, err
	}
	return sw, nil
}

func sortConfigFromQuery(r *http.Request) (listing.SortConfig, error) {
	query := r.URL.Query()
	key := query.Get("sort")
	if key == "" {
		return listing.DefaultSortConfig(), nil
	}

	cfg := listing.SortConfig{
		Key:       models.SortKey(key),
		Direction: listing.Ascending,
	}
	if dir := query.Get("dir"); dir != "" {
		cfg.Direction = listing.ParseDirection(dir)
	}
	if !cfg.Key.Valid() {
		return cfg, errors.New("unknown sort key: " + key)
	}
	return cfg, nil
}
