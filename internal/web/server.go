package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/paaavkata/crypto-market-dashboard/internal/health"
	"github.com/paaavkata/crypto-market-dashboard/internal/notify"
	"github.com/paaavkata/crypto-market-dashboard/internal/screen"
)

type Options struct {
	ListPollInterval time.Duration
	SwapPollInterval time.Duration
	ChartMAPeriod    int
}

// Server exposes the dashboard screens over JSON and WebSocket.
type Server struct {
	source   screen.DataSource
	health   *health.HealthChecker
	opts     Options
	logger   *logrus.Logger
	logSink  notify.Sink
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	closing  bool
	active   sync.WaitGroup
}

func NewServer(source screen.DataSource, checker *health.HealthChecker, opts Options, logger *logrus.Logger) *Server {
	return &Server{
		source:  source,
		health:  checker,
		opts:    opts,
		logger:  logger,
		logSink: notify.NewLogSink(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		sessions: make(map[uuid.UUID]*session),
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/coins", s.handleCoins)
	mux.HandleFunc("GET /api/coins/{id}", s.handleCoin)
	mux.HandleFunc("GET /api/coins/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /api/trending", s.handleTrending)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/swap/quote", s.handleSwapQuote)
	mux.HandleFunc("POST /api/swap/execute", s.handleSwapExecute)

	mux.HandleFunc("GET /ws/markets", s.handleMarketsSocket)
	mux.HandleFunc("GET /ws/swap", s.handleSwapSocket)

	if s.health != nil {
		s.health.Register(mux)
	}

	return s.logRequests(mux)
}

// Start serves in the background and returns the server for shutdown.
func (s *Server) Start(port string) *http.Server {
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      s.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		s.logger.WithField("port", port).Info("Starting dashboard server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("Dashboard server failed")
		}
	}()

	return server
}

// Shutdown stops accepting requests, closes every open screen session and
// waits, bounded by ctx, until each session has torn its screen down.
func (s *Server) Shutdown(ctx context.Context, server *http.Server) error {
	err := server.Shutdown(ctx)
	s.closeSessions()

	done := make(chan struct{})
	go func() {
		s.active.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		if err == nil {
			err = fmt.Errorf("waiting for screen sessions: %w", ctx.Err())
		}
		return err
	}
}

func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// addSession registers a session unless shutdown has begun.
func (s *Server) addSession(sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.sessions[sess.id] = sess
	s.active.Add(1)
	return true
}

// removeSession must run after the session's screen is closed.
func (s *Server) removeSession(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return
	}
	delete(s.sessions, id)
	s.active.Done()
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	s.closing = true
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.conn.Close()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("Handled request")
	})
}

type errorResponse struct {
	Error   string `json:"error"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
