package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/paaavkata/crypto-market-dashboard/internal/notify"
	"github.com/paaavkata/crypto-market-dashboard/internal/screen"
	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
)

const (
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 4096
	notificationBuffer = 16
)

const (
	MessageSession      = "session"
	MessageMarkets      = "markets"
	MessageSwap         = "swap"
	MessageNotification = "notification"
	MessageError        = "error"
)

// Message is a server to client frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Command is a client to server frame.
type Command struct {
	Type  string `json:"type"`
	Key   string `json:"key,omitempty"`
	Query string `json:"query,omitempty"`
	Value string `json:"value,omitempty"`
}

type session struct {
	id     uuid.UUID
	conn   *websocket.Conn
	logger *logrus.Entry

	writeMu sync.Mutex
}

func (s *session) send(msgType string, data interface{}) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(Message{Type: msgType, Data: data}); err != nil {
		s.logger.WithError(err).Debug("Failed to write websocket message")
	}
}

type commandFunc func(ctx context.Context, cmd Command) error

// openFunc opens the screen behind a session and returns its command
// dispatcher and its close function.
type openFunc func(ctx context.Context, sess *session, sink notify.Sink) (commandFunc, func(), error)

func (s *Server) handleMarketsSocket(w http.ResponseWriter, r *http.Request) {
	s.serveSession(w, r, MessageMarkets, func(ctx context.Context, sess *session, sink notify.Sink) (commandFunc, func(), error) {
		markets := screen.NewMarkets(s.source, sink, s.opts.ListPollInterval, s.logger)
		markets.OnChange(func(snapshot screen.MarketsSnapshot) {
			sess.send(MessageMarkets, snapshot)
		})
		sess.send(MessageMarkets, markets.Snapshot())

		if err := markets.Start(ctx); err != nil {
			markets.Close()
			return nil, nil, err
		}

		dispatch := func(ctx context.Context, cmd Command) error {
			switch cmd.Type {
			case "sort":
				return markets.ToggleSort(models.SortKey(cmd.Key))
			case "search":
				markets.SetQuery(cmd.Query)
			case "refresh":
				markets.Refresh(ctx)
			default:
				return fmt.Errorf("unknown command %q", cmd.Type)
			}
			return nil
		}
		return dispatch, markets.Close, nil
	})
}

func (s *Server) handleSwapSocket(w http.ResponseWriter, r *http.Request) {
	s.serveSession(w, r, MessageSwap, func(ctx context.Context, sess *session, sink notify.Sink) (commandFunc, func(), error) {
		sw := screen.NewSwap(s.source, sink, s.opts.SwapPollInterval, s.logger)
		sw.OnChange(func(snapshot screen.SwapSnapshot) {
			sess.send(MessageSwap, snapshot)
		})
		sess.send(MessageSwap, sw.Snapshot())

		if err := sw.Start(ctx); err != nil {
			sw.Close()
			return nil, nil, err
		}

		dispatch := func(ctx context.Context, cmd Command) error {
			switch cmd.Type {
			case "from":
				sw.SetFrom(cmd.Value)
			case "to":
				sw.SetTo(cmd.Value)
			case "amount":
				return sw.SetAmount(cmd.Value)
			case "flip":
				sw.Flip()
			case "execute":
				// Validation failures reach the client as notifications.
				if _, err := sw.Execute(); errors.Is(err, screen.ErrClosed) {
					return err
				}
			case "refresh":
				sw.Refresh(ctx)
			default:
				return fmt.Errorf("unknown command %q", cmd.Type)
			}
			return nil
		}
		return dispatch, sw.Close, nil
	})
}

// serveSession runs one screen for the lifetime of a WebSocket connection.
// The screen is closed on every exit path.
func (s *Server) serveSession(w http.ResponseWriter, r *http.Request, kind string, open openFunc) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to upgrade websocket connection")
		return
	}
	defer conn.Close()

	sess := &session{
		id:   uuid.New(),
		conn: conn,
	}
	sess.logger = s.logger.WithFields(logrus.Fields{
		"session_id": sess.id,
		"screen":     kind,
	})
	if !s.addSession(sess) {
		sess.logger.Info("Rejecting screen session during shutdown")
		return
	}
	defer s.removeSession(sess.id)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess.logger.Info("Screen session opened")
	sess.send(MessageSession, map[string]string{"id": sess.id.String(), "screen": kind})

	sink := notify.NewChannelSink(notificationBuffer, s.logger)
	var forwarder sync.WaitGroup
	forwarder.Add(1)
	go func() {
		defer forwarder.Done()
		for n := range sink.C() {
			sess.send(MessageNotification, n)
		}
	}()

	dispatch, closeScreen, err := open(ctx, sess, notify.Multi{sink, s.logSink})
	if err != nil {
		sess.logger.WithError(err).Error("Failed to open screen")
		sess.send(MessageError, errorResponse{Error: err.Error()})
		sink.Close()
		forwarder.Wait()
		return
	}

	go s.keepAlive(ctx, sess)
	s.readCommands(ctx, sess, dispatch)

	cancel()
	closeScreen()
	sink.Close()
	forwarder.Wait()

	sess.logger.Info("Screen session closed")
}

func (s *Server) readCommands(ctx context.Context, sess *session, dispatch commandFunc) {
	conn := sess.conn
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sess.logger.WithError(err).Warn("Websocket closed unexpectedly")
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			sess.send(MessageError, errorResponse{Error: "invalid command"})
			continue
		}

		sess.logger.WithField("command", cmd.Type).Debug("Received command")
		if err := dispatch(ctx, cmd); err != nil {
			sess.send(MessageError, errorResponse{Error: err.Error()})
		}
	}
}

func (s *Server) keepAlive(ctx context.Context, sess *session) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sess.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				sess.logger.WithError(err).Debug("Failed to send ping")
				return
			}
		}
	}
}
