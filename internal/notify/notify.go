package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

const (
	LoadFailedTitle       = "Error"
	LoadFailedMessage     = "Failed to load cryptocurrency data. Please try again later."
	TrendingFailedMessage = "Failed to load trending coins. Please try again later."
	SearchFailedMessage   = "Failed to load search data. Please try again later."
	SwapSimulatedTitle    = "Swap Simulated"
)

type Notification struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	Time     time.Time `json:"time"`
}

// Sink receives fire-and-forget user notifications. Implementations must not
// block the caller.
type Sink interface {
	Notify(title, message string, severity Severity)
}

func New(title, message string, severity Severity) Notification {
	if severity == "" {
		severity = SeverityDefault
	}
	return Notification{
		ID:       uuid.New(),
		Title:    title,
		Message:  message,
		Severity: severity,
		Time:     time.Now().UTC(),
	}
}

// LogSink writes notifications to the service log.
type LogSink struct {
	logger *logrus.Logger
}

func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(title, message string, severity Severity) {
	entry := s.logger.WithFields(logrus.Fields{
		"title":    title,
		"severity": severity,
	})
	if severity == SeverityDestructive {
		entry.Warn(message)
		return
	}
	entry.Info(message)
}

// ChannelSink buffers notifications for a single consumer. When the buffer is
// full new notifications are dropped.
type ChannelSink struct {
	mu     sync.Mutex
	ch     chan Notification
	closed bool
	logger *logrus.Logger
}

func NewChannelSink(size int, logger *logrus.Logger) *ChannelSink {
	if size <= 0 {
		size = 16
	}
	return &ChannelSink{
		ch:     make(chan Notification, size),
		logger: logger,
	}
}

func (s *ChannelSink) Notify(title, message string, severity Severity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	select {
	case s.ch <- New(title, message, severity):
	default:
		s.logger.WithField("title", title).Warn("Notification buffer full, dropping notification")
	}
}

func (s *ChannelSink) C() <-chan Notification {
	return s.ch
}

// Close stops accepting notifications and closes the channel.
func (s *ChannelSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Recorder keeps notifications in memory, for request-scoped screens that
// return them with the response.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(title, message string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, New(title, message, severity))
}

func (r *Recorder) Items() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Multi fans a notification out to several sinks.
type Multi []Sink

func (m Multi) Notify(title, message string, severity Severity) {
	for _, sink := range m {
		if sink != nil {
			sink.Notify(title, message, severity)
		}
	}
}

// Discard drops every notification.
var Discard Sink = discard{}

type discard struct{}

func (discard) Notify(string, string, Severity) {}
