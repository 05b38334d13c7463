package notify

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// recorder captures notifications for assertions.
type recorder struct {
	titles []string
}

func (r *recorder) Notify(title, message string, severity Severity) {
	r.titles = append(r.titles, title)
}

func TestNew(t *testing.T) {
	t.Parallel()

	n := New("Swap Simulated", "Swapped 1 BTC to 18 ETH", "")
	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.Equal(t, SeverityDefault, n.Severity)
	assert.False(t, n.Time.IsZero())

	other := New("Swap Simulated", "Swapped 1 BTC to 18 ETH", "")
	assert.NotEqual(t, n.ID, other.ID)
}

func TestChannelSink(t *testing.T) {
	t.Parallel()

	t.Run("delivers in order", func(t *testing.T) {
		sink := NewChannelSink(4, newTestLogger())
		sink.Notify("first", "a", SeverityDefault)
		sink.Notify(LoadFailedTitle, LoadFailedMessage, SeverityDestructive)

		first := <-sink.C()
		second := <-sink.C()
		assert.Equal(t, "first", first.Title)
		assert.Equal(t, LoadFailedTitle, second.Title)
		assert.Equal(t, SeverityDestructive, second.Severity)
	})

	t.Run("drops when full", func(t *testing.T) {
		sink := NewChannelSink(1, newTestLogger())
		sink.Notify("kept", "", SeverityDefault)
		sink.Notify("dropped", "", SeverityDefault)
		sink.Close()

		var titles []string
		for n := range sink.C() {
			titles = append(titles, n.Title)
		}
		assert.Equal(t, []string{"kept"}, titles)
	})

	t.Run("notify after close is ignored", func(t *testing.T) {
		sink := NewChannelSink(1, newTestLogger())
		sink.Close()
		sink.Close()

		assert.NotPanics(t, func() {
			sink.Notify("late", "", SeverityDefault)
		})
		_, ok := <-sink.C()
		assert.False(t, ok)
	})
}

func TestLogSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	NewLogSink(logger).Notify(LoadFailedTitle, LoadFailedMessage, SeverityDestructive)

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"level":"warning"`)
	assert.Contains(t, out, LoadFailedMessage)
}

func TestMulti(t *testing.T) {
	t.Parallel()

	a, b := &recorder{}, &recorder{}
	Multi{a, nil, b, Discard}.Notify("Swap Simulated", "", SeverityDefault)

	assert.Equal(t, []string{"Swap Simulated"}, a.titles)
	assert.Equal(t, []string{"Swap Simulated"}, b.titles)
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder
	assert.Empty(t, r.Items())

	r.Notify("Swap Simulated", "Swapped 0.1 BTC to 0.005449 ETH", SeverityDefault)
	items := r.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Swapped 0.1 BTC to 0.005449 ETH", items[0].Message)

	items[0].Title = "changed"
	assert.Equal(t, "Swap Simulated", r.Items()[0].Title)
}
