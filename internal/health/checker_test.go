package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestCheckHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		pingErr      error
		mockFallback bool
		expected     string
		httpStatus   int
	}{
		{"upstream reachable", nil, true, StatusHealthy, http.StatusOK},
		{"upstream down with fallback", errors.New("timeout"), true, StatusDegraded, http.StatusOK},
		{"upstream down without fallback", errors.New("timeout"), false, StatusUnhealthy, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinger := new(MockPinger)
			pinger.On("Ping", mock.Anything).Return(tt.pingErr)

			checker := NewHealthChecker(pinger, tt.mockFallback, newTestLogger())
			mux := http.NewServeMux()
			checker.Register(mux)

			for _, path := range []string{"/health", "/ready"} {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

				assert.Equal(t, tt.httpStatus, rec.Code)
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

				var status HealthStatus
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
				assert.Equal(t, tt.expected, status.Status)
				assert.Contains(t, status.Services, "coingecko")
			}
			pinger.AssertNumberOfCalls(t, "Ping", 2)
		})
	}
}
