package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.UserRegistered()
	m.UserRegistered()
	m.LoginAttempt(true)
	m.LoginAttempt(false)
	m.LoginAttempt(false)
	m.AccountCreated("Bank")
	m.ObserveRequest("GET", "/health", 200, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Registrations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues(LoginSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Logins.WithLabelValues(LoginFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccountsCreated.WithLabelValues("Bank")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/health", "200")))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.UserRegistered()
		m.LoginAttempt(true)
		m.AccountCreated("Cash")
		m.ObserveRequest("GET", "/", 200, time.Second)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.UserRegistered()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "dailyreal_user_registrations_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
