package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestObserveDB_ClassifiesErrors(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	_ = p.ObserveDB("users.find_by_id", func() error { return nil })
	_ = p.ObserveDB("users.find_by_id", func() error { return mongo.ErrNoDocuments })
	err := p.ObserveDB("bookings.insert", func() error { return context.DeadlineExceeded })

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("bookings.insert", "timeout")))
	assert.Equal(t, 1, testutil.CollectAndCount(p.DbErrorsTotal))
	_ = p.ObserveDB("x", func() error { return errors.New("boom") })
	assert.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("x", "unknown")))
}

func TestGinHandleMiddleware_CountsRequests(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())
	r := gin.New()
	r.Use(p.GinHandleMiddleware())
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "/api/health", "200")))
}

func TestLogger_LevelAndJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn")

	log.Info("dropped")
	log.Warn("kept", "booking_id", "b1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "b1", rec["booking_id"])
	assert.NotContains(t, rec, "trace_id")
}
