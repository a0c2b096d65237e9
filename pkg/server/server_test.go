package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowd-dashboard/pkg/dashboard"
	"crowd-dashboard/pkg/model"
	"crowd-dashboard/pkg/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *dashboard.Dashboard, *prometheus.Registry) {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	reg := prometheus.NewRegistry()
	metrics, err := dashboard.NewMetricsSurface(reg, nil)
	require.NoError(t, err)
	d := dashboard.New(storage.NewMemoryStorage(), model.NewTimeFormatter("15:04:05", time.UTC),
		dashboard.WithLogger(log),
		dashboard.WithSurfaces(metrics),
	)
	return New(":0", d, reg, log), d, reg
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Dashboard(t *testing.T) {
	t.Run("首次渲染之前", func(t *testing.T) {
		s, _, _ := newTestServer(t)
		w := get(t, s, "/api/dashboard")
		require.Equal(t, http.StatusOK, w.Code)

		var resp DashboardResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "People Count: 0", resp.Text)
		assert.NotNil(t, resp.Labels)
		assert.Empty(t, resp.Labels)
		assert.Contains(t, w.Body.String(), `"counts":[]`)
	})

	t.Run("更新之后", func(t *testing.T) {
		s, d, _ := newTestServer(t)
		require.NoError(t, d.Init(context.Background()))
		_, err := d.Update(context.Background(), model.Samples{{Time: 1000, Count: 5}, {Time: 1060, Count: 12}})
		require.NoError(t, err)

		w := get(t, s, "/api/dashboard")
		require.Equal(t, http.StatusOK, w.Code)
		var resp DashboardResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "People Count: 12", resp.Text)
		assert.Equal(t, 12, resp.Latest)
		assert.Equal(t, []int{5, 12}, resp.Counts)
		assert.Equal(t, []string{"00:16:40", "00:17:40"}, resp.Labels)
	})
}

func TestServer_ChartOptions(t *testing.T) {
	s, _, _ := newTestServer(t)
	w := get(t, s, "/api/chart/options")
	require.Equal(t, http.StatusOK, w.Code)

	var opts map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	anim := opts["animation"].(map[string]any)
	assert.Equal(t, float64(800), anim["duration"])
	assert.Equal(t, "easeOutQuart", anim["easing"])
	assert.Equal(t, "line", opts["type"])
}

func TestServer_Metrics(t *testing.T) {
	s, d, _ := newTestServer(t)
	require.NoError(t, d.Init(context.Background()))
	_, err := d.Update(context.Background(), model.Samples{{Time: 1000, Count: 7}})
	require.NoError(t, err)

	w := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "crowd_dashboard_people_count 7"))
}

func TestServer_Healthz(t *testing.T) {
	s, _, _ := newTestServer(t)
	w := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestServer_ListenAndServe(t *testing.T) {
	s, _, _ := newTestServer(t)
	s.httpServer.Addr = "127.0.0.1:0"
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
