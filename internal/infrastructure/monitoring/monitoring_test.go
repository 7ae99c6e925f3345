package monitoring

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/finder/internal/volume"
	"github.com/GriffinCanCode/finder/internal/volume/entry"
)

type mockVolume struct {
	mock.Mock
	volume.Volume
}

func (m *mockVolume) ID() string { return "l1_" }

func (m *mockVolume) Directory(token string) (entry.Directory, error) {
	args := m.Called(token)
	return args.Get(0).(entry.Directory), args.Error(1)
}

func (m *mockVolume) DeleteFile(token string) bool {
	return m.Called(token).Bool(0)
}

func (m *mockVolume) Ingest(dirToken string, uploads []volume.Upload) []entry.File {
	return m.Called(dirToken, uploads).Get(0).([]entry.File)
}

func TestResult(t *testing.T) {
	tests := map[string]error{
		"ok":             nil,
		"not_found":      volume.ErrNotFound,
		"exists":         volume.ErrAlreadyExists,
		"parent_invalid": volume.ErrParentInvalid,
		"invalid_name":   volume.ErrInvalidName,
		"locked":         volume.ErrLocked,
		"unavailable":    volume.ErrUnavailable,
		"io":             volume.NewIOError("mkdir", errors.New("disk full")),
		"canceled":       context.Canceled,
		"error":          errors.New("other"),
	}
	for want, err := range tests {
		assert.Equal(t, want, Result(err))
	}
}

func TestInstrumentRecordsOutcomes(t *testing.T) {
	m := NewMetrics()
	inner := &mockVolume{}
	inner.On("Directory", "l1_a").Return(entry.Directory{}, nil)
	inner.On("Directory", "l1_b").Return(entry.Directory{}, volume.ErrNotFound)
	inner.On("DeleteFile", "l1_c").Return(false)
	inner.On("Ingest", "l1_Lw", mock.Anything).Return([]entry.File{{}})

	v := Instrument(inner, m)

	_, err := v.Directory("l1_a")
	require.NoError(t, err)
	_, err = v.Directory("l1_b")
	assert.ErrorIs(t, err, volume.ErrNotFound)
	assert.False(t, v.DeleteFile("l1_c"))
	v.Ingest("l1_Lw", make([]volume.Upload, 3))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.VolumeOps.WithLabelValues("l1_", "directory", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VolumeOps.WithLabelValues("l1_", "directory", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VolumeOps.WithLabelValues("l1_", "delete_file", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IngestedFiles.WithLabelValues("l1_", "saved")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IngestedFiles.WithLabelValues("l1_", "skipped")))
	inner.AssertExpectations(t)
}

func TestInstrumentNilMetrics(t *testing.T) {
	inner := &mockVolume{}
	assert.Same(t, volume.Volume(inner), Instrument(inner, nil))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/connector", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/connector?cmd=open", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/connector", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "finder_http_requests_total")
}

func TestHandlerLeavesCompressionToServer(t *testing.T) {
	m := NewMetrics()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Contains(t, w.Body.String(), "finder_volumes_mounted")
}

func TestNewMetricsTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}
