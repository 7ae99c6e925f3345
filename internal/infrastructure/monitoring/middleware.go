package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection. Requests are
// labelled by route pattern rather than raw path to bound cardinality.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		reqSize := c.Request.ContentLength
		if reqSize < 0 {
			reqSize = 0
		}

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		respSize := int64(c.Writer.Size())
		if respSize < 0 {
			respSize = 0
		}

		metrics.RecordHTTPRequest(method, path, status, time.Since(start), reqSize, respSize)
	}
}

// Timer measures a volume operation.
type Timer struct {
	start    time.Time
	metrics  *Metrics
	volumeID string
	op       string
}

// NewTimer starts timing op on a volume.
func NewTimer(metrics *Metrics, volumeID, op string) *Timer {
	return &Timer{
		start:    time.Now(),
		metrics:  metrics,
		volumeID: volumeID,
		op:       op,
	}
}

// Stop records the duration under result.
func (t *Timer) Stop(result string) {
	t.metrics.RecordVolumeOp(t.volumeID, t.op, result, time.Since(t.start))
}
