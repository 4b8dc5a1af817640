package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ward_rooms"

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	once sync.Once

	roomOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_operations_total",
			Help:      "Count of room operations by operation and result.",
		},
		[]string{"operation", "result"},
	)

	imageOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_operations_total",
			Help:      "Count of image store calls by operation and result.",
		},
		[]string{"operation", "result"},
	)

	compensations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_compensations_total",
			Help:      "Count of images deleted to undo a failed mutation, by result.",
		},
		[]string{"result"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Count of room cache lookups by result.",
		},
		[]string{"result"},
	)

	directoryRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directory_requests_total",
			Help:      "Count of remote directory requests by resource and result.",
		},
		[]string{"resource", "result"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			roomOperations,
			imageOperations,
			compensations,
			cacheLookups,
			directoryRequests,
			httpDuration,
		)
	})
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

func ObserveRoomOperation(operation string, err error) {
	roomOperations.WithLabelValues(operation, result(err)).Inc()
}

func ObserveImageOperation(operation string, err error) {
	imageOperations.WithLabelValues(operation, result(err)).Inc()
}

func ObserveCompensation(err error) {
	compensations.WithLabelValues(result(err)).Inc()
}

func IncCacheLookup(res string) {
	cacheLookups.WithLabelValues(res).Inc()
}

func ObserveDirectoryRequest(resource string, err error) {
	directoryRequests.WithLabelValues(resource, result(err)).Inc()
}

// GinMiddleware records request latency by matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
