package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nodemanager",
		Name:      "http_requests_total",
		Help:      "Config API requests by route and status.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nodemanager",
		Name:      "http_request_duration_seconds",
		Help:      "Config API request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	websocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "nodemanager",
		Name:      "websocket_clients",
		Help:      "Connected event stream clients.",
	})
)

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		s.logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"route":   route,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
		}).Debug("request")
	}
}
