package sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mattsolo1/grove-nodemanager/pkg/persistence"
)

var (
	saveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nodemanager",
		Name:      "config_saves_total",
		Help:      "Config saves by backend and result.",
	}, []string{"backend", "result"})

	saveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nodemanager",
		Name:      "config_save_duration_seconds",
		Help:      "Time spent saving the config snapshot.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend"})

	reloadTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nodemanager",
		Name:      "config_reloads_total",
		Help:      "Reloads triggered by external edits to the config file.",
	})

	redrawTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nodemanager",
		Name:      "redraw_requests_total",
		Help:      "Frames requested from the host after store changes.",
	})
)

func backendName(b persistence.Bridge) string {
	switch b.(type) {
	case *persistence.FileBridge:
		return persistence.BackendFile
	case *persistence.SQLiteBridge:
		return persistence.BackendSQLite
	case *persistence.BadgerBridge:
		return persistence.BackendBadger
	case *persistence.HTTPBridge:
		return persistence.BackendHTTP
	default:
		return "other"
	}
}
