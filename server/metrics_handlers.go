package server

import (
	"crypto/subtle"
	"fedi_engine/dal"
	"fedi_engine/logic"
	"fedi_engine/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"strings"
)

// Serves Prometheus scrapes. The queue gauge is refreshed on every scrape so it is current
// even while the delivery loop is idle.
type metricsHandlerGroup struct {
	cfg     *shared.Config
	logger  shared.ILogger
	repo    dal.IRepo
	metrics logic.IMetrics
	scrape  http.Handler
}

func NewMetricsHandlerGroup(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	metrics logic.IMetrics,
) IHandlerGroup {
	gatherer := promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog:      scrapeErrorLog{logger},
		ErrorHandling: promhttp.ContinueOnError,
	})
	return &metricsHandlerGroup{
		cfg:     cfg,
		logger:  logger,
		repo:    repo,
		metrics: metrics,
		scrape:  promhttp.InstrumentMetricHandler(prometheus.DefaultRegisterer, gatherer),
	}
}

type scrapeErrorLog struct {
	logger shared.ILogger
}

func (l scrapeErrorLog) Println(v ...interface{}) {
	l.logger.Warnf("Metrics gathering: %v", v)
}

func (hg *metricsHandlerGroup) Prefix() string {
	return ""
}

func (hg *metricsHandlerGroup) GroupDefs() []handlerDef {
	return []handlerDef{
		{"GET", "/metrics", hg.getMetrics},
	}
}

func (hg *metricsHandlerGroup) AuthMW() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hg.isScraper(r) {
				hg.logger.Warnf("Rejected metrics scrape from %s", r.RemoteAddr)
				writeErrorResponse(w, badAuthorization, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (hg *metricsHandlerGroup) isScraper(r *http.Request) bool {
	expected := hg.cfg.Secrets.MetricsAuth
	token, ok := strings.CutPrefix(r.Header.Get(metricsAuthHeader), "Bearer ")
	if !ok || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}

func (hg *metricsHandlerGroup) getMetrics(w http.ResponseWriter, r *http.Request) {
	if qlen, err := hg.repo.GetDeliveryQueueLength(); err != nil {
		hg.logger.Errorf("Failed to read delivery queue length: %v", err)
	} else {
		hg.metrics.DeliveryQueueLength(qlen)
	}
	hg.scrape.ServeHTTP(w, r)
}
