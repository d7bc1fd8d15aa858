package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "eventsync"

// Crawl outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeSkipped     = "skipped"
	OutcomeFetchFailed = "fetch_failed"
	OutcomeUpstreamNG  = "upstream_ng"
	OutcomePersistence = "persistence_failed"
	OutcomeBusy        = "busy"
)

// Recorder is safe to use as a nil pointer; every method is then a no-op.
type Recorder struct {
	crawlRuns      *prometheus.CounterVec
	eventsFetched  prometheus.Counter
	recordsWritten prometheus.Counter
	batchCommits   *prometheus.CounterVec
	lastSuccessTS  prometheus.Gauge
	crawlDuration  prometheus.Histogram
}

func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		crawlRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crawl_runs_total",
			Help:      "Crawl invocations by outcome",
		}, []string{"outcome"}),
		eventsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_fetched_total",
			Help:      "Events received from the feed",
		}),
		recordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Event records committed to the store",
		}),
		batchCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_commits_total",
			Help:      "Batch commits by result",
		}, []string{"result"}),
		lastSuccessTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful crawl",
		}),
		crawlDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "crawl_duration_seconds",
			Help:      "Time spent in one crawl invocation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(r.crawlRuns, r.eventsFetched, r.recordsWritten, r.batchCommits, r.lastSuccessTS, r.crawlDuration)
	}
	return r
}

func (r *Recorder) CrawlFinished(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.crawlRuns.WithLabelValues(outcome).Inc()
	r.crawlDuration.Observe(d.Seconds())
	if outcome == OutcomeOK || outcome == OutcomeSkipped {
		r.lastSuccessTS.SetToCurrentTime()
	}
}

// CrawlBusy counts an invocation turned away by the single-flight guard. It
// never ran, so no duration is observed.
func (r *Recorder) CrawlBusy() {
	if r == nil {
		return
	}
	r.crawlRuns.WithLabelValues(OutcomeBusy).Inc()
}

func (r *Recorder) EventsFetched(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.eventsFetched.Add(float64(n))
}

func (r *Recorder) BatchCommitted(records int, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.batchCommits.WithLabelValues("error").Inc()
		return
	}
	r.batchCommits.WithLabelValues("ok").Inc()
	r.recordsWritten.Add(float64(records))
}
