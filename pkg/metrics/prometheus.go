package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	queriesTotal         = "gateway_queries_total"
	sessionsTotal        = "gateway_sessions_total"
	scansTotal           = "gateway_scans_total"
	scanDuration         = "gateway_scan_duration_seconds"
	scanAdvertisers      = "gateway_scan_advertisers"
	queueLength          = "gateway_query_queue_length"
	dutyCycleTransitions = "sensor_duty_cycle_transitions_total"
	dutyCycleSleep       = "sensor_duty_cycle_sleep_seconds"
)

// Prom keeps the gateway and sensor collectors registered on one registerer.
type Prom struct {
	queries     *prometheus.CounterVec
	sessions    *prometheus.CounterVec
	scans       *prometheus.CounterVec
	scanLatency prometheus.Histogram
	advertisers prometheus.Gauge
	queue       prometheus.Gauge
	transitions *prometheus.CounterVec
	sleep       prometheus.Histogram
}

func NewProm(registerer prometheus.Registerer) *Prom {
	p := &Prom{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: queriesTotal,
			Help: "Queries answered, by kind and rendered outcome.",
		}, []string{"kind", "outcome"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: sessionsTotal,
			Help: "Connect/read/disconnect sessions, by outcome.",
		}, []string{"outcome"}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: scansTotal,
			Help: "Discovery scans, by whether a matching peripheral was found.",
		}, []string{"found"}),
		scanLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    scanDuration,
			Help:    "Time spent scanning until a match or the timeout.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		advertisers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: scanAdvertisers,
			Help: "Approximate distinct advertisers seen during the last scan.",
		}),
		queue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: queueLength,
			Help: "Queries waiting for the control loop.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: dutyCycleTransitions,
			Help: "Duty-cycle state transitions, by target state.",
		}, []string{"state"}),
		sleep: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    dutyCycleSleep,
			Help:    "Dormant periods computed by the duty cycle.",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		}),
	}

	registerer.MustRegister(p.queries, p.sessions, p.scans, p.scanLatency, p.advertisers, p.queue, p.transitions, p.sleep)
	return p
}

func (p *Prom) ObserveQuery(kind, outcome string) {
	p.queries.WithLabelValues(kind, outcome).Inc()
}

func (p *Prom) ObserveSession(outcome string) {
	p.sessions.WithLabelValues(outcome).Inc()
}

func (p *Prom) ObserveScan(duration time.Duration, advertisers uint32, found bool) {
	label := "false"
	if found {
		label = "true"
	}
	p.scans.WithLabelValues(label).Inc()
	p.scanLatency.Observe(duration.Seconds())
	p.advertisers.Set(float64(advertisers))
}

func (p *Prom) SetQueueLength(n int) {
	p.queue.Set(float64(n))
}

func (p *Prom) ObserveTransition(state string) {
	p.transitions.WithLabelValues(state).Inc()
}

func (p *Prom) ObserveSleep(d time.Duration) {
	p.sleep.Observe(d.Seconds())
}

// Handler exposes gatherer in the text exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NewServer returns the scrape endpoint for gatherer; the caller owns its lifecycle.
func NewServer(address string, gatherer prometheus.Gatherer) *http.Server {
	return &http.Server{
		Addr:              address,
		Handler:           Handler(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ObserveQuery(kind, outcome string)                                 {}
func (Nop) ObserveSession(outcome string)                                     {}
func (Nop) ObserveScan(duration time.Duration, advertisers uint32, found bool) {}
func (Nop) SetQueueLength(n int)                                              {}
func (Nop) ObserveTransition(state string)                                    {}
func (Nop) ObserveSleep(d time.Duration)                                      {}
