// Package router answers sensor queries by running one discovery and one session per
// query and rendering the outcome as response text.
package router

import (
	"context"
	"strconv"
	"time"

	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/gateways/ble"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	NoDevicesFound  = "No Devices Found"
	UnableToConnect = "Unable to connect to device"
	UnknownCommand  = "Unknown Command"
	GatewayBusy     = "Gateway Busy"
)

const (
	outcomeReading       = "reading"
	outcomeNotFound      = "not_found"
	outcomeConnectFailed = "connect_failed"
	outcomeNoReading     = "no_reading"
	outcomeUnknown       = "unknown"
	outcomeBusy          = "busy"
)

// ErrBusy is returned by Submit when the query queue is full.
var ErrBusy = errors.New("query queue is full")

type Discoverer interface {
	Discover(ctx context.Context, wanted entities.SensorTag, timeout time.Duration) (*entities.DiscoveredPeripheral, error)
}

type Reader interface {
	ReadValue(ctx context.Context, peripheral *entities.DiscoveredPeripheral, tag entities.SensorTag) (entities.Reading, error)
}

// ReadingSink receives every successful reading. Its failures never change a response.
type ReadingSink interface {
	PublishReading(reading entities.Reading) error
}

type Recorder interface {
	ObserveQuery(kind, outcome string)
	SetQueueLength(n int)
}

type query struct {
	ctx   context.Context
	kind  entities.QueryKind
	reply chan string
}

type Router struct {
	discoverer  Discoverer
	reader      Reader
	sinks       []ReadingSink
	recorder    Recorder
	log         *logrus.Entry
	scanTimeout time.Duration
	queue       chan query
}

func NewRouter(discoverer Discoverer, reader Reader, conf entities.GatewayConfig, log *logrus.Entry, recorder Recorder) *Router {
	return &Router{
		discoverer:  discoverer,
		reader:      reader,
		recorder:    recorder,
		log:         log,
		scanTimeout: conf.ScanTimeout,
		queue:       make(chan query, conf.QueueSize),
	}
}

// AddSink registers a consumer of successful readings.
func (r *Router) AddSink(sink ReadingSink) {
	r.sinks = append(r.sinks, sink)
}

// NoReading is the response for a peripheral that could not provide tag's value.
func NoReading(tag entities.SensorTag) string {
	return "No " + tag.Name + " Reading"
}

// Submit queues a query for the control loop and waits for its response. It may be
// called from any goroutine.
func (r *Router) Submit(ctx context.Context, kind entities.QueryKind) (string, error) {
	q := query{ctx: ctx, kind: kind, reply: make(chan string, 1)}
	select {
	case r.queue <- q:
		r.recorder.SetQueueLength(len(r.queue))
	default:
		r.recorder.ObserveQuery(kindLabel(kind), outcomeBusy)
		r.log.Warnf("dropping %q query: queue full", kind)
		return GatewayBusy, ErrBusy
	}

	select {
	case response := <-q.reply:
		return response, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Tick answers at most one queued query. Queries whose requester already gave up are
// discarded.
func (r *Router) Tick(ctx context.Context, now time.Time) error {
	select {
	case q := <-r.queue:
		r.recorder.SetQueueLength(len(r.queue))
		if q.ctx.Err() != nil {
			r.log.Debugf("skipping abandoned %q query", q.kind)
			return nil
		}
		q.reply <- r.Handle(ctx, q.kind)
	default:
	}
	return nil
}

// Handle runs a single discovery and session attempt for kind and renders the result.
func (r *Router) Handle(ctx context.Context, kind entities.QueryKind) string {
	tag, ok := kind.Tag()
	if !ok {
		return r.respond(kind, outcomeUnknown, UnknownCommand)
	}

	peripheral, err := r.discoverer.Discover(ctx, tag, r.scanTimeout)
	if err != nil {
		if !errors.Is(err, ble.ErrNotFound) {
			r.log.Errorf("discover %s peripheral: %v", tag.Name, err)
		}
		return r.respond(kind, outcomeNotFound, NoDevicesFound)
	}

	reading, err := r.reader.ReadValue(ctx, peripheral, tag)
	switch {
	case err == nil:
	case errors.Is(err, ble.ErrNoPeripheral):
		return r.respond(kind, outcomeNotFound, NoDevicesFound)
	case errors.Is(err, ble.ErrConnectFailed):
		return r.respond(kind, outcomeConnectFailed, UnableToConnect)
	default:
		return r.respond(kind, outcomeNoReading, NoReading(tag))
	}

	for _, sink := range r.sinks {
		if err := sink.PublishReading(reading); err != nil {
			r.log.Errorf("publish %s reading: %v", tag.Name, err)
		}
	}
	return r.respond(kind, outcomeReading, strconv.Itoa(int(reading.Value)))
}

func (r *Router) respond(kind entities.QueryKind, outcome, response string) string {
	r.recorder.ObserveQuery(kindLabel(kind), outcome)
	r.log.Infof("%s query answered: %s", kindLabel(kind), response)
	return response
}

func kindLabel(kind entities.QueryKind) string {
	if _, ok := kind.Tag(); !ok {
		return "unknown"
	}
	return string(kind)
}
