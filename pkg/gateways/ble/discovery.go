// Package ble drives the central side of the gateway: finding a peripheral that
// advertises a sensor tag and running one connect/read/disconnect session against it.
package ble

import (
	"context"
	"sync"
	"time"

	bloomFilter "github.com/bits-and-blooms/bloom/v3"
	"github.com/cenkalti/backoff"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/advertisement"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/radio"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type ScanObserver interface {
	ObserveScan(duration time.Duration, advertisers uint32, found bool)
}

// Engine owns the scanner. It is driven from a single control loop and is not safe
// for concurrent Discover calls.
type Engine struct {
	central  radio.Central
	log      *logrus.Entry
	seen     *bloomFilter.BloomFilter
	observer ScanObserver
}

// NewEngine enables the adapter, retrying a bounded number of times. Failure is
// reported as ErrDiscoveryUnavailable.
func NewEngine(central radio.Central, conf entities.GatewayConfig, log *logrus.Entry, observer ScanObserver) (*Engine, error) {
	enable := func() error {
		err := central.Enable()
		if err != nil {
			log.Warnf("enable radio adapter: %v", err)
		}
		return err
	}
	retries := backoff.WithMaxRetries(backoff.NewConstantBackOff(conf.Radio.EnableInterval), conf.Radio.EnableRetries)
	if err := backoff.Retry(enable, retries); err != nil {
		return nil, errors.Wrap(ErrDiscoveryUnavailable, err.Error())
	}

	return &Engine{
		central:  central,
		log:      log,
		seen:     bloomFilter.NewWithEstimates(conf.Bloom.Capacity, conf.Bloom.FalsePositive),
		observer: observer,
	}, nil
}

// Discover scans until the first advertisement carrying wanted's content tag shows up,
// the timeout elapses or ctx is done. An empty result is ErrNotFound.
func (e *Engine) Discover(ctx context.Context, wanted entities.SensorTag, timeout time.Duration) (*entities.DiscoveredPeripheral, error) {
	adv, err := e.DiscoverMatching(ctx, advertisement.MatchFilter(wanted), timeout)
	if err != nil {
		return nil, err
	}
	return &entities.DiscoveredPeripheral{
		Address: adv.Address,
		Name:    adv.LocalName,
		Tag:     wanted,
	}, nil
}

// DiscoverMatching returns the first advertisement accepted by filter.
func (e *Engine) DiscoverMatching(ctx context.Context, filter advertisement.Filter, timeout time.Duration) (entities.Advertisement, error) {
	if timeout <= 0 {
		return entities.Advertisement{}, ErrNotFound
	}

	started := time.Now()
	var once sync.Once
	stop := func() { once.Do(e.stopScan) }
	found := make(chan entities.Advertisement, 1)
	done := make(chan error, 1)
	go func() {
		done <- e.central.Scan(func(adv entities.Advertisement) {
			e.seen.Add([]byte(adv.Address))
			if !filter(adv) {
				return
			}
			select {
			case found <- adv:
				stop()
			default:
			}
		})
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var scanErr error
	select {
	case scanErr = <-done:
	case <-timer.C:
		stop()
		scanErr = <-done
	case <-ctx.Done():
		stop()
		scanErr = <-done
	}

	advertisers := e.seen.ApproximatedSize()
	e.seen.ClearAll()
	e.log.Infof("Devices found: %d", advertisers)

	select {
	case adv := <-found:
		e.observer.ObserveScan(time.Since(started), advertisers, true)
		e.log.Infof("matching peripheral %s (%s) found", adv.Address, adv.LocalName)
		return adv, nil
	default:
	}

	e.observer.ObserveScan(time.Since(started), advertisers, false)
	if scanErr != nil {
		return entities.Advertisement{}, errors.Wrap(scanErr, "scan")
	}
	return entities.Advertisement{}, ErrNotFound
}

func (e *Engine) stopScan() {
	if err := e.central.StopScan(); err != nil {
		e.log.Debugf("stop scan: %v", err)
	}
}
