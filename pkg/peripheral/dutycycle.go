package peripheral

import (
	"context"
	"time"

	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Advertiser interface {
	StartAdvertising() error
	StopAdvertising() error
}

type TransitionRecorder interface {
	ObserveTransition(state string)
	ObserveSleep(d time.Duration)
}

// DutyCycle alternates between advertising and dormant periods to save power. A
// connection pauses it until the central disconnects.
type DutyCycle struct {
	advertiser Advertiser
	conf       entities.DutyCycleConfig
	log        *logrus.Entry
	recorder   TransitionRecorder
	state      string
	last       time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewDutyCycle(advertiser Advertiser, conf entities.DutyCycleConfig, log *logrus.Entry, recorder TransitionRecorder) *DutyCycle {
	return &DutyCycle{
		advertiser: advertiser,
		conf:       conf,
		log:        log,
		recorder:   recorder,
		state:      entities.DutyCycleStandby,
		sleep:      sleepContext,
	}
}

func (d *DutyCycle) State() string {
	return d.state
}

// LastTransition is the instant the current state was entered.
func (d *DutyCycle) LastTransition() time.Time {
	return d.last
}

// Tick advances the cycle. Leaving the advertising state blocks for the computed
// dormant period or until ctx is done.
func (d *DutyCycle) Tick(ctx context.Context, now time.Time) error {
	switch d.state {
	case entities.DutyCycleStandby:
		if err := d.advertiser.StartAdvertising(); err != nil {
			return errors.Wrap(err, "start advertising")
		}
		d.transition(entities.DutyCycleAdvertising, now)
	case entities.DutyCycleAdvertising:
		if !d.conf.Enabled {
			return nil
		}
		elapsed := now.Sub(d.last)
		if elapsed <= d.conf.AdvertiseWindow {
			return nil
		}
		if err := d.advertiser.StopAdvertising(); err != nil {
			return errors.Wrap(err, "stop advertising")
		}
		d.transition(entities.DutyCycleStandby, now)
		dormant := SleepDuration(d.conf, elapsed)
		d.recorder.ObserveSleep(dormant)
		d.log.Infof("sleeping for %s", dormant)
		return d.sleep(ctx, dormant)
	}
	return nil
}

// OnConnect pauses the cycle; the radio stops advertising by itself on connection.
// A connect drained in standby was accepted just before advertising stopped, so it
// pauses the cycle too.
func (d *DutyCycle) OnConnect(now time.Time) {
	if d.state == entities.DutyCycleConnected {
		d.log.Debugf("connect while %s ignored", d.state)
		return
	}
	d.transition(entities.DutyCycleConnected, now)
}

func (d *DutyCycle) OnDisconnect(now time.Time) {
	if d.state != entities.DutyCycleConnected {
		d.log.Debugf("disconnect while %s ignored", d.state)
		return
	}
	d.transition(entities.DutyCycleStandby, now)
}

func (d *DutyCycle) transition(state string, now time.Time) {
	d.log.Debugf("duty cycle %s -> %s", d.state, state)
	d.state = state
	d.last = now
	d.recorder.ObserveTransition(state)
}

// SleepDuration is the dormant period after advertising for elapsed: the sleep window
// shortened by the overrun past the advertise window, never negative.
func SleepDuration(conf entities.DutyCycleConfig, elapsed time.Duration) time.Duration {
	dormant := conf.SleepWindow - (elapsed - conf.AdvertiseWindow)
	if dormant < 0 {
		return 0
	}
	return dormant
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
