// Package peripheral runs a sensor node: it hosts the sensor attributes and advertises
// its content tag under a duty cycle.
package peripheral

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/advertisement"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/radio"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const eventQueueSize = 16

// Node owns the peripheral radio. Radio callbacks only queue events; Tick dispatches
// them and then advances the duty cycle, all on the control loop.
type Node struct {
	radio              radio.Peripheral
	conf               entities.SensorConfig
	tag                entities.SensorTag
	source             AttributeReadHandler
	dutyCycle          *DutyCycle
	connectHandlers    []ConnectHandler
	disconnectHandlers []DisconnectHandler
	events             chan Event
	log                *logrus.Entry
	now                func() time.Time
}

func NewNode(peripheral radio.Peripheral, conf entities.SensorConfig, source AttributeReadHandler, log *logrus.Entry, recorder TransitionRecorder) (*Node, error) {
	tag, ok := entities.TagByContent(conf.ContentTag)
	if !ok {
		return nil, errors.Errorf("unknown content tag %q", conf.ContentTag)
	}

	node := &Node{
		radio:     peripheral,
		conf:      conf,
		tag:       tag,
		source:    source,
		dutyCycle: NewDutyCycle(peripheral, conf.DutyCycle, log.WithField("component", "dutycycle"), recorder),
		events:    make(chan Event, eventQueueSize),
		log:       log,
		now:       time.Now,
	}
	node.AddConnectHandler(connectFunc(node.refreshAttributes))
	node.AddConnectHandler(node.dutyCycle)
	node.AddDisconnectHandler(node.dutyCycle)
	return node, nil
}

type connectFunc func(now time.Time)

func (f connectFunc) OnConnect(now time.Time) { f(now) }

func (n *Node) AddConnectHandler(handler ConnectHandler) {
	n.connectHandlers = append(n.connectHandlers, handler)
}

func (n *Node) AddDisconnectHandler(handler DisconnectHandler) {
	n.disconnectHandlers = append(n.disconnectHandlers, handler)
}

func (n *Node) DutyCycle() *DutyCycle {
	return n.dutyCycle
}

// Start brings the radio up, publishes the sensing service and configures the
// advertisement. Advertising itself begins on the first Tick.
func (n *Node) Start() error {
	n.radio.SetConnectHandler(n.enqueue)

	enable := func() error {
		err := n.radio.Enable()
		if err != nil {
			n.log.Warnf("enable radio: %v", err)
		}
		return err
	}
	retries := backoff.WithMaxRetries(backoff.NewConstantBackOff(n.conf.Radio.EnableInterval), n.conf.Radio.EnableRetries)
	if err := backoff.Retry(enable, retries); err != nil {
		return errors.Wrap(err, "enable radio")
	}

	var attributes []radio.AttributeConfig
	for _, tag := range entities.SensorTags() {
		attributes = append(attributes, radio.AttributeConfig{
			ID:          tag.AttributeID,
			Description: tag.Description,
			Value:       []byte{byte(n.read(tag))},
		})
	}
	if err := n.radio.AddService(n.tag.ServiceID, attributes); err != nil {
		return errors.Wrap(err, "add sensing service")
	}

	adv := advertisement.Encode(n.tag)
	adv.LocalName = n.conf.DeviceName
	if err := n.radio.Configure(adv); err != nil {
		return errors.Wrap(err, "configure advertisement")
	}
	n.log.Infof("%s advertising %q", n.conf.DeviceName, n.tag.ContentTag)
	return nil
}

// Tick dispatches pending connection events, then advances the duty cycle. While no
// central is connected the hosted values are rewritten first, so a central that
// connects between ticks reads a sample at most one tick old.
func (n *Node) Tick(ctx context.Context, now time.Time) error {
	for len(n.events) > 0 {
		n.dispatch(<-n.events)
	}
	if n.dutyCycle.State() != entities.DutyCycleConnected {
		n.refreshAttributes(now)
	}
	return n.dutyCycle.Tick(ctx, now)
}

func (n *Node) enqueue(connected bool) {
	select {
	case n.events <- Event{Connected: connected, At: n.now()}:
	default:
		n.log.Warnf("event queue full, dropping connected=%t", connected)
	}
}

func (n *Node) dispatch(event Event) {
	if event.Connected {
		n.log.Info("central connected")
		for _, handler := range n.connectHandlers {
			handler.OnConnect(event.At)
		}
		return
	}
	n.log.Info("central disconnected")
	for _, handler := range n.disconnectHandlers {
		handler.OnDisconnect(event.At)
	}
}

func (n *Node) refreshAttributes(now time.Time) {
	for _, tag := range entities.SensorTags() {
		value := n.read(tag)
		if err := n.radio.WriteAttribute(tag.AttributeID, []byte{byte(value)}); err != nil {
			n.log.Errorf("write %s: %v", tag.Name, err)
			continue
		}
		n.log.Debugf("%s: %d%s", tag.Name, value, tag.Unit)
	}
}

func (n *Node) read(tag entities.SensorTag) int8 {
	value, err := n.source.OnAttributeRead(tag)
	if err != nil {
		n.log.Errorf("read %s: %v", tag.Name, err)
		return 0
	}
	return value
}
