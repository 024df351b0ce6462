// Package amqp exports gateway readings to a RabbitMQ exchange.
package amqp

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const exchangeTypeTopic = "topic"

// MessageOptions represents the message publishing options
type MessageOptions struct {
	CorrelationID string
	Expiration    string
}

type Messaging interface {
	Start() error
	Stop() error
	PublishPersistentMessage(exchange, exchangeType, key string, data interface{}, options *MessageOptions) error
}

// AMQPHandler publishes over one connection and reconnects in the background when the
// broker closes it.
type AMQPHandler struct {
	connection        connection
	log               *logrus.Entry
	mutex             sync.Mutex
	declaredExchanges map[string]struct{}
	startBackOff      func() backoff.BackOff
	reconnectBackOff  func() backoff.BackOff
}

func NewAMQPHandler(conn connection, log *logrus.Entry) *AMQPHandler {
	return &AMQPHandler{
		connection:        conn,
		log:               log,
		declaredExchanges: make(map[string]struct{}),
		startBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		reconnectBackOff: newReconnectionBackOff,
	}
}

func (a *AMQPHandler) Start() error {
	err := backoff.Retry(a.connect, a.startBackOff())
	if err != nil {
		return errors.Wrap(err, "connect to broker")
	}
	go a.notifyWhenClosed()
	return nil
}

func (a *AMQPHandler) Stop() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if a.connection.isClosed() {
		return nil
	}
	if err := a.connection.closeChannel(); err != nil {
		a.log.Debugf("close channel: %v", err)
	}
	return a.connection.close()
}

func (a *AMQPHandler) PublishPersistentMessage(exchange, exchangeType, key string, data interface{}, options *MessageOptions) error {
	body, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "encode JSON message")
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	//Reduces communication with the AMQP server by avoiding redeclaring an exchange of the same type.
	if _, ok := a.declaredExchanges[exchange]; !ok {
		if err := a.connection.exchangeDeclare(exchange, exchangeType); err != nil {
			return errors.Wrap(err, "declare exchange")
		}
		a.declaredExchanges[exchange] = struct{}{}
	}

	if err := a.connection.publish(exchange, key, body, options); err != nil {
		return errors.Wrap(err, "publish message in channel")
	}
	return nil
}

func (a *AMQPHandler) connect() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if err := a.connection.connect(); err != nil {
		a.log.Warnf("dial broker: %v", err)
		return err
	}
	if err := a.connection.createChannel(); err != nil {
		a.log.Warnf("open channel: %v", err)
		if closeErr := a.connection.close(); closeErr != nil {
			a.log.Debugf("close broker connection: %v", closeErr)
		}
		return err
	}
	a.declaredExchanges = make(map[string]struct{})
	return nil
}

func (a *AMQPHandler) notifyWhenClosed() {
	a.mutex.Lock()
	closed := a.connection.notifyClose(make(chan *amqp.Error, 1))
	a.mutex.Unlock()

	errReason := <-closed
	if errReason == nil {
		a.log.Info("broker connection closed")
		return
	}

	a.log.Warnf("broker connection lost: %v", errReason)
	if err := backoff.Retry(a.connect, a.reconnectBackOff()); err != nil {
		a.log.Errorf("reconnect to broker: %v", err)
		return
	}
	a.log.Info("reconnection to broker was successful")
	go a.notifyWhenClosed()
}

//randomized interval = RetryInterval * (random value in range [1 - RandomizationFactor, 1 + RandomizationFactor])
func newReconnectionBackOff() backoff.BackOff {
	reconnectionBackOff := backoff.NewExponentialBackOff()
	reconnectionBackOff.InitialInterval = 30 * time.Second
	reconnectionBackOff.MaxInterval = 5 * time.Minute
	reconnectionBackOff.Multiplier = 1.7
	reconnectionBackOff.MaxElapsedTime = 0
	return reconnectionBackOff
}
