package amqp

import (
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

var errNotConnected = errors.New("broker channel not open")

const (
	durable          = true
	deleteWhenUnused = false
	internal         = false
	noWait           = false
	mandatory        = false
	immediate        = false
)

type connection interface {
	connect() error
	createChannel() error
	exchangeDeclare(name, exchangeType string) error
	publish(exchange, key string, body []byte, options *MessageOptions) error
	isClosed() bool
	close() error
	closeChannel() error
	notifyClose(channel chan *amqp.Error) chan *amqp.Error
}

type AmqpConnection struct {
	url     string
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewAmqpConnection(url string) *AmqpConnection {
	return &AmqpConnection{url: url}
}

func (a *AmqpConnection) connect() error {
	conn, err := amqp.Dial(a.url)
	if err == nil {
		a.conn = conn
	}
	return err
}

func (a *AmqpConnection) createChannel() error {
	if a.conn == nil {
		return errNotConnected
	}
	channel, err := a.conn.Channel()
	if err == nil {
		a.channel = channel
	}
	return err
}

func (a *AmqpConnection) exchangeDeclare(name, exchangeType string) error {
	if a.channel == nil {
		return errNotConnected
	}
	return a.channel.ExchangeDeclare(
		name,
		exchangeType,
		durable,
		deleteWhenUnused,
		internal,
		noWait,
		nil, // arguments
	)
}

func (a *AmqpConnection) publish(exchange, key string, body []byte, options *MessageOptions) error {
	if a.channel == nil {
		return errNotConnected
	}
	var corrID, expTime string
	if options != nil {
		corrID = options.CorrelationID
		expTime = options.Expiration
	}

	return a.channel.Publish(
		exchange,
		key,
		mandatory,
		immediate,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			CorrelationId: corrID,
			Body:          body,
			Expiration:    expTime,
		},
	)
}

func (a *AmqpConnection) isClosed() bool {
	return a.conn == nil || a.conn.IsClosed()
}

func (a *AmqpConnection) close() error {
	if a.conn == nil {
		return nil
	}
	err := a.conn.Close()
	a.conn = nil
	a.channel = nil
	return err
}

func (a *AmqpConnection) closeChannel() error {
	if a.channel == nil {
		return nil
	}
	err := a.channel.Close()
	a.channel = nil
	return err
}

func (a *AmqpConnection) notifyClose(channel chan *amqp.Error) chan *amqp.Error {
	return a.conn.NotifyClose(channel)
}
