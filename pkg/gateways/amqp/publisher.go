package amqp

import (
	"strings"

	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/pkg/errors"
)

const (
	routingKeyPrefix      = "reading."
	defaultExpirationTime = "60000"
)

type Publisher interface {
	PublishReading(reading entities.Reading) error
}

type msgPublisher struct {
	amqp     Messaging
	exchange string
}

func NewMsgPublisher(amqp Messaging, exchange string) Publisher {
	return &msgPublisher{amqp: amqp, exchange: exchange}
}

// PublishReading sends reading to the topic exchange under reading.<sensor name>.
func (mp *msgPublisher) PublishReading(reading entities.Reading) error {
	options := MessageOptions{
		Expiration: defaultExpirationTime,
	}

	message := ReadingMessage{
		Sensor:     reading.Tag.Name,
		ContentTag: reading.Tag.ContentTag,
		Value:      reading.Value,
		Unit:       reading.Tag.Unit,
		Address:    reading.Address,
		Timestamp:  reading.At,
	}

	err := mp.amqp.PublishPersistentMessage(mp.exchange, exchangeTypeTopic, routingKey(reading.Tag), message, &options)
	if err != nil {
		return errors.Wrap(err, "publish reading")
	}
	return nil
}

func routingKey(tag entities.SensorTag) string {
	return routingKeyPrefix + strings.ToLower(tag.Name)
}
