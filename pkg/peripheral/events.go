package peripheral

import (
	"time"

	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
)

type ConnectHandler interface {
	OnConnect(now time.Time)
}

type DisconnectHandler interface {
	OnDisconnect(now time.Time)
}

// AttributeReadHandler supplies the current value of an attribute the node hosts.
type AttributeReadHandler interface {
	OnAttributeRead(tag entities.SensorTag) (int8, error)
}

// Event is a radio connection change waiting for the control loop.
type Event struct {
	Connected bool
	At        time.Time
}
