// Package radio is the boundary between the sensor logic and the Bluetooth LE stack.
package radio

import (
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/pkg/errors"
)

var (
	ErrServiceNotFound   = errors.New("service not found")
	ErrAttributeNotFound = errors.New("attribute not found")
	ErrNotConfigured     = errors.New("advertisement not configured")
	ErrUnsupported       = errors.New("bluetooth radio is not supported on this platform")
)

// Central is the scanning and connecting side used by the gateway.
type Central interface {
	Enable() error
	// Scan blocks, calling onResult for every advertisement, until StopScan is called.
	Scan(onResult func(entities.Advertisement)) error
	StopScan() error
	Connect(address string) (Connection, error)
}

type Connection interface {
	DiscoverService(serviceID uint16) (Service, error)
	Disconnect() error
}

type Service interface {
	DiscoverAttribute(attributeID uint16) (Attribute, error)
}

type Attribute interface {
	Read() ([]byte, error)
}

// AttributeConfig declares one readable attribute hosted by a Peripheral.
type AttributeConfig struct {
	ID          uint16
	Description string
	Value       []byte
}

// Peripheral is the advertising and attribute-hosting side used by sensor nodes.
type Peripheral interface {
	Enable() error
	// SetConnectHandler must be called before Enable.
	SetConnectHandler(handler func(connected bool))
	AddService(serviceID uint16, attributes []AttributeConfig) error
	WriteAttribute(attributeID uint16, value []byte) error
	Configure(adv entities.Advertisement) error
	StartAdvertising() error
	StopAdvertising() error
}
