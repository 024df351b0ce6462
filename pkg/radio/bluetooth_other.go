//go:build !linux

package radio

import (
	"time"

	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
)

var (
	_ Central    = (*BluetoothCentral)(nil)
	_ Peripheral = (*BluetoothPeripheral)(nil)
)

// BluetoothCentral is only backed by a real adapter on linux (BlueZ).
type BluetoothCentral struct{}

func NewBluetoothCentral(serviceID uint16) *BluetoothCentral {
	return &BluetoothCentral{}
}

func (c *BluetoothCentral) Enable() error { return ErrUnsupported }

func (c *BluetoothCentral) Scan(onResult func(entities.Advertisement)) error { return ErrUnsupported }

func (c *BluetoothCentral) StopScan() error { return ErrUnsupported }

func (c *BluetoothCentral) Connect(address string) (Connection, error) { return nil, ErrUnsupported }

type BluetoothPeripheral struct{}

func NewBluetoothPeripheral(interval time.Duration) *BluetoothPeripheral {
	return &BluetoothPeripheral{}
}

func (p *BluetoothPeripheral) Enable() error { return ErrUnsupported }

func (p *BluetoothPeripheral) SetConnectHandler(handler func(connected bool)) {}

func (p *BluetoothPeripheral) AddService(serviceID uint16, attributes []AttributeConfig) error {
	return ErrUnsupported
}

func (p *BluetoothPeripheral) WriteAttribute(attributeID uint16, value []byte) error {
	return ErrUnsupported
}

func (p *BluetoothPeripheral) Configure(adv entities.Advertisement) error { return ErrUnsupported }

func (p *BluetoothPeripheral) StartAdvertising() error { return ErrUnsupported }

func (p *BluetoothPeripheral) StopAdvertising() error { return ErrUnsupported }
