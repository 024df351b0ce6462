//go:build linux

package radio

import (
	"time"

	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/pkg/errors"
	"tinygo.org/x/bluetooth"
)

var (
	_ Central    = (*BluetoothCentral)(nil)
	_ Peripheral = (*BluetoothPeripheral)(nil)
)

const readBufferSize = 512

// BluetoothCentral scans and connects through the BlueZ backed default adapter.
type BluetoothCentral struct {
	adapter   *bluetooth.Adapter
	serviceID uint16
}

// NewBluetoothCentral reports the presence of serviceID and its service data in every
// scanned advertisement.
func NewBluetoothCentral(serviceID uint16) *BluetoothCentral {
	return &BluetoothCentral{adapter: bluetooth.DefaultAdapter, serviceID: serviceID}
}

func (c *BluetoothCentral) Enable() error {
	return c.adapter.Enable()
}

func (c *BluetoothCentral) Scan(onResult func(entities.Advertisement)) error {
	service := bluetooth.New16BitUUID(c.serviceID)
	return c.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		onResult(toAdvertisement(result, service, c.serviceID))
	})
}

func (c *BluetoothCentral) StopScan() error {
	return c.adapter.StopScan()
}

func (c *BluetoothCentral) Connect(address string) (Connection, error) {
	mac, err := bluetooth.ParseMAC(address)
	if err != nil {
		return nil, errors.Wrapf(err, "parse address %s", address)
	}
	device, err := c.adapter.Connect(bluetooth.Address{MACAddress: bluetooth.MACAddress{MAC: mac}}, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, err
	}
	return &bluetoothConnection{device: device}, nil
}

func toAdvertisement(result bluetooth.ScanResult, service bluetooth.UUID, serviceID uint16) entities.Advertisement {
	adv := entities.Advertisement{
		Address:   result.Address.String(),
		LocalName: result.LocalName(),
		RSSI:      result.RSSI,
	}
	if result.HasServiceUUID(service) {
		adv.ServiceID = serviceID
		adv.HasServiceID = true
	}
	for _, element := range result.ServiceData() {
		if element.UUID == service {
			adv.ContentTag = element.Data
			break
		}
	}
	return adv
}

type bluetoothConnection struct {
	device bluetooth.Device
}

func (c *bluetoothConnection) DiscoverService(serviceID uint16) (Service, error) {
	services, err := c.device.DiscoverServices([]bluetooth.UUID{bluetooth.New16BitUUID(serviceID)})
	if err != nil {
		return nil, errors.Wrap(ErrServiceNotFound, err.Error())
	}
	if len(services) == 0 {
		return nil, ErrServiceNotFound
	}
	return &bluetoothService{service: services[0]}, nil
}

func (c *bluetoothConnection) Disconnect() error {
	return c.device.Disconnect()
}

type bluetoothService struct {
	service bluetooth.DeviceService
}

func (s *bluetoothService) DiscoverAttribute(attributeID uint16) (Attribute, error) {
	characteristics, err := s.service.DiscoverCharacteristics([]bluetooth.UUID{bluetooth.New16BitUUID(attributeID)})
	if err != nil {
		return nil, errors.Wrap(ErrAttributeNotFound, err.Error())
	}
	if len(characteristics) == 0 {
		return nil, ErrAttributeNotFound
	}
	return &bluetoothAttribute{characteristic: characteristics[0]}, nil
}

type bluetoothAttribute struct {
	characteristic bluetooth.DeviceCharacteristic
}

func (a *bluetoothAttribute) Read() ([]byte, error) {
	buffer := make([]byte, readBufferSize)
	n, err := a.characteristic.Read(buffer)
	if err != nil {
		return nil, err
	}
	return buffer[:n], nil
}

// BluetoothPeripheral advertises and hosts attributes through the default adapter.
type BluetoothPeripheral struct {
	adapter       *bluetooth.Adapter
	advertisement *bluetooth.Advertisement
	interval      time.Duration
	handles       map[uint16]*bluetooth.Characteristic
}

func NewBluetoothPeripheral(interval time.Duration) *BluetoothPeripheral {
	return &BluetoothPeripheral{
		adapter:  bluetooth.DefaultAdapter,
		interval: interval,
		handles:  make(map[uint16]*bluetooth.Characteristic),
	}
}

func (p *BluetoothPeripheral) Enable() error {
	return p.adapter.Enable()
}

func (p *BluetoothPeripheral) SetConnectHandler(handler func(connected bool)) {
	p.adapter.SetConnectHandler(func(_ bluetooth.Device, connected bool) {
		handler(connected)
	})
}

func (p *BluetoothPeripheral) AddService(serviceID uint16, attributes []AttributeConfig) error {
	characteristics := make([]bluetooth.CharacteristicConfig, 0, len(attributes))
	for _, attribute := range attributes {
		handle := new(bluetooth.Characteristic)
		p.handles[attribute.ID] = handle
		characteristics = append(characteristics, bluetooth.CharacteristicConfig{
			Handle: handle,
			UUID:   bluetooth.New16BitUUID(attribute.ID),
			Value:  attribute.Value,
			Flags:  bluetooth.CharacteristicReadPermission | bluetooth.CharacteristicNotifyPermission,
		})
	}
	return p.adapter.AddService(&bluetooth.Service{
		UUID:            bluetooth.New16BitUUID(serviceID),
		Characteristics: characteristics,
	})
}

func (p *BluetoothPeripheral) WriteAttribute(attributeID uint16, value []byte) error {
	handle, ok := p.handles[attributeID]
	if !ok {
		return ErrAttributeNotFound
	}
	_, err := handle.Write(value)
	return err
}

func (p *BluetoothPeripheral) Configure(adv entities.Advertisement) error {
	service := bluetooth.New16BitUUID(adv.ServiceID)
	p.advertisement = p.adapter.DefaultAdvertisement()
	return p.advertisement.Configure(bluetooth.AdvertisementOptions{
		LocalName:    adv.LocalName,
		ServiceUUIDs: []bluetooth.UUID{service},
		Interval:     bluetooth.NewDuration(p.interval),
		ServiceData: []bluetooth.ServiceDataElement{
			{UUID: service, Data: adv.ContentTag},
		},
	})
}

func (p *BluetoothPeripheral) StartAdvertising() error {
	if p.advertisement == nil {
		return ErrNotConfigured
	}
	return p.advertisement.Start()
}

func (p *BluetoothPeripheral) StopAdvertising() error {
	if p.advertisement == nil {
		return ErrNotConfigured
	}
	return p.advertisement.Stop()
}
