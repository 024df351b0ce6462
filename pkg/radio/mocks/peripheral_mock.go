package mocks

import (
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/radio"
	"github.com/stretchr/testify/mock"
)

type PeripheralMock struct {
	mock.Mock
	connectHandler func(connected bool)
}

func (m *PeripheralMock) Enable() error {
	args := m.Called()
	return args.Error(0)
}

func (m *PeripheralMock) SetConnectHandler(handler func(connected bool)) {
	m.connectHandler = handler
}

// SimulateConnection invokes the registered connect handler like the radio stack would.
func (m *PeripheralMock) SimulateConnection(connected bool) {
	if m.connectHandler != nil {
		m.connectHandler(connected)
	}
}

func (m *PeripheralMock) AddService(serviceID uint16, attributes []radio.AttributeConfig) error {
	args := m.Called(serviceID, attributes)
	return args.Error(0)
}

func (m *PeripheralMock) WriteAttribute(attributeID uint16, value []byte) error {
	args := m.Called(attributeID, value)
	return args.Error(0)
}

func (m *PeripheralMock) Configure(adv entities.Advertisement) error {
	args := m.Called(adv)
	return args.Error(0)
}

func (m *PeripheralMock) StartAdvertising() error {
	args := m.Called()
	return args.Error(0)
}

func (m *PeripheralMock) StopAdvertising() error {
	args := m.Called()
	return args.Error(0)
}
