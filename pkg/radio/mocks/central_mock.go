package mocks

import (
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/radio"
	"github.com/stretchr/testify/mock"
)

type CentralMock struct {
	mock.Mock
}

func (m *CentralMock) Enable() error {
	args := m.Called()
	return args.Error(0)
}

// Scan hands onResult to the registered Run function, which plays the advertisements.
func (m *CentralMock) Scan(onResult func(entities.Advertisement)) error {
	args := m.Called(onResult)
	return args.Error(0)
}

func (m *CentralMock) StopScan() error {
	args := m.Called()
	return args.Error(0)
}

func (m *CentralMock) Connect(address string) (radio.Connection, error) {
	args := m.Called(address)
	connection, _ := args.Get(0).(radio.Connection)
	return connection, args.Error(1)
}

type ConnectionMock struct {
	mock.Mock
}

func (m *ConnectionMock) DiscoverService(serviceID uint16) (radio.Service, error) {
	args := m.Called(serviceID)
	service, _ := args.Get(0).(radio.Service)
	return service, args.Error(1)
}

func (m *ConnectionMock) Disconnect() error {
	args := m.Called()
	return args.Error(0)
}

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) DiscoverAttribute(attributeID uint16) (radio.Attribute, error) {
	args := m.Called(attributeID)
	attribute, _ := args.Get(0).(radio.Attribute)
	return attribute, args.Error(1)
}

type AttributeMock struct {
	mock.Mock
}

func (m *AttributeMock) Read() ([]byte, error) {
	args := m.Called()
	value, _ := args.Get(0).([]byte)
	return value, args.Error(1)
}

// PlayAdvertisements returns a Run function delivering advs to the scan callback in order.
func PlayAdvertisements(advs ...entities.Advertisement) func(mock.Arguments) {
	return func(args mock.Arguments) {
		onResult := args.Get(0).(func(entities.Advertisement))
		for _, adv := range advs {
			onResult(adv)
		}
	}
}
