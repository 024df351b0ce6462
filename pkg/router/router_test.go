package router

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/advertisement"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/gateways/ble"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/logging"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/metrics"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/radio"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/radio/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const sensorAddress = "C4:DE:E2:00:11:22"

type sinkMock struct {
	mock.Mock
}

func (m *sinkMock) PublishReading(reading entities.Reading) error {
	args := m.Called(reading)
	return args.Error(0)
}

type routerSuite struct {
	suite.Suite
	central    *mocks.CentralMock
	connection *mocks.ConnectionMock
	service    *mocks.ServiceMock
	attribute  *mocks.AttributeMock
	router     *Router
	conf       entities.GatewayConfig
}

func (r *routerSuite) SetupTest() {
	r.central = new(mocks.CentralMock)
	r.connection = new(mocks.ConnectionMock)
	r.service = new(mocks.ServiceMock)
	r.attribute = new(mocks.AttributeMock)
	r.conf = entities.DefaultGatewayConfig()
	r.conf.ScanTimeout = 50 * time.Millisecond
	r.conf.QueueSize = 1

	log := logging.NewLogrus("error", io.Discard)
	r.central.On("Enable").Return(nil).Once()
	r.central.On("StopScan").Return(nil).Maybe()
	engine, err := ble.NewEngine(r.central, r.conf, log.Get("discovery"), metrics.Nop{})
	r.Require().NoError(err)
	session := ble.NewSessionController(r.central, log.Get("session"), metrics.Nop{})
	r.router = NewRouter(engine, session, r.conf, log.Get("router"), metrics.Nop{})
}

func (r *routerSuite) advertise(tag entities.SensorTag) {
	adv := advertisement.Encode(tag)
	adv.Address = sensorAddress
	r.central.On("Scan", mock.Anything).Run(mocks.PlayAdvertisements(adv)).Return(nil)
}

func (r *routerSuite) readable(attributeID uint16, value []byte) {
	r.central.On("Connect", sensorAddress).Return(r.connection, nil)
	r.connection.On("Disconnect").Return(nil)
	r.connection.On("DiscoverService", entities.EnvironmentalSensingService).Return(r.service, nil)
	r.service.On("DiscoverAttribute", attributeID).Return(r.attribute, nil)
	r.attribute.On("Read").Return(value, nil)
}

func (r *routerSuite) TestTemperatureQueryReturnsReading() {
	r.advertise(entities.TemperatureTag)
	r.readable(entities.TemperatureAttribute, []byte{23})

	response := r.router.Handle(context.Background(), entities.QueryTemperature)

	assert.Equal(r.T(), "23", response)
	r.connection.AssertCalled(r.T(), "Disconnect")
}

func (r *routerSuite) TestNegativeReadingHasNoUnit() {
	r.advertise(entities.TemperatureTag)
	r.readable(entities.TemperatureAttribute, []byte{0xFB})

	assert.Equal(r.T(), "-5", r.router.Handle(context.Background(), entities.QueryTemperature))
}

func (r *routerSuite) TestHumidityQueryWithoutAdvertiserReturnsNoDevicesFound() {
	r.advertise(entities.TemperatureTag)

	response := r.router.Handle(context.Background(), entities.QueryHumidity)

	assert.Equal(r.T(), "No Devices Found", response)
	r.central.AssertNotCalled(r.T(), "Connect", sensorAddress)
}

func (r *routerSuite) TestConnectFailureReturnsUnableToConnect() {
	r.advertise(entities.TemperatureTag)
	r.central.On("Connect", sensorAddress).Return(nil, errors.New("connection refused"))

	response := r.router.Handle(context.Background(), entities.QueryTemperature)

	assert.Equal(r.T(), "Unable to connect to device", response)
}

func (r *routerSuite) TestUnknownQueryReturnsUnknownCommand() {
	response := r.router.Handle(context.Background(), entities.QueryKind("pressure"))

	assert.Equal(r.T(), "Unknown Command", response)
	r.central.AssertNotCalled(r.T(), "Scan", mock.Anything)
}

func (r *routerSuite) TestMissingAttributeReturnsNoReading() {
	r.advertise(entities.HumidityTag)
	r.central.On("Connect", sensorAddress).Return(r.connection, nil)
	r.connection.On("Disconnect").Return(nil)
	r.connection.On("DiscoverService", entities.EnvironmentalSensingService).Return(r.service, nil)
	r.service.On("DiscoverAttribute", entities.HumidityAttribute).Return(nil, radio.ErrAttributeNotFound)

	response := r.router.Handle(context.Background(), entities.QueryHumidity)

	assert.Equal(r.T(), "No Humidity Reading", response)
	r.connection.AssertCalled(r.T(), "Disconnect")
}

func (r *routerSuite) TestScanFailureReturnsNoDevicesFound() {
	r.central.On("Scan", mock.Anything).Return(errors.New("adapter busy"))

	assert.Equal(r.T(), "No Devices Found", r.router.Handle(context.Background(), entities.QueryTemperature))
}

func (r *routerSuite) TestReadingIsPublishedToSinks() {
	r.advertise(entities.TemperatureTag)
	r.readable(entities.TemperatureAttribute, []byte{23})
	sink := new(sinkMock)
	sink.On("PublishReading", mock.MatchedBy(func(reading entities.Reading) bool {
		return reading.Value == 23 && reading.Address == sensorAddress
	})).Return(errors.New("broker down"))
	r.router.AddSink(sink)

	response := r.router.Handle(context.Background(), entities.QueryTemperature)

	assert.Equal(r.T(), "23", response)
	sink.AssertExpectations(r.T())
}

func (r *routerSuite) TestSubmitIsAnsweredByTick() {
	r.advertise(entities.TemperatureTag)
	r.readable(entities.TemperatureAttribute, []byte{21})

	responses := make(chan string, 1)
	go func() {
		response, err := r.router.Submit(context.Background(), entities.QueryTemperature)
		assert.NoError(r.T(), err)
		responses <- response
	}()

	assert.Eventually(r.T(), func() bool {
		return len(r.router.queue) == 1
	}, time.Second, time.Millisecond)
	assert.NoError(r.T(), r.router.Tick(context.Background(), time.Now()))
	assert.Equal(r.T(), "21", <-responses)
}

func (r *routerSuite) TestSubmitWhenQueueFullReturnBusy() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.router.Submit(ctx, entities.QueryHumidity)
	assert.Eventually(r.T(), func() bool {
		return len(r.router.queue) == 1
	}, time.Second, time.Millisecond)

	response, err := r.router.Submit(context.Background(), entities.QueryTemperature)

	assert.Equal(r.T(), "Gateway Busy", response)
	assert.True(r.T(), errors.Is(err, ErrBusy))
}

func (r *routerSuite) TestTickSkipsAbandonedQuery() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := r.router.Submit(ctx, entities.QueryTemperature)
		done <- err
	}()
	assert.Eventually(r.T(), func() bool {
		return len(r.router.queue) == 1
	}, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(r.T(), <-done, context.Canceled)

	assert.NoError(r.T(), r.router.Tick(context.Background(), time.Now()))
	r.central.AssertNotCalled(r.T(), "Scan", mock.Anything)
}

func (r *routerSuite) TestTickWithEmptyQueue() {
	assert.NoError(r.T(), r.router.Tick(context.Background(), time.Now()))
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(routerSuite))
}

func TestNoReading(t *testing.T) {
	assert.Equal(t, "No Temperature Reading", NoReading(entities.TemperatureTag))
	assert.Equal(t, "No Humidity Reading", NoReading(entities.HumidityTag))
}
