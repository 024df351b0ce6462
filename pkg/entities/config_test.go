package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultGatewayConfig(t *testing.T) {
	conf := DefaultGatewayConfig()

	assert.Equal(t, 5*time.Second, conf.ScanTimeout)
	assert.Equal(t, 8, conf.QueueSize)
	assert.Equal(t, ":5683", conf.CoAP.Address)
	assert.Equal(t, "sensor.readings", conf.AMQP.Exchange)
	assert.Empty(t, conf.AMQP.URL)
	assert.Equal(t, "info", conf.Log.Level)
	assert.NoError(t, conf.Validate())
}

func TestGatewayConfigValidate(t *testing.T) {
	conf := DefaultGatewayConfig()
	conf.QueueSize = -1
	assert.Error(t, conf.Validate())

	conf = DefaultGatewayConfig()
	conf.Bloom.FalsePositive = 1.5
	assert.Error(t, conf.Validate())

	conf = DefaultGatewayConfig()
	conf.ScanTimeout = -time.Second
	assert.Error(t, conf.Validate())
}

func TestDefaultSensorConfig(t *testing.T) {
	conf := DefaultSensorConfig()

	assert.Equal(t, TemperatureContentTag, conf.ContentTag)
	assert.Equal(t, "M5-Sensor", conf.DeviceName)
	assert.True(t, conf.DutyCycle.Enabled)
	assert.Equal(t, 5*time.Second, conf.DutyCycle.AdvertiseWindow)
	assert.Equal(t, 10*time.Second, conf.DutyCycle.SleepWindow)
	assert.NoError(t, conf.Validate())
}

func TestSensorConfigRejectsUnknownContentTag(t *testing.T) {
	conf := DefaultSensorConfig()
	conf.ContentTag = "temp data"

	assert.Error(t, conf.Validate())
}

func TestTagByContent(t *testing.T) {
	tag, ok := TagByContent("HUMID DATA")
	assert.True(t, ok)
	assert.Equal(t, HumidityAttribute, tag.AttributeID)

	_, ok = TagByContent("TEMP DATAX")
	assert.False(t, ok)
}

func TestQueryKindTag(t *testing.T) {
	tag, ok := QueryTemperature.Tag()
	assert.True(t, ok)
	assert.Equal(t, TemperatureTag, tag)

	tag, ok = QueryHumidity.Tag()
	assert.True(t, ok)
	assert.Equal(t, HumidityTag, tag)

	_, ok = QueryKind("pressure").Tag()
	assert.False(t, ok)
	_, ok = QueryUnknown.Tag()
	assert.False(t, ok)
}
