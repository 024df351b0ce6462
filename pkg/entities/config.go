package entities

import (
	"fmt"
	"time"
)

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RadioConfig struct {
	EnableRetries  uint64        `yaml:"enableRetries"`
	EnableInterval time.Duration `yaml:"enableInterval"`
}

type CoAPConfig struct {
	Address string `yaml:"address"`
}

type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type MetricsConfig struct {
	Address string `yaml:"address"`
}

type BloomConfig struct {
	Capacity      uint    `yaml:"capacity"`
	FalsePositive float64 `yaml:"falsePositive"`
}

// GatewayConfig is read once at startup and never mutated afterwards.
type GatewayConfig struct {
	ScanTimeout  time.Duration `yaml:"scanTimeout"`
	TickInterval time.Duration `yaml:"tickInterval"`
	QueueSize    int           `yaml:"queueSize"`
	Radio        RadioConfig   `yaml:"radio"`
	CoAP         CoAPConfig    `yaml:"coap"`
	AMQP         AMQPConfig    `yaml:"amqp"`
	Metrics      MetricsConfig `yaml:"metrics"`
	Bloom        BloomConfig   `yaml:"bloom"`
	Log          LogConfig     `yaml:"log"`
}

func (c *GatewayConfig) ApplyDefaults() {
	if c.ScanTimeout == 0 {
		c.ScanTimeout = 5 * time.Second
	}
	if c.TickInterval == 0 {
		c.TickInterval = 100 * time.Millisecond
	}
	if c.QueueSize == 0 {
		c.QueueSize = 8
	}
	if c.Radio.EnableRetries == 0 {
		c.Radio.EnableRetries = 3
	}
	if c.Radio.EnableInterval == 0 {
		c.Radio.EnableInterval = time.Second
	}
	if c.CoAP.Address == "" {
		c.CoAP.Address = ":5683"
	}
	if c.AMQP.Exchange == "" {
		c.AMQP.Exchange = "sensor.readings"
	}
	if c.Bloom.Capacity == 0 {
		c.Bloom.Capacity = 1000
	}
	if c.Bloom.FalsePositive == 0 {
		c.Bloom.FalsePositive = 0.01
	}
	c.Log.applyDefaults()
}

func (c *GatewayConfig) Validate() error {
	if c.ScanTimeout < 0 {
		return fmt.Errorf("scanTimeout must not be negative")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tickInterval must be positive")
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("queueSize must be at least 1")
	}
	if c.Bloom.FalsePositive <= 0 || c.Bloom.FalsePositive >= 1 {
		return fmt.Errorf("bloom.falsePositive must be within (0, 1)")
	}
	return nil
}

type DutyCycleConfig struct {
	Enabled         bool          `yaml:"enabled"`
	AdvertiseWindow time.Duration `yaml:"advertiseWindow"`
	SleepWindow     time.Duration `yaml:"sleepWindow"`
}

// SensorConfig configures one peripheral node advertising a single content tag.
type SensorConfig struct {
	ContentTag          string          `yaml:"contentTag"`
	DeviceName          string          `yaml:"deviceName"`
	TickInterval        time.Duration   `yaml:"tickInterval"`
	AdvertisingInterval time.Duration   `yaml:"advertisingInterval"`
	DutyCycle           DutyCycleConfig `yaml:"dutyCycle"`
	Radio               RadioConfig     `yaml:"radio"`
	Metrics             MetricsConfig   `yaml:"metrics"`
	Log                 LogConfig       `yaml:"log"`
}

func (c *SensorConfig) ApplyDefaults() {
	if c.ContentTag == "" {
		c.ContentTag = TemperatureContentTag
	}
	if c.DeviceName == "" {
		c.DeviceName = "M5-Sensor"
	}
	if c.TickInterval == 0 {
		c.TickInterval = time.Second
	}
	if c.AdvertisingInterval == 0 {
		c.AdvertisingInterval = 100 * time.Millisecond
	}
	if c.DutyCycle.AdvertiseWindow == 0 {
		c.DutyCycle.AdvertiseWindow = 5 * time.Second
	}
	if c.DutyCycle.SleepWindow == 0 {
		c.DutyCycle.SleepWindow = 10 * time.Second
	}
	if c.Radio.EnableRetries == 0 {
		c.Radio.EnableRetries = 3
	}
	if c.Radio.EnableInterval == 0 {
		c.Radio.EnableInterval = time.Second
	}
	c.Log.applyDefaults()
}

func (c *SensorConfig) Validate() error {
	if _, ok := TagByContent(c.ContentTag); !ok {
		return fmt.Errorf("unknown contentTag %q", c.ContentTag)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tickInterval must be positive")
	}
	if c.DutyCycle.AdvertiseWindow < 0 || c.DutyCycle.SleepWindow < 0 {
		return fmt.Errorf("duty cycle windows must not be negative")
	}
	return nil
}

func (c *LogConfig) applyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
}

// DefaultSensorConfig is the starting point the YAML file is decoded over, so keys
// absent from the file keep these values.
func DefaultSensorConfig() SensorConfig {
	c := SensorConfig{DutyCycle: DutyCycleConfig{Enabled: true}}
	c.ApplyDefaults()
	return c
}

func DefaultGatewayConfig() GatewayConfig {
	c := GatewayConfig{}
	c.ApplyDefaults()
	return c
}
