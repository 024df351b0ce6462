package entities

import "time"

const (
	SessionIdle          string = "idle"
	SessionConnecting    string = "connecting"
	SessionConnected     string = "connected"
	SessionReading       string = "reading"
	SessionDisconnecting string = "disconnecting"
	SessionClosed        string = "closed"
)

const (
	DutyCycleStandby     string = "standby"
	DutyCycleAdvertising string = "advertising"
	DutyCycleConnected   string = "connected"
)

// Advertisement is the payload observed for one advertiser at one instant.
// ContentTag is nil when the advertiser sent no service data.
type Advertisement struct {
	Address      string
	LocalName    string
	ServiceID    uint16
	HasServiceID bool
	ContentTag   []byte
	RSSI         int16
}

type DiscoveredPeripheral struct {
	Address string
	Name    string
	Tag     SensorTag
}

type Session struct {
	ID         string
	Peripheral DiscoveredPeripheral
	State      string
}

type Reading struct {
	Tag     SensorTag
	Value   int8
	Address string
	At      time.Time
}
