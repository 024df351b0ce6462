package peripheral

import (
	"math/rand"

	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/pkg/errors"
)

// RandomSource simulates the sensor hardware.
type RandomSource struct {
	rand *rand.Rand
}

func NewRandomSource(seed int64) *RandomSource {
	return &RandomSource{rand: rand.New(rand.NewSource(seed))}
}

// OnAttributeRead returns temperatures in (-40, 60) and humidities in [0, 100).
func (s *RandomSource) OnAttributeRead(tag entities.SensorTag) (int8, error) {
	switch tag.AttributeID {
	case entities.TemperatureAttribute:
		return int8(s.rand.Intn(60) - s.rand.Intn(40)), nil
	case entities.HumidityAttribute:
		return int8(s.rand.Intn(100)), nil
	}
	return 0, errors.Errorf("no source for attribute 0x%04X", tag.AttributeID)
}
