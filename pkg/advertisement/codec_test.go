package advertisement

import (
	"testing"

	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/stretchr/testify/assert"
)

func createAdvertisement(serviceID uint16, contentTag []byte) entities.Advertisement {
	return entities.Advertisement{
		Address:      "AA:BB:CC:DD:EE:FF",
		LocalName:    "M5-Sensor",
		ServiceID:    serviceID,
		HasServiceID: true,
		ContentTag:   contentTag,
	}
}

func TestEncodeCarriesServiceAndContentTagVerbatim(t *testing.T) {
	adv := Encode(entities.TemperatureTag)

	assert.True(t, adv.HasServiceID)
	assert.Equal(t, entities.EnvironmentalSensingService, adv.ServiceID)
	assert.Equal(t, []byte("TEMP DATA"), adv.ContentTag)
	assert.Equal(t, entities.TemperatureTag.Name, adv.LocalName)
}

func TestEncodedAdvertisementMatchesItsOwnTagOnly(t *testing.T) {
	for _, tag := range entities.SensorTags() {
		adv := Encode(tag)
		for _, other := range entities.SensorTags() {
			assert.Equal(t, tag == other, Match(adv, other), "%s against %s", tag.ContentTag, other.ContentTag)
		}
	}
}

func TestMatch(t *testing.T) {
	cases := []struct {
		name string
		adv  entities.Advertisement
		want bool
	}{
		{"exact", createAdvertisement(entities.EnvironmentalSensingService, []byte("TEMP DATA")), true},
		{"trailing byte", createAdvertisement(entities.EnvironmentalSensingService, []byte("TEMP DATAX")), false},
		{"truncated", createAdvertisement(entities.EnvironmentalSensingService, []byte("TEMP DAT")), false},
		{"lower case", createAdvertisement(entities.EnvironmentalSensingService, []byte("temp data")), false},
		{"other tag", createAdvertisement(entities.EnvironmentalSensingService, []byte("HUMID DATA")), false},
		{"nil service data", createAdvertisement(entities.EnvironmentalSensingService, nil), false},
		{"empty service data", createAdvertisement(entities.EnvironmentalSensingService, []byte{}), false},
		{"wrong service", createAdvertisement(0x180F, []byte("TEMP DATA")), false},
		{"service not declared", entities.Advertisement{ServiceID: entities.EnvironmentalSensingService, ContentTag: []byte("TEMP DATA")}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Match(c.adv, entities.TemperatureTag))
		})
	}
}

func TestMatchFilter(t *testing.T) {
	filter := MatchFilter(entities.HumidityTag)

	assert.True(t, filter(Encode(entities.HumidityTag)))
	assert.False(t, filter(Encode(entities.TemperatureTag)))
}

func TestDecode(t *testing.T) {
	tag, ok := Decode(createAdvertisement(entities.EnvironmentalSensingService, []byte("HUMID DATA")))
	assert.True(t, ok)
	assert.Equal(t, entities.HumidityTag, tag)

	_, ok = Decode(createAdvertisement(entities.EnvironmentalSensingService, []byte("PRESSURE DATA")))
	assert.False(t, ok)
}
