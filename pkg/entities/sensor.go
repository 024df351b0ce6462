package entities

// Well-known identifiers shared by gateways and peripherals.
const (
	EnvironmentalSensingService uint16 = 0x181A
	TemperatureAttribute        uint16 = 0x2A6E
	HumidityAttribute           uint16 = 0x2A6F
	UserDescriptionAttribute    uint16 = 0x2901
)

const (
	TemperatureContentTag string = "TEMP DATA"
	HumidityContentTag    string = "HUMID DATA"
)

// SensorTag identifies a measurable quantity. ContentTag values are unique across tags.
type SensorTag struct {
	ServiceID   uint16
	AttributeID uint16
	ContentTag  string
	Name        string
	Description string
	Unit        string
}

var (
	TemperatureTag = SensorTag{
		ServiceID:   EnvironmentalSensingService,
		AttributeID: TemperatureAttribute,
		ContentTag:  TemperatureContentTag,
		Name:        "Temperature",
		Description: "Temperature -40 to 60°C",
		Unit:        "°C",
	}
	HumidityTag = SensorTag{
		ServiceID:   EnvironmentalSensingService,
		AttributeID: HumidityAttribute,
		ContentTag:  HumidityContentTag,
		Name:        "Humidity",
		Description: "Humidity 0 to 100%",
		Unit:        "%",
	}
)

// SensorTags lists the built-in tags in attribute order.
func SensorTags() []SensorTag {
	return []SensorTag{TemperatureTag, HumidityTag}
}

// TagByContent returns the built-in tag advertising contentTag.
func TagByContent(contentTag string) (SensorTag, bool) {
	for _, tag := range SensorTags() {
		if tag.ContentTag == contentTag {
			return tag, true
		}
	}
	return SensorTag{}, false
}

// QueryKind is the quantity an inbound query asks for.
type QueryKind string

const (
	QueryTemperature QueryKind = "temperature"
	QueryHumidity    QueryKind = "humidity"
	QueryUnknown     QueryKind = ""
)

// Tag maps a query kind to its sensor tag.
func (k QueryKind) Tag() (SensorTag, bool) {
	switch k {
	case QueryTemperature:
		return TemperatureTag, true
	case QueryHumidity:
		return HumidityTag, true
	}
	return SensorTag{}, false
}
