// Package advertisement converts sensor tags to and from the advertisement payload
// peripherals broadcast. The content tag travels verbatim as service data.
package advertisement

import (
	"bytes"

	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
)

// Filter decides whether an observed advertisement is the one being looked for.
type Filter func(adv entities.Advertisement) bool

// Encode builds the advertisement a peripheral broadcasts for tag.
func Encode(tag entities.SensorTag) entities.Advertisement {
	return entities.Advertisement{
		LocalName:    tag.Name,
		ServiceID:    tag.ServiceID,
		HasServiceID: true,
		ContentTag:   []byte(tag.ContentTag),
	}
}

// Match reports whether adv declares wanted's service and carries exactly its content tag.
func Match(adv entities.Advertisement, wanted entities.SensorTag) bool {
	if !adv.HasServiceID || adv.ServiceID != wanted.ServiceID {
		return false
	}
	if adv.ContentTag == nil {
		return false
	}
	return bytes.Equal(adv.ContentTag, []byte(wanted.ContentTag))
}

func MatchFilter(wanted entities.SensorTag) Filter {
	return func(adv entities.Advertisement) bool {
		return Match(adv, wanted)
	}
}

// Decode resolves the built-in tag an advertisement carries.
func Decode(adv entities.Advertisement) (entities.SensorTag, bool) {
	for _, tag := range entities.SensorTags() {
		if Match(adv, tag) {
			return tag, true
		}
	}
	return entities.SensorTag{}, false
}
