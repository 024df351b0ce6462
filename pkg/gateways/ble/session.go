package ble

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/radio"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	outcomeOK               = "ok"
	outcomeNoPeripheral     = "no_peripheral"
	outcomeConnectFailed    = "connect_failed"
	outcomeAttributeMissing = "attribute_missing"
	outcomeReadFailed       = "read_failed"
)

type SessionObserver interface {
	ObserveSession(outcome string)
}

// SessionController owns the current session. Each ReadValue call is one
// connect/read/disconnect cycle with no retries.
type SessionController struct {
	central  radio.Central
	log      *logrus.Entry
	observer SessionObserver
	now      func() time.Time
	current  *entities.Session
}

func NewSessionController(central radio.Central, log *logrus.Entry, observer SessionObserver) *SessionController {
	return &SessionController{
		central:  central,
		log:      log,
		observer: observer,
		now:      time.Now,
	}
}

// Session returns the last session started, if any.
func (s *SessionController) Session() (entities.Session, bool) {
	if s.current == nil {
		return entities.Session{}, false
	}
	return *s.current, true
}

// ReadValue connects to peripheral, reads tag's attribute and disconnects. Failures are
// *SessionError values wrapping ErrNoPeripheral, ErrConnectFailed, ErrAttributeMissing
// or ErrReadFailed.
func (s *SessionController) ReadValue(ctx context.Context, peripheral *entities.DiscoveredPeripheral, tag entities.SensorTag) (entities.Reading, error) {
	session := &entities.Session{ID: uuid.NewString(), State: entities.SessionIdle}
	s.current = session
	if peripheral == nil {
		session.State = entities.SessionClosed
		return entities.Reading{}, s.fail(session, entities.SessionIdle, ErrNoPeripheral, nil)
	}
	session.Peripheral = *peripheral
	log := s.log.WithField("session", session.ID)

	s.transition(log, session, entities.SessionConnecting)
	if err := ctx.Err(); err != nil {
		session.State = entities.SessionClosed
		return entities.Reading{}, s.fail(session, entities.SessionConnecting, ErrConnectFailed, err)
	}
	connection, err := s.central.Connect(peripheral.Address)
	if err != nil {
		session.State = entities.SessionClosed
		return entities.Reading{}, s.fail(session, entities.SessionConnecting, ErrConnectFailed, err)
	}
	s.transition(log, session, entities.SessionConnected)
	defer s.disconnect(log, session, connection)

	service, err := connection.DiscoverService(tag.ServiceID)
	if err != nil {
		return entities.Reading{}, s.fail(session, session.State, ErrAttributeMissing, err)
	}
	attribute, err := service.DiscoverAttribute(tag.AttributeID)
	if err != nil {
		return entities.Reading{}, s.fail(session, session.State, ErrAttributeMissing, err)
	}

	s.transition(log, session, entities.SessionReading)
	raw, err := attribute.Read()
	if err != nil {
		return entities.Reading{}, s.fail(session, session.State, ErrReadFailed, err)
	}
	if len(raw) == 0 {
		return entities.Reading{}, s.fail(session, session.State, ErrReadFailed, errors.New("empty value"))
	}

	s.observer.ObserveSession(outcomeOK)
	reading := entities.Reading{
		Tag:     tag,
		Value:   int8(raw[0]),
		Address: peripheral.Address,
		At:      s.now(),
	}
	log.Infof("%s read from %s: %d%s", tag.Name, peripheral.Address, reading.Value, tag.Unit)
	return reading, nil
}

func (s *SessionController) transition(log *logrus.Entry, session *entities.Session, state string) {
	log.Debugf("session %s -> %s", session.State, state)
	session.State = state
}

func (s *SessionController) disconnect(log *logrus.Entry, session *entities.Session, connection radio.Connection) {
	s.transition(log, session, entities.SessionDisconnecting)
	if err := connection.Disconnect(); err != nil {
		log.Warnf("disconnect from %s: %v", session.Peripheral.Address, err)
	}
	s.transition(log, session, entities.SessionClosed)
}

func (s *SessionController) fail(session *entities.Session, state string, sentinel, cause error) error {
	s.observer.ObserveSession(outcome(sentinel))
	err := &SessionError{SessionID: session.ID, State: state, Err: sentinel, Cause: cause}
	s.log.Warn(err)
	return err
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrNoPeripheral):
		return outcomeNoPeripheral
	case errors.Is(err, ErrConnectFailed):
		return outcomeConnectFailed
	case errors.Is(err, ErrAttributeMissing):
		return outcomeAttributeMissing
	case errors.Is(err, ErrReadFailed):
		return outcomeReadFailed
	}
	return outcomeOK
}
