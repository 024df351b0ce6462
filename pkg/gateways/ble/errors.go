package ble

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrDiscoveryUnavailable = errors.New("discovery unavailable: radio adapter could not be enabled")
	ErrNotFound             = errors.New("no matching peripheral found")
	ErrNoPeripheral         = errors.New("no peripheral to connect to")
	ErrConnectFailed        = errors.New("unable to connect to peripheral")
	ErrAttributeMissing     = errors.New("service or attribute missing on peripheral")
	ErrReadFailed           = errors.New("attribute read failed")
)

// SessionError reports the session and state a connect/read/disconnect cycle failed in.
type SessionError struct {
	SessionID string
	State     string
	Err       error
	// Cause is the radio error behind Err, nil when Err says it all.
	Cause error
}

func (e *SessionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("session %s failed while %s: %v: %v", e.SessionID, e.State, e.Err, e.Cause)
	}
	return fmt.Sprintf("session %s failed while %s: %v", e.SessionID, e.State, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
