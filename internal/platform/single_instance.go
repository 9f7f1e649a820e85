// Package platform holds OS-facing helpers.
package platform

import (
	"errors"
	"fmt"
	"net"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

// InstanceGuard holds the single-instance lock. The lock is a bound TCP
// listener, which the caller serves the API on.
type InstanceGuard struct {
	listener net.Listener
}

// AcquireSingleInstance binds address. Any bind failure is reported as
// ErrAlreadyRunning.
func AcquireSingleInstance(address string) (*InstanceGuard, error) {
	if address == "" {
		return nil, fmt.Errorf("acquire instance lock: empty address")
	}
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w on %s: %v", ErrAlreadyRunning, address, err)
	}
	return &InstanceGuard{listener: listener}, nil
}

// Listener returns the bound listener.
func (guard *InstanceGuard) Listener() net.Listener {
	if guard == nil {
		return nil
	}
	return guard.listener
}

// Address returns the bound address, with the resolved port.
func (guard *InstanceGuard) Address() string {
	if guard == nil || guard.listener == nil {
		return ""
	}
	return guard.listener.Addr().String()
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	err := guard.listener.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
