package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
)

// ErrAlreadyRunning indicates another session already holds the lock.
var ErrAlreadyRunning = errors.New("a focus session is already running")

const (
	minLockPort = 20000
	maxLockPort = 39999
)

// SessionLock guarantees a single active session per user by binding a
// localhost port derived from the application name.
type SessionLock struct {
	listener net.Listener
}

// AcquireSessionLock takes the lock or returns ErrAlreadyRunning.
func AcquireSessionLock(appName string) (*SessionLock, error) {
	address := fmt.Sprintf("127.0.0.1:%d", LockPort(appName))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", ErrAlreadyRunning, address)
	}
	return &SessionLock{listener: listener}, nil
}

// Release frees the lock. It is safe to call on a nil lock.
func (lock *SessionLock) Release() error {
	if lock == nil || lock.listener == nil {
		return nil
	}
	err := lock.listener.Close()
	lock.listener = nil
	return err
}

// Address returns the bound address, or "" once released.
func (lock *SessionLock) Address() string {
	if lock == nil || lock.listener == nil {
		return ""
	}
	return lock.listener.Addr().String()
}

// LockPort maps appName onto a stable port in [20000, 39999].
func LockPort(appName string) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxLockPort - minLockPort + 1
	return minLockPort + int(hash.Sum32()%uint32(rangeSize))
}
