package goSession

import "errors"

var (
	// ErrTokenInvalid is an exported constant or variable used by the session lifecycle manager.
	ErrTokenInvalid = errors.New("invalid refresh credential")
	// ErrTokenReused is an exported constant or variable used by the session lifecycle manager.
	ErrTokenReused = errors.New("refresh credential reuse detected")
	// ErrStoreUnavailable is an exported constant or variable used by the session lifecycle manager.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrRotationAborted is an exported constant or variable used by the session lifecycle manager.
	ErrRotationAborted = errors.New("rotation aborted: new record unconfirmed")
	// ErrLockedOut is an exported constant or variable used by the session lifecycle manager.
	ErrLockedOut = errors.New("account locked out")
	// ErrAccessInvalid is an exported constant or variable used by the session lifecycle manager.
	ErrAccessInvalid = errors.New("invalid access credential")
	// ErrSessionCreationFailed is an exported constant or variable used by the session lifecycle manager.
	ErrSessionCreationFailed = errors.New("session creation failed")
	// ErrServiceNotReady is an exported constant or variable used by the session lifecycle manager.
	ErrServiceNotReady = errors.New("service not initialized")
)

// IsRetryable reports whether an error returned by the [Service] façade may
// be retried without changing its meaning. Terminal errors force
// re-authentication.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrRotationAborted)
}
