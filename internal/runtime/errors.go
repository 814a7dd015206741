package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/docker/docker/client"
)

var (
	// The engine socket did not answer.
	ErrEngineUnreachable = errors.New("container engine unreachable")

	// The requested external port is already bound on the host.
	ErrPortConflict = errors.New("external port already bound")

	// The engine socket refused the connection for lack of permissions.
	ErrPermission = errors.New("permission denied on engine socket")
)

// Maps raw engine errors onto the documented failure categories.
//
// The engine reports port collisions as plain-text daemon errors, so that
// case is matched on the message. Errors outside the known categories
// pass through unchanged.
func mapErr(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case client.IsErrConnectionFailed(err):
		if strings.Contains(err.Error(), "permission denied") {
			return fmt.Errorf("%w: %v", ErrPermission, err)
		}
		return fmt.Errorf("%w: %v", ErrEngineUnreachable, err)
	case strings.Contains(err.Error(), "port is already allocated"),
		strings.Contains(err.Error(), "address already in use"):
		return fmt.Errorf("%w: %v", ErrPortConflict, err)
	case strings.Contains(err.Error(), "permission denied"):
		return fmt.Errorf("%w: %v", ErrPermission, err)
	default:
		return err
	}
}
