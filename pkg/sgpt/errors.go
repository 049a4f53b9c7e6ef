// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package sgpt

import (
	"errors"
	"fmt"

	"github.com/gwangyi/pysgutils/pkg/sglib"
)

var (
	// ErrInvalidArgument - the call does not make sense in the current
	// lifecycle state (execute twice without Clear, nil device with an
	// empty ambient stack, setter after execute).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrBadParameters - the pass-through object is misconfigured (no CDB,
	// both data directions set). The object stays configurable.
	ErrBadParameters = errors.New("pass-through object misconfigured")
	// ErrTimeout - the command did not complete within the timeout.
	ErrTimeout = errors.New("command timed out")
	// ErrNotExecuted - a result accessor was called before Execute.
	ErrNotExecuted = errors.New("command has not been executed")
	// ErrUseAfterFree - the pass-through object was already destructed.
	ErrUseAfterFree = errors.New("pass-through object already destructed")
	// ErrResourceExhausted - the transport could not allocate a
	// pass-through object.
	ErrResourceExhausted = errors.New("transport could not allocate a pass-through object")
	// ErrUnsupported - the transport does not implement this operation.
	ErrUnsupported = errors.New("operation not supported by this transport")
)

// OsError carries the operating system error number reported by the
// transport while submitting a command.
type OsError struct {
	Errno int
}

func (osError *OsError) Error() string {
	return fmt.Sprintf("os error [%d]: %s", osError.Errno, sglib.SafeStrerror(osError.Errno))
}
