package ms5611

import (
	"errors"
	"fmt"
)

// ErrCalibration is matched by errors.Is for every *CalibrationError.
var ErrCalibration = errors.New("ms5611: PROM CRC mismatch")

// CalibrationError reports a PROM image whose stored CRC does not match the
// one computed over it.
type CalibrationError struct {
	Stored   uint8
	Computed uint8
}

func (e *CalibrationError) Error() string {
	return fmt.Sprintf("ms5611: PROM CRC mismatch: stored 0x%x computed 0x%x", e.Stored, e.Computed)
}

func (e *CalibrationError) Is(target error) bool {
	return target == ErrCalibration
}

// TransportError wraps a failed bus write or read.
type TransportError struct {
	Op  string // "write" or "read"
	Cmd byte
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ms5611: %s cmd 0x%02x: %v", e.Op, e.Cmd, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
