package bus

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// ErrNotFound is returned when no I²C bus is registered on the host.
var ErrNotFound = errors.New("no i2c bus found, make sure i2c is enabled")

// Init loads the periph host drivers. It is safe to call more than once.
func Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}
	return nil
}

// Open initializes periph and opens the named bus; "" opens the first one.
func Open(name string) (i2c.BusCloser, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	if name == "" && len(i2creg.All()) == 0 {
		return nil, ErrNotFound
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}
	return b, nil
}

// Detect returns the number of the first registered bus, usable as the
// d2r2/go-i2c bus argument.
func Detect() (int, error) {
	if err := Init(); err != nil {
		return 0, err
	}
	return firstBus(i2creg.All())
}

func firstBus(refs []*i2creg.Ref) (int, error) {
	for _, r := range refs {
		if r.Number >= 0 {
			return r.Number, nil
		}
	}
	return 0, ErrNotFound
}

// 7 bit addresses outside the reserved ranges.
const (
	scanFirst = 0x08
	scanLast  = 0x77
)

// Scan probes every 7 bit address with a one byte read and returns the ones
// that acknowledged.
func Scan(b i2c.Bus) []uint16 {
	var found []uint16
	r := make([]byte, 1)
	for addr := uint16(scanFirst); addr <= scanLast; addr++ {
		if err := b.Tx(addr, nil, r); err == nil {
			found = append(found, addr)
		}
	}
	return found
}
