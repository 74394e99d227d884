// Package bus provides MS5611 transports over periph.io and d2r2/go-i2c, and
// I²C bus discovery.
package bus

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// Periph sends commands over a periph.io I²C bus. Reads are a single
// write-then-read transaction with a repeated start.
type Periph struct {
	bus i2c.Bus
}

func NewPeriph(b i2c.Bus) *Periph {
	return &Periph{bus: b}
}

func (p *Periph) Write(addr uint16, cmd byte) error {
	if err := p.bus.Tx(addr, []byte{cmd}, nil); err != nil {
		return fmt.Errorf("%s: write 0x%02x to 0x%02x: %w", p.bus, cmd, addr, err)
	}
	return nil
}

func (p *Periph) Read(addr uint16, n int, cmd byte) ([]byte, error) {
	r := make([]byte, n)
	if err := p.bus.Tx(addr, []byte{cmd}, r); err != nil {
		return nil, fmt.Errorf("%s: read %d bytes with 0x%02x from 0x%02x: %w", p.bus, n, cmd, addr, err)
	}
	return r, nil
}

func (p *Periph) String() string {
	return p.bus.String()
}
