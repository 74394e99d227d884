package bus

import (
	"fmt"

	gi2c "github.com/d2r2/go-i2c"
)

// d2r2Dev is the part of *gi2c.I2C the adapter uses.
type d2r2Dev interface {
	GetAddr() uint8
	GetBus() int
	WriteBytes(buf []byte) (int, error)
	ReadRegBytes(reg byte, n int) ([]byte, int, error)
	Close() error
}

// D2R2 sends commands over a d2r2/go-i2c handle. The handle is bound to a
// single device address.
type D2R2 struct {
	dev d2r2Dev
}

// OpenD2R2 opens /dev/i2c-<bus> for the device at addr.
func OpenD2R2(addr uint8, bus int) (*D2R2, error) {
	dev, err := gi2c.NewI2C(addr, bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c-%d at 0x%02x: %w", bus, addr, err)
	}
	return &D2R2{dev: dev}, nil
}

func NewD2R2(dev *gi2c.I2C) *D2R2 {
	return &D2R2{dev: dev}
}

func (d *D2R2) Write(addr uint16, cmd byte) error {
	if err := d.checkAddr(addr); err != nil {
		return err
	}
	n, err := d.dev.WriteBytes([]byte{cmd})
	if err != nil {
		return fmt.Errorf("i2c-%d: write 0x%02x: %w", d.dev.GetBus(), cmd, err)
	}
	if n != 1 {
		return fmt.Errorf("i2c-%d: write 0x%02x: wrote %d bytes", d.dev.GetBus(), cmd, n)
	}
	return nil
}

func (d *D2R2) Read(addr uint16, n int, cmd byte) ([]byte, error) {
	if err := d.checkAddr(addr); err != nil {
		return nil, err
	}
	buf, got, err := d.dev.ReadRegBytes(cmd, n)
	if err != nil {
		return nil, fmt.Errorf("i2c-%d: read %d bytes with 0x%02x: %w", d.dev.GetBus(), n, cmd, err)
	}
	if got != n {
		return nil, fmt.Errorf("i2c-%d: read %d bytes with 0x%02x: got %d", d.dev.GetBus(), n, cmd, got)
	}
	return buf, nil
}

func (d *D2R2) Close() error {
	return d.dev.Close()
}

func (d *D2R2) String() string {
	return fmt.Sprintf("i2c-%d@0x%02x", d.dev.GetBus(), d.dev.GetAddr())
}

func (d *D2R2) checkAddr(addr uint16) error {
	if addr != uint16(d.dev.GetAddr()) {
		return fmt.Errorf("i2c-%d: handle is bound to 0x%02x, not 0x%02x", d.dev.GetBus(), d.dev.GetAddr(), addr)
	}
	return nil
}
