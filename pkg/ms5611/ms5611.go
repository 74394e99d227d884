package ms5611

import (
	"fmt"
	"io"
	"time"

	"periph.io/x/conn/v3/physic"
)

// Bus is the transport the driver needs. Read writes cmd then reads n bytes.
type Bus interface {
	Write(addr uint16, cmd byte) error
	Read(addr uint16, n int, cmd byte) ([]byte, error)
}

const (
	// DefaultAddr is used when CSB is pulled low.
	DefaultAddr uint16 = 0x77
	// AltAddr is used when CSB is pulled high.
	AltAddr uint16 = 0x76
)

const (
	cmdReset    = 0x1e
	cmdConvD1   = 0x48 // OSR 4096
	cmdConvD2   = 0x58 // OSR 4096
	cmdADCRead  = 0x00
	cmdPROMRead = 0xa0
)

// Datasheet maximums are 2.8ms and 8.22ms.
const (
	resetDelay      = 3 * time.Millisecond
	conversionDelay = 9 * time.Millisecond
)

// Channel selects which ADC conversion ReadRaw starts.
type Channel int

const (
	Pressure    Channel = iota // D1
	Temperature                // D2
)

func (ch Channel) String() string {
	switch ch {
	case Pressure:
		return "D1"
	case Temperature:
		return "D2"
	default:
		return fmt.Sprintf("Channel(%d)", int(ch))
	}
}

func (ch Channel) convertCmd() (byte, error) {
	switch ch {
	case Pressure:
		return cmdConvD1, nil
	case Temperature:
		return cmdConvD2, nil
	default:
		return 0, fmt.Errorf("ms5611: unknown channel %d", int(ch))
	}
}

// Dev is a handle to an initialized MS5611.
//
// Dev does no locking. Calls on one Dev, or on several Devs sharing a bus,
// must be serialized by the caller.
type Dev struct {
	bus   Bus
	addr  uint16
	cal   Calibration
	crc   uint8
	sleep func(time.Duration)
}

// New resets the device at addr, loads its PROM and validates the CRC.
//
// A CRC mismatch returns a *CalibrationError and no Dev.
func New(b Bus, addr uint16) (*Dev, error) {
	return newDev(b, addr, time.Sleep)
}

func newDev(b Bus, addr uint16, sleep func(time.Duration)) (*Dev, error) {
	d := &Dev{bus: b, addr: addr, sleep: sleep}
	if err := d.reset(); err != nil {
		return nil, err
	}
	prom, err := d.readPROMImage()
	if err != nil {
		return nil, err
	}
	if crc := prom.CRC4(); crc != prom.Stored() {
		return nil, &CalibrationError{Stored: prom.Stored(), Computed: crc}
	}
	d.cal = prom.Calibration()
	d.crc = prom.Stored()
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("MS5611{addr:0x%02x}", d.addr)
}

// Calibration returns the validated C1..C6.
func (d *Dev) Calibration() Calibration {
	return d.cal
}

// CRC returns the PROM checksum the calibration was validated against.
func (d *Dev) CRC() uint8 {
	return d.crc
}

// Temperature runs a D2 conversion and returns °C.
func (d *Dev) Temperature() (float64, error) {
	d2, err := d.ReadRaw(Temperature)
	if err != nil {
		return 0, err
	}
	return float64(d.cal.compensatedTemperature(d2)) / 100, nil
}

// Pressure runs a D2 then a D1 conversion and returns mbar.
func (d *Dev) Pressure() (float64, error) {
	d1, d2, err := d.readPair()
	if err != nil {
		return 0, err
	}
	return float64(d.cal.compensatedPressure(d1, d2)) / 100, nil
}

// Sense fills e.Temperature and e.Pressure from one D2 and one D1
// conversion. e.Humidity is left untouched.
func (d *Dev) Sense(e *physic.Env) error {
	d1, d2, err := d.readPair()
	if err != nil {
		return err
	}
	e.Temperature = physic.Temperature(d.cal.compensatedTemperature(d2))*10*physic.MilliCelsius + physic.ZeroCelsius
	// 0.01 mbar is one Pascal.
	e.Pressure = physic.Pressure(d.cal.compensatedPressure(d1, d2)) * physic.Pascal
	return nil
}

// Read returns a compensated Reading from one D2 and one D1 conversion.
func (d *Dev) Read() (Reading, error) {
	d1, d2, err := d.readPair()
	if err != nil {
		return Reading{}, err
	}
	return Compensate(d.cal, d1, d2), nil
}

func (d *Dev) readPair() (d1, d2 uint32, err error) {
	if d2, err = d.ReadRaw(Temperature); err != nil {
		return 0, 0, err
	}
	if d1, err = d.ReadRaw(Pressure); err != nil {
		return 0, 0, err
	}
	return d1, d2, nil
}

// ReadRaw starts a conversion on ch, waits for it and returns the 24 bit
// ADC result.
func (d *Dev) ReadRaw(ch Channel) (uint32, error) {
	cmd, err := ch.convertCmd()
	if err != nil {
		return 0, err
	}
	if err := d.write(cmd); err != nil {
		return 0, err
	}
	d.sleep(conversionDelay)

	b, err := d.read(3, cmdADCRead)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

func (d *Dev) reset() error {
	if err := d.write(cmdReset); err != nil {
		return err
	}
	d.sleep(resetDelay)
	return nil
}

// readPROMImage reads words 0..6 and then the CRC word. A failed read stops
// the sequence.
func (d *Dev) readPROMImage() (PROM, error) {
	var p PROM
	for w := 0; w < promCRCWord; w++ {
		v, err := d.readPROM(w)
		if err != nil {
			return PROM{}, err
		}
		p[w] = v
	}
	v, err := d.readPROM(promCRCWord)
	if err != nil {
		return PROM{}, err
	}
	p[promCRCWord] = v
	return p, nil
}

func (d *Dev) readPROM(word int) (uint16, error) {
	b, err := d.read(2, promReadCmd(word))
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func (d *Dev) write(cmd byte) error {
	if err := d.bus.Write(d.addr, cmd); err != nil {
		return &TransportError{Op: "write", Cmd: cmd, Err: err}
	}
	return nil
}

func (d *Dev) read(n int, cmd byte) ([]byte, error) {
	b, err := d.bus.Read(d.addr, n, cmd)
	if err != nil {
		return nil, &TransportError{Op: "read", Cmd: cmd, Err: err}
	}
	if len(b) < n {
		return nil, &TransportError{Op: "read", Cmd: cmd, Err: io.ErrUnexpectedEOF}
	}
	return b, nil
}
