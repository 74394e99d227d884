package bus

import (
	"errors"
	"reflect"
	"testing"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"

	"github.com/github0013/ms5611/pkg/ms5611"
)

func TestPeriphWrite(t *testing.T) {
	p := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: 0x77, W: []byte{0x1e}}},
		DontPanic: true,
	}
	if err := NewPeriph(p).Write(0x77, 0x1e); err != nil {
		t.Fatalf("Periph.Write() failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Playback.Close() failed: %v", err)
	}
}

func TestPeriphRead(t *testing.T) {
	p := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: 0x77, W: []byte{0x00}, R: []byte{1, 2, 3}}},
		DontPanic: true,
	}
	got, err := NewPeriph(p).Read(0x77, 3, 0x00)
	if err != nil {
		t.Fatalf("Periph.Read() failed: %v", err)
	}
	if want := []byte{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("Periph.Read() failed: got:%v want:%v", got, want)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Playback.Close() failed: %v", err)
	}
}

func TestPeriphReadError(t *testing.T) {
	p := &i2ctest.Playback{DontPanic: true}
	if _, err := NewPeriph(p).Read(0x77, 2, 0xa2); err == nil {
		t.Errorf("Periph.Read() succeeded on an empty playback")
	}
}

// TestPeriphMS5611 runs the whole driver over a recorded conversation with
// the datasheet example device.
func TestPeriphMS5611(t *testing.T) {
	prom := [][]byte{
		{0, 0}, {156, 191}, {144, 60}, {91, 21}, {90, 242}, {130, 184}, {110, 152}, {0, 0},
	}
	ops := []i2ctest.IO{{Addr: 0x77, W: []byte{0x1e}}}
	for i, r := range prom {
		ops = append(ops, i2ctest.IO{Addr: 0x77, W: []byte{0xa0 | byte(i)<<1}, R: r})
	}
	ops = append(ops,
		i2ctest.IO{Addr: 0x77, W: []byte{0x58}},
		i2ctest.IO{Addr: 0x77, W: []byte{0x00}, R: []byte{130, 193, 62}},
		i2ctest.IO{Addr: 0x77, W: []byte{0x48}},
		i2ctest.IO{Addr: 0x77, W: []byte{0x00}, R: []byte{138, 162, 26}},
	)
	p := &i2ctest.Playback{Ops: ops, DontPanic: true}

	d, err := ms5611.New(NewPeriph(p), ms5611.DefaultAddr)
	if err != nil {
		t.Fatalf("ms5611.New() failed: %v", err)
	}
	var e physic.Env
	if err := d.Sense(&e); err != nil {
		t.Fatalf("Sense() failed: %v", err)
	}
	if got, want := e.Pressure, 100009*physic.Pascal; got != want {
		t.Errorf("Sense() pressure: got:%v want:%v", got, want)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Playback.Close() failed: %v", err)
	}
}

type fakeD2R2 struct {
	addr    uint8
	written [][]byte
	reg     byte
	resp    []byte
	err     error
}

func (f *fakeD2R2) GetAddr() uint8 { return f.addr }

func (f *fakeD2R2) GetBus() int { return 1 }

func (f *fakeD2R2) WriteBytes(buf []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.written = append(f.written, append([]byte(nil), buf...))
	return len(buf), nil
}

func (f *fakeD2R2) ReadRegBytes(reg byte, n int) ([]byte, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	f.reg = reg
	if n > len(f.resp) {
		n = len(f.resp)
	}
	return f.resp[:n], n, nil
}

func (f *fakeD2R2) Close() error { return nil }

func TestD2R2(t *testing.T) {
	f := &fakeD2R2{addr: 0x77, resp: []byte{1, 2, 3}}
	d := &D2R2{dev: f}

	if err := d.Write(0x77, 0x48); err != nil {
		t.Fatalf("D2R2.Write() failed: %v", err)
	}
	if want := [][]byte{{0x48}}; !reflect.DeepEqual(f.written, want) {
		t.Errorf("D2R2.Write() failed: got:%v want:%v", f.written, want)
	}

	got, err := d.Read(0x77, 3, 0x00)
	if err != nil {
		t.Fatalf("D2R2.Read() failed: %v", err)
	}
	if want := []byte{1, 2, 3}; !reflect.DeepEqual(got, want) || f.reg != 0x00 {
		t.Errorf("D2R2.Read() failed: got:%v reg:0x%02x want:%v", got, f.reg, want)
	}

	if got := d.String(); got != "i2c-1@0x77" {
		t.Errorf("D2R2.String() failed: got:%q", got)
	}
}

func TestD2R2Errors(t *testing.T) {
	f := &fakeD2R2{addr: 0x77, resp: []byte{1}}
	d := &D2R2{dev: f}

	if err := d.Write(0x76, 0x1e); err == nil {
		t.Errorf("D2R2.Write() accepted a foreign address")
	}
	if _, err := d.Read(0x77, 2, 0xa2); err == nil {
		t.Errorf("D2R2.Read() accepted a short read")
	}

	cause := errors.New("remote I/O error")
	f.err = cause
	if err := d.Write(0x77, 0x1e); !errors.Is(err, cause) {
		t.Errorf("D2R2.Write() failed: got:%v want:%v", err, cause)
	}
	if _, err := d.Read(0x77, 2, 0xa2); !errors.Is(err, cause) {
		t.Errorf("D2R2.Read() failed: got:%v want:%v", err, cause)
	}
}

// scanBus acknowledges reads only from the listed addresses.
type scanBus struct {
	present map[uint16]bool
}

func (s *scanBus) String() string { return "scan" }

func (s *scanBus) SetSpeed(physic.Frequency) error { return nil }

func (s *scanBus) Tx(addr uint16, w, r []byte) error {
	if !s.present[addr] {
		return errors.New("nack")
	}
	return nil
}

func TestScan(t *testing.T) {
	b := &scanBus{present: map[uint16]bool{0x03: true, 0x76: true, 0x77: true, 0x78: true}}
	got := Scan(b)
	if want := []uint16{0x76, 0x77}; !reflect.DeepEqual(got, want) {
		t.Errorf("Scan() failed: got:%v want:%v", got, want)
	}
	if got := Scan(&scanBus{}); len(got) != 0 {
		t.Errorf("Scan() on empty bus failed: got:%v", got)
	}
}

func TestFirstBus(t *testing.T) {
	if _, err := firstBus(nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("firstBus(nil) failed: got:%v want:%v", err, ErrNotFound)
	}
	refs := []*i2creg.Ref{{Name: "FT232H", Number: -1}, {Name: "I2C1", Number: 1}}
	got, err := firstBus(refs)
	if err != nil || got != 1 {
		t.Errorf("firstBus() failed: got:(%d,%v) want:1", got, err)
	}
}
