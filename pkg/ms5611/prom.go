package ms5611

// Coefficient indexes a Calibration word, named after the datasheet symbols.
type Coefficient int

const (
	SensT1   Coefficient = iota // C1 pressure sensitivity
	OffT1                       // C2 pressure offset
	Tcs                         // C3 temperature coefficient of pressure sensitivity
	Tco                         // C4 temperature coefficient of pressure offset
	TRef                        // C5 reference temperature
	TempSens                    // C6 temperature coefficient of the temperature
)

// Calibration holds C1..C6 in datasheet order.
type Calibration [6]uint16

// C returns coefficient k widened for compensation arithmetic.
func (c Calibration) C(k Coefficient) int64 {
	return int64(c[k])
}

// PROM is the full 128 bit PROM: word 0 is factory data, words 1..6 are
// C1..C6 and the low nibble of word 7 is the CRC.
type PROM [8]uint16

const promCRCWord = 7

func (p PROM) Calibration() Calibration {
	var c Calibration
	copy(c[:], p[1:7])
	return c
}

// Stored returns the CRC programmed at the factory.
func (p PROM) Stored() uint8 {
	return uint8(p[promCRCWord] & 0x0f)
}

// CRC4 computes the AN520 checksum over the image with the stored CRC
// nibble cleared.
func (p PROM) CRC4() uint8 {
	p[promCRCWord] &^= 0x0f

	var rem uint16
	for i := 0; i < 2*len(p); i++ {
		if i%2 == 1 {
			rem ^= p[i>>1] & 0x00ff
		} else {
			rem ^= p[i>>1] >> 8
		}
		for bit := 0; bit < 8; bit++ {
			if rem&0x8000 != 0 {
				rem = rem<<1 ^ 0x3000
			} else {
				rem <<= 1
			}
		}
	}
	return uint8(rem>>12) & 0x0f
}

// Valid reports whether the stored CRC matches the computed one.
func (p PROM) Valid() bool {
	return p.Stored() == p.CRC4()
}

func promReadCmd(word int) byte {
	return cmdPROMRead | byte(word&0x07)<<1
}
