package ms5611

// Reading is a compensated sample: Temperature in °C and Pressure in mbar,
// both at 0.01 resolution.
type Reading struct {
	Temperature float64
	Pressure    float64
}

// Temperature returns the first order temperature in 0.01 °C (2007 is
// 20.07 °C) and dT, the difference to the reference temperature.
//
// d2 is the raw temperature conversion.
func (c Calibration) Temperature(d2 uint32) (temp, dT int64) {
	dT = int64(d2) - c.C(TRef)*(1<<8)
	temp = 2000 + dT*c.C(TempSens)/(1<<23)
	return temp, dT
}

// secondOrder returns the low temperature corrections. The guards look at
// the first order temperature, never at the corrected one.
func secondOrder(temp, dT int64) (t2, off2, sens2 int64) {
	if temp >= 2000 {
		return 0, 0, 0
	}
	t2 = dT * dT / (1 << 31)
	off2 = 5 * square(temp-2000) / 2
	sens2 = 5 * square(temp-2000) / 4
	if temp < -1500 {
		off2 += 7 * square(temp+1500)
		sens2 += 11 * square(temp+1500) / 2
	}
	return t2, off2, sens2
}

// offset returns OFF, the pressure offset at the actual temperature.
func (c Calibration) offset(dT int64) int64 {
	return c.C(OffT1)*(1<<16) + c.C(Tco)*dT/(1<<7)
}

// sensitivity returns SENS, the pressure sensitivity at the actual
// temperature.
func (c Calibration) sensitivity(dT int64) int64 {
	return c.C(SensT1)*(1<<15) + c.C(Tcs)*dT/(1<<8)
}

// compensatedTemperature returns TEMP - T2 in 0.01 °C.
func (c Calibration) compensatedTemperature(d2 uint32) int64 {
	temp, dT := c.Temperature(d2)
	t2, _, _ := secondOrder(temp, dT)
	return temp - t2
}

// compensatedPressure returns P in 0.01 mbar.
func (c Calibration) compensatedPressure(d1, d2 uint32) int64 {
	temp, dT := c.Temperature(d2)
	_, off2, sens2 := secondOrder(temp, dT)
	off := c.offset(dT) - off2
	sens := c.sensitivity(dT) - sens2
	return (int64(d1)*sens/(1<<21) - off) / (1 << 15)
}

// Compensate converts a correlated pair of raw conversions, d1 for pressure
// and d2 for temperature.
func Compensate(c Calibration, d1, d2 uint32) Reading {
	return Reading{
		Temperature: float64(c.compensatedTemperature(d2)) / 100,
		Pressure:    float64(c.compensatedPressure(d1, d2)) / 100,
	}
}

func square(v int64) int64 {
	return v * v
}
