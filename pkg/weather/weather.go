package weather

import "math"

// MeanHeightAirPressure reduces station pressure (hPa or mbar) measured at
// height meters and temp °C to mean sea level. Negative heights are stations
// below sea level.
func MeanHeightAirPressure(pressure, temp, height float64) float64 {
	kelvin := temp + 273.15
	return pressure * math.Pow(kelvin/(kelvin+0.0065*height), -5.257)
}
