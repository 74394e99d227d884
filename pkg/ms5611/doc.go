// Package ms5611 controls a TE Connectivity MS5611-01BA barometric pressure
// sensor over I²C.
//
// The device holds six factory calibration words in PROM guarded by a 4 bit
// CRC. New resets the device, loads the PROM and refuses to build a Dev when
// the CRC does not match. Every Temperature, Pressure or Sense call starts
// fresh ADC conversions at OSR 4096; nothing is cached between calls.
//
// The bus is anything implementing Bus. See package
// github.com/github0013/ms5611/pkg/bus for periph.io and d2r2/go-i2c adapters.
//
// # Datasheet
//
// https://www.te.com/commerce/DocumentDelivery/DDEController?Action=showdoc&DocId=Data+Sheet%7FMS5611-01BA03%7FB%7Fpdf%7FEnglish%7FENG_DS_MS5611-01BA03_B.pdf%7FCAT-BLPS0036
//
// The CRC procedure is from application note AN520.
package ms5611
