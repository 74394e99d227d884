package main

import (
	"fmt"

	"github.com/github0013/ms5611/pkg/metrics"
	"github.com/github0013/ms5611/pkg/ms5611"
	"github.com/github0013/ms5611/pkg/weather"
)

type reader interface {
	Read() (ms5611.Reading, error)
}

func measure(dev reader, labels metrics.Labels, height float64) (metrics.MetricSet, error) {
	r, err := dev.Read()
	if err != nil {
		return nil, fmt.Errorf("MS5611: %w", err)
	}

	temperature := metrics.NewGauge("temperature", "Temperature celsius")
	airPressure := metrics.NewGauge("pressure", "Air Pressure hPa")
	airPressureMSL := metrics.NewGauge("pressure_msl", "Air Pressure at mean sea level hPa")

	s := metrics.MetricSet{}
	s.Add(temperature, airPressure, airPressureMSL)

	temperature.Set(labels, metrics.Centi(r.Temperature))
	airPressure.Set(labels, metrics.Centi(r.Pressure))
	airPressureMSL.Set(labels, metrics.Centi(weather.MeanHeightAirPressure(r.Pressure, r.Temperature, height)))

	return s, nil
}
