package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/physic"

	"github.com/github0013/ms5611/pkg/weather"
)

// senser is satisfied by *ms5611.Dev and *bmxx80.Dev.
type senser interface {
	Sense(e *physic.Env) error
}

type probe struct {
	name     string
	dev      senser
	humidity bool
}

type sample struct {
	probe probe
	env   physic.Env
}

// measure reads every probe once. Probes that fail are left out of the
// result and their errors are combined.
func measure(probes []probe) ([]sample, error) {
	var errs error
	samples := make([]sample, 0, len(probes))
	for _, p := range probes {
		var env physic.Env
		if err := p.dev.Sense(&env); err != nil {
			multierr.AppendInto(&errs, fmt.Errorf("%s: %w", p.name, err))
			continue
		}
		samples = append(samples, sample{probe: p, env: env})
	}
	return samples, errs
}

func celsius(env physic.Env) float64 {
	return env.Temperature.Celsius()
}

func hPa(env physic.Env) float64 {
	return float64(env.Pressure) / float64(physic.Pascal*100)
}

func percentRH(env physic.Env) float64 {
	return float64(env.Humidity) / float64(physic.PercentRH)
}

type exporter struct {
	aboveSeaLevel float64

	temperature *prometheus.GaugeVec
	pressure    *prometheus.GaugeVec
	pressureMSL *prometheus.GaugeVec
	humidity    *prometheus.GaugeVec
	readErrors  *prometheus.CounterVec
}

func newExporter(reg prometheus.Registerer, aboveSeaLevel float64) *exporter {
	e := &exporter{
		aboveSeaLevel: aboveSeaLevel,
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "temperature",
			Help: "Temperature celsius",
		}, []string{"sensor"}),
		pressure: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pressure",
			Help: "Air Pressure hPa",
		}, []string{"sensor"}),
		pressureMSL: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pressure_msl",
			Help: "Air Pressure at mean sea level hPa",
		}, []string{"sensor"}),
		humidity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "relative_humidity",
			Help: "Relative Humidity percent",
		}, []string{"sensor"}),
		readErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sensor_read_errors_total",
			Help: "Failed sensor reads",
		}, []string{"sensor"}),
	}
	reg.MustRegister(e.temperature, e.pressure, e.pressureMSL, e.humidity, e.readErrors)
	return e
}

// record updates the gauges of the probes that answered and counts an
// error for the ones that did not. Gauges of a failed probe keep their
// previous sample.
func (e *exporter) record(probes []probe, samples []sample) {
	seen := make(map[string]bool, len(samples))
	for _, s := range samples {
		name := s.probe.name
		seen[name] = true
		temp := celsius(s.env)
		e.temperature.WithLabelValues(name).Set(round(temp, 2))
		e.pressure.WithLabelValues(name).Set(round(hPa(s.env), 2))
		e.pressureMSL.WithLabelValues(name).Set(round(weather.MeanHeightAirPressure(hPa(s.env), temp, e.aboveSeaLevel), 2))
		if s.probe.humidity {
			e.humidity.WithLabelValues(name).Set(round(percentRH(s.env), 2))
		}
	}
	for _, p := range probes {
		if !seen[p.name] {
			e.readErrors.WithLabelValues(p.name).Inc()
		}
	}
}
