package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"periph.io/x/conn/v3/physic"
)

type fakeSenser struct {
	env physic.Env
	err error
}

func (f *fakeSenser) Sense(e *physic.Env) error {
	if f.err != nil {
		return f.err
	}
	*e = f.env
	return nil
}

func ms5611Env() physic.Env {
	return physic.Env{
		Temperature: 2007*10*physic.MilliCelsius + physic.ZeroCelsius,
		Pressure:    100009 * physic.Pascal,
	}
}

func TestMeasure(t *testing.T) {
	cause := errors.New("nack")
	probes := []probe{
		{name: "ms5611", dev: &fakeSenser{env: ms5611Env()}},
		{name: "bme280", dev: &fakeSenser{err: cause}, humidity: true},
	}

	samples, err := measure(probes)
	if !errors.Is(err, cause) || !strings.Contains(err.Error(), "bme280") {
		t.Errorf("measure() error failed: got:%v", err)
	}
	if len(samples) != 1 || samples[0].probe.name != "ms5611" {
		t.Fatalf("measure() samples failed: got:%+v", samples)
	}
	if got := round(celsius(samples[0].env), 2); got != 20.07 {
		t.Errorf("celsius() failed: got:%v want:%v", got, 20.07)
	}
	if got := round(hPa(samples[0].env), 2); got != 1000.09 {
		t.Errorf("hPa() failed: got:%v want:%v", got, 1000.09)
	}
}

func TestExporterRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := newExporter(reg, 0)

	ok := &fakeSenser{env: ms5611Env()}
	bme := &fakeSenser{env: physic.Env{
		Temperature: 21*physic.Celsius + physic.ZeroCelsius,
		Pressure:    100100 * physic.Pascal,
		Humidity:    45 * physic.PercentRH,
	}}
	probes := []probe{
		{name: "ms5611", dev: ok},
		{name: "bme280", dev: bme, humidity: true},
	}

	samples, err := measure(probes)
	if err != nil {
		t.Fatalf("measure() failed: %v", err)
	}
	e.record(probes, samples)

	if got := testutil.ToFloat64(e.temperature.WithLabelValues("ms5611")); got != 20.07 {
		t.Errorf("temperature gauge failed: got:%v want:%v", got, 20.07)
	}
	if got := testutil.ToFloat64(e.pressure.WithLabelValues("ms5611")); got != 1000.09 {
		t.Errorf("pressure gauge failed: got:%v want:%v", got, 1000.09)
	}
	if got := testutil.ToFloat64(e.pressureMSL.WithLabelValues("ms5611")); got != 1000.09 {
		t.Errorf("pressure_msl gauge failed: got:%v want:%v", got, 1000.09)
	}
	if got := testutil.ToFloat64(e.humidity.WithLabelValues("bme280")); got != 45 {
		t.Errorf("humidity gauge failed: got:%v want:%v", got, 45)
	}

	// A failed read keeps the old value and counts an error.
	ok.err = errors.New("timeout")
	samples, _ = measure(probes)
	e.record(probes, samples)
	if got := testutil.ToFloat64(e.readErrors.WithLabelValues("ms5611")); got != 1 {
		t.Errorf("read error counter failed: got:%v want:%v", got, 1)
	}
	if got := testutil.ToFloat64(e.temperature.WithLabelValues("ms5611")); got != 20.07 {
		t.Errorf("temperature gauge changed on error: got:%v", got)
	}
}

func TestWatchdog(t *testing.T) {
	var w watchdogTimer
	now := time.Unix(1700000000, 0)
	w.Update(now)

	if w.IsElapsed(now.Add(time.Minute), time.Minute) {
		t.Errorf("IsElapsed() failed at the boundary")
	}
	if !w.IsElapsed(now.Add(61*time.Second), time.Minute) {
		t.Errorf("IsElapsed() failed after the interval")
	}
	w.Update(now.Add(61 * time.Second))
	if w.IsElapsed(now.Add(90*time.Second), time.Minute) {
		t.Errorf("IsElapsed() failed after Update()")
	}
}
