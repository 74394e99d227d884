package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"periph.io/x/devices/v3/bmxx80"

	"kernel.org/pub/linux/libs/security/libcap/cap"

	"github.com/github0013/ms5611/pkg/bus"
	loggerFactory "github.com/github0013/ms5611/pkg/logger"
	"github.com/github0013/ms5611/pkg/mqtt"
	"github.com/github0013/ms5611/pkg/ms5611"
	"github.com/github0013/ms5611/pkg/revision"
)

var promAddr = flag.String("listen", ":9821", "Prometheus exporter listening address")
var busName = flag.String("bus", "", "I2C bus name, empty for the first one")
var ms5611Addr = flag.Uint("addr", uint(ms5611.DefaultAddr), "MS5611 I2C address")
var bme280Addr = flag.Uint("bme280", 0, "BME280 I2C address for humidity, 0 to disable")
var interval = flag.Duration("interval", 15*time.Second, "Measurement interval")
var aboveSeaLevel = flag.Float64("above_sea_level", 0, "Height above sea level")
var mqttBroker = flag.String("mqtt", "", "MQTT broker URL, empty to disable")
var station = flag.String("station", "home", "Station ID for MQTT telemetry")
var logLevel = flag.String("loglevel", "INFO", "Log Level")
var logColor = flag.Bool("logcolor", false, "Colorize log output")

// missed intervals before the watchdog gives up
const watchdogIntervals = 4

// name of binary file populated at build-time
var binName = ""

var promReg = prometheus.NewRegistry()

func main() {
	flag.Usage = revision.Usage(binName)
	flag.Parse()

	loggerFactory.InitializeLogger(*logLevel, *logColor)
	logger := loggerFactory.GetLogger("main")

	logger.Info("procinfo",
		slog.String("cap", cap.GetProc().String()),
		slog.String("build", revision.String()),
	)

	b, err := bus.Open(*busName)
	if err != nil {
		logger.Error("i2cbus error", slog.Any("err", err))
		os.Exit(1)
	}
	defer b.Close()

	dev, err := ms5611.New(bus.NewPeriph(b), uint16(*ms5611Addr))
	if err != nil {
		logger.Error("MS5611 open error", slog.Any("err", err))
		os.Exit(1)
	}
	logger.Info("MS5611 activated",
		slog.String("dev", dev.String()),
		slog.Uint64("crc", uint64(dev.CRC())),
	)
	probes := []probe{{name: "ms5611", dev: dev}}

	if *bme280Addr != 0 {
		bmx, err := bmxx80.NewI2C(b, uint16(*bme280Addr), &bmxx80.DefaultOpts)
		if err != nil {
			logger.Warn("BMxx80 open error", slog.Any("err", err))
		} else {
			defer bmx.Halt()
			probes = append(probes, probe{name: "bme280", dev: bmx, humidity: true})
			logger.Info("BMxx80 activated")
		}
	}

	promReg.MustRegister(prometheus.NewBuildInfoCollector())
	exp := newExporter(promReg, *aboveSeaLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pub *mqtt.Client
	if *mqttBroker != "" {
		pub = mqtt.NewClient(mqtt.Options{
			Broker:   *mqttBroker,
			ClientID: "ms5611-" + *station,
			Station:  *station,
		}, loggerFactory.GetLogger("mqtt"))
		defer pub.Disconnect()
		go func() {
			if err := pub.Connect(ctx); err != nil {
				logger.Error("mqtt connect failed", slog.Any("err", err))
			}
		}()
	}

	var watchdog watchdogTimer
	watchdog.Update(time.Now())

	go poll(ctx, probes, exp, pub, &watchdog)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(*interval):
			}
			if watchdog.IsElapsed(time.Now(), watchdogIntervals * *interval) {
				logger.Error("Watchdog expired!")
				os.Exit(1)
			}
		}
	}()

	serv := &http.Server{
		Addr:    *promAddr,
		Handler: promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}),
	}

	go func() {
		logger.Info("server listening", slog.String("address", serv.Addr))

		if err := serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("stop serving", slog.String("error", err.Error()))
		}
	}()
	<-ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Warn("shutting down server")

	if err := serv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", slog.String("error", err.Error()))
		if err := serv.Close(); err != nil {
			logger.Error("server close", slog.String("error", err.Error()))
		}
	}
}

// poll measures every interval until ctx is done. The probes share one bus
// and are only touched from here.
func poll(ctx context.Context, probes []probe, exp *exporter, pub *mqtt.Client, watchdog *watchdogTimer) {
	logger := loggerFactory.GetLogger("measure")
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		samples, err := measure(probes)
		exp.record(probes, samples)
		if err != nil {
			logger.Error("measurement error", slog.Any("err", err))
		}
		if len(samples) > 0 && samples[0].probe.name == "ms5611" {
			watchdog.Update(time.Now())
			publish(pub, samples, logger)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func publish(pub *mqtt.Client, samples []sample, logger *slog.Logger) {
	if pub == nil {
		return
	}
	env := samples[0].env
	t := pub.NewTelemetry(round(celsius(env), 2), round(hPa(env), 2), time.Now())
	for _, s := range samples[1:] {
		if s.probe.humidity {
			h := round(percentRH(s.env), 2)
			t.Humidity = &h
		}
	}
	if err := pub.PublishReading(t); err != nil {
		logger.Warn("mqtt publish error", slog.Any("err", err))
	}
}

func round(value float64, places int) float64 {
	shift := math.Pow10(places)
	return math.Round(value*shift) / shift
}
