package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/github0013/ms5611/pkg/bus"
	"github.com/github0013/ms5611/pkg/metrics"
	"github.com/github0013/ms5611/pkg/ms5611"
	"github.com/github0013/ms5611/pkg/revision"
)

var promAddr = flag.String("listen", ":9821", "OpenMetrics exporter listening address")
var busNum = flag.Int("bus", -1, "I2C bus number, -1 to detect")
var devAddr = flag.Uint("addr", uint(ms5611.DefaultAddr), "MS5611 I2C address")
var aboveSeaLevel = flag.Float64("above_sea_level", 0, "Height above sea level")
var logLevel = flag.String("loglevel", "INFO", "Log Level")
var scan = flag.Bool("scan", false, "Print responding I2C addresses and exit")

// name of binary file populated at build-time
var binName = ""

func main() {

	flag.Usage = revision.Usage(binName)
	flag.Parse()

	logger := initLogger(*logLevel)

	if *scan {
		if err := scanBus(os.Stdout); err != nil {
			logger.Error("scan error", slog.Any("err", err))
			os.Exit(1)
		}
		return
	}

	n := *busNum
	if n < 0 {
		var err error
		if n, err = bus.Detect(); err != nil {
			logger.Error("i2cbus error", slog.Any("err", err))
			os.Exit(1)
		}
	}

	tr, err := bus.OpenD2R2(uint8(*devAddr), n)
	if err != nil {
		logger.Error("i2cbus error", slog.Any("err", err))
		os.Exit(1)
	}
	defer tr.Close()

	dev, err := ms5611.New(tr, uint16(*devAddr))
	if err != nil {
		logger.Error("MS5611 open error", slog.Any("err", err))
		os.Exit(1)
	}
	logger.Info("MS5611 activated", slog.String("bus", tr.String()), slog.Any("calibration", dev.Calibration()))

	labels := metrics.Labels{"sensor": "ms5611"}
	var mu sync.Mutex

	http.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		// conversions on one device must not interleave
		mu.Lock()
		result, err := measure(dev, labels, *aboveSeaLevel)
		mu.Unlock()

		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			logger.Error("measurement error", slog.Any("err", err))
			io.WriteString(w, fmt.Sprintf("Error:%s\n", err.Error()))
			return
		}

		if err := result.Write(w); err != nil {
			logger.Warn("write error", slog.Any("err", err))
		}
	})

	logger.Error("Server stop", slog.Any("err", http.ListenAndServe(*promAddr, nil)))
	os.Exit(1)
}

func scanBus(w io.Writer) error {
	name := ""
	if *busNum >= 0 {
		name = strconv.Itoa(*busNum)
	}
	b, err := bus.Open(name)
	if err != nil {
		return err
	}
	defer b.Close()

	for _, addr := range bus.Scan(b) {
		marker := ""
		if addr == ms5611.DefaultAddr || addr == ms5611.AltAddr {
			marker = " (MS5611?)"
		}
		fmt.Fprintf(w, "0x%02x%s\n", addr, marker)
	}
	return nil
}
