package main

import (
	"sync/atomic"
	"time"
)

// watchdogTimer remembers when the last good reading happened.
type watchdogTimer struct {
	epoch atomic.Int64
}

func (tm *watchdogTimer) Update(now time.Time) {
	tm.epoch.Store(now.Unix())
}

func (tm *watchdogTimer) IsElapsed(now time.Time, interval time.Duration) bool {
	return now.Unix() > tm.epoch.Load()+int64(interval.Seconds())
}
