// Package metrics writes gauges in the Prometheus text exposition format.
package metrics

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// MetricSet is a collection of gauges keyed by metric name.
type MetricSet map[string]*Gauge

func (s MetricSet) Add(gs ...*Gauge) {
	for _, g := range gs {
		s[g.name] = g
	}
}

// Write outputs every gauge that holds at least one sample, sorted by name.
func (s MetricSet) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, k := range sortedKeys(s) {
		s[k].write(bw)
	}
	return bw.Flush()
}

type sample struct {
	labels Labels
	value  RoundFloat64
}

// Gauge holds one value per label set.
type Gauge struct {
	name    string
	help    string
	mu      sync.Mutex
	samples map[string]sample
}

func NewGauge(name, help string) *Gauge {
	return &Gauge{
		name:    name,
		help:    help,
		samples: make(map[string]sample),
	}
}

func (g *Gauge) Set(labels Labels, value RoundFloat64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.samples[labels.String()] = sample{labels: labels, value: value}
}

// Delete drops the sample for labels so a failed sensor stops being exported.
func (g *Gauge) Delete(labels Labels) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.samples, labels.String())
}

func (g *Gauge) write(w *bufio.Writer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.samples) == 0 {
		return
	}

	fmt.Fprintf(w, "# HELP %s %s\n", g.name, g.help)
	fmt.Fprintf(w, "# TYPE %s gauge\n", g.name)
	for _, k := range sortedKeys(g.samples) {
		s := g.samples[k]
		w.WriteString(g.name)
		w.WriteString(k)
		w.WriteByte(' ')
		w.WriteString(s.value.String())
		w.WriteByte('\n')
	}
}

// Labels is a set of labels for a sample.
type Labels map[string]string

// With returns a copy of l with extra merged over it.
func (l Labels) With(extra Labels) Labels {
	ret := make(Labels, len(l)+len(extra))
	for k, v := range l {
		ret[k] = v
	}
	for k, v := range extra {
		ret[k] = v
	}
	return ret
}

func (l Labels) String() string {
	if len(l) == 0 {
		return ""
	}

	kvs := make([]string, 0, len(l))
	for _, k := range sortedKeys(l) {
		kvs = append(kvs, k+"="+strconv.Quote(l[k]))
	}
	return "{" + strings.Join(kvs, ",") + "}"
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
