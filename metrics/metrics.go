// Package metrics keeps the service's counters and renders them in the
// Prometheus text exposition format.
package metrics

import (
	"io"
	"sort"
	"strings"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Metric names exposed on /metrics.
const (
	HTTPRequestsTotal      = "amortizer_http_requests_total"
	SchedulesComputedTotal = "amortizer_schedules_computed_total"
	CacheHitsTotal         = "amortizer_cache_hits_total"
	CacheMissesTotal       = "amortizer_cache_misses_total"
	RateLimitedTotal       = "amortizer_rate_limited_total"
)

var help = map[string]string{
	HTTPRequestsTotal:      "HTTP requests served, by route and status code.",
	SchedulesComputedTotal: "Schedules computed by the amortizer (cache misses only).",
	CacheHitsTotal:         "Schedule cache hits.",
	CacheMissesTotal:       "Schedule cache misses.",
	RateLimitedTotal:       "Requests rejected by the rate limiter.",
}

// Registry is a set of labelled counters. The zero value is not usable;
// call New. A nil *Registry ignores every call.
type Registry struct {
	mu       sync.Mutex
	counters map[string]map[string]*counter // name -> label key -> counter
}

type counter struct {
	labels []*dto.LabelPair
	value  float64
}

func New() *Registry {
	return &Registry{counters: make(map[string]map[string]*counter)}
}

// Inc adds one to the counter name with the given label pairs
// (name1, value1, name2, value2, ...).
func (r *Registry) Inc(name string, labelPairs ...string) {
	r.Add(name, 1, labelPairs...)
}

func (r *Registry) Add(name string, delta float64, labelPairs ...string) {
	if r == nil {
		return
	}
	key := strings.Join(labelPairs, "\xff")

	r.mu.Lock()
	defer r.mu.Unlock()

	series, ok := r.counters[name]
	if !ok {
		series = make(map[string]*counter)
		r.counters[name] = series
	}
	c, ok := series[key]
	if !ok {
		c = &counter{labels: toLabels(labelPairs)}
		series[key] = c
	}
	c.value += delta
}

// Value returns the current value of one series, 0 if it does not exist.
func (r *Registry) Value(name string, labelPairs ...string) float64 {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.counters[name][strings.Join(labelPairs, "\xff")]; ok {
		return c.value
	}
	return 0
}

// Gather snapshots all counters as metric families sorted by name.
func (r *Registry) Gather() []*dto.MetricFamily {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.counters))
	for name := range r.counters {
		names = append(names, name)
	}
	sort.Strings(names)

	families := make([]*dto.MetricFamily, 0, len(names))
	for _, name := range names {
		series := r.counters[name]
		keys := make([]string, 0, len(series))
		for k := range series {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		mf := &dto.MetricFamily{
			Name: proto.String(name),
			Type: dto.MetricType_COUNTER.Enum(),
		}
		if h, ok := help[name]; ok {
			mf.Help = proto.String(h)
		}
		for _, k := range keys {
			c := series[k]
			mf.Metric = append(mf.Metric, &dto.Metric{
				Label:   c.labels,
				Counter: &dto.Counter{Value: proto.Float64(c.value)},
			})
		}
		families = append(families, mf)
	}
	return families
}

// WriteText writes every family in the text exposition format.
func (r *Registry) WriteText(w io.Writer) error {
	for _, mf := range r.Gather() {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func toLabels(pairs []string) []*dto.LabelPair {
	labels := make([]*dto.LabelPair, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		labels = append(labels, &dto.LabelPair{
			Name:  proto.String(pairs[i]),
			Value: proto.String(pairs[i+1]),
		})
	}
	return labels
}
