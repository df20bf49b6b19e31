package metrics

import "github.com/prometheus/client_golang/prometheus"

// Codec Prometheus metrics. They can be updated before registration; the values
// simply stay invisible to scrapes until RegisterCodecMetrics runs.
var (
	RepresentationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "representations_total",
			Help:      "Physical representations built at index time",
		},
		[]string{"type", "kind"},
	)

	SortValuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sort_values_total",
			Help:      "Sort keys converted to or from transport tokens",
		},
		[]string{"op"}, // "marshal" / "unmarshal"
	)

	EncodingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encoding_errors_total",
			Help:      "Malformed column bytes or tokens encountered",
		},
		[]string{"op"},
	)
)

// Op labels for SortValuesTotal and EncodingErrorsTotal.
const (
	OpMarshal   = "marshal"
	OpUnmarshal = "unmarshal"
	OpSortKey   = "sort_key"
	OpValue     = "value"
)

var codecMetricsRegistered bool

// RegisterCodecMetrics registers the codec metrics. Must be called once from main.
func RegisterCodecMetrics() {
	if codecMetricsRegistered {
		return
	}
	prometheus.MustRegister(RepresentationsTotal, SortValuesTotal, EncodingErrorsTotal)
	codecMetricsRegistered = true
}
